package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateRequestID(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()

	if !strings.HasPrefix(a, "req_") {
		t.Errorf("expected req_ prefix, got %q", a)
	}
	if a == b {
		t.Error("consecutive request IDs must differ")
	}
}

func TestMiddlewarePropagatesRequestID(t *testing.T) {
	mw := NewMiddleware(func(r *http.Request) string { return "203.0.113.7" })

	var seen string
	handler := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/overview", nil))

	if seen == "" {
		t.Error("expected request ID in handler context")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}

	metrics := mw.GetMetrics()
	if metrics.TotalRequests != 1 {
		t.Errorf("expected 1 tracked request, got %d", metrics.TotalRequests)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := GetRequestID(r.Context()); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}
}

package webapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ridelog/internal/core"
)

func TestPullCoercesMixedCells(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"1","date":"2024-03-10","tripCost":"12.5","promo":3,"tips":"","tripCount":"abc","totalHoursDec":2,"totalIncome":15.5},
			{"id":"2","date":"2024-03-14","tripCost":800,"promo":null,"tips":0,"tripCount":10,"totalHoursDec":"5.5","totalIncome":800}
		]`))
	}))
	defer srv.Close()

	cli, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	records, err := cli.Pull(context.Background())
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records: got %d", len(records))
	}

	// Newest first.
	if records[0].ID != "2" || records[1].ID != "1" {
		t.Fatalf("order: %s, %s", records[0].ID, records[1].ID)
	}

	old := records[1]
	if old.TripCost != 12.5 {
		t.Fatalf("string number: got %v", old.TripCost)
	}
	if old.Promo != 3 {
		t.Fatalf("plain number: got %v", old.Promo)
	}
	if old.Tips != 0 || old.TripCount != 0 {
		t.Fatalf("garbage cells not defaulted: tips=%v trips=%v", old.Tips, old.TripCount)
	}
	if records[0].TotalHours != 5.5 {
		t.Fatalf("quoted hours: got %v", records[0].TotalHours)
	}
}

func TestPullTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cli, _ := New(srv.URL)
	if _, err := cli.Pull(context.Background()); err == nil {
		t.Fatalf("expected error on non-200 status")
	}
}

func TestPushSendsWireRecord(t *testing.T) {
	var got wireRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode push body: %v", err)
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cli, _ := New(srv.URL)
	day, _ := core.ParseDateKey("2024-03-14")
	rec := core.Record{
		ID:          "1710000000000-1",
		Date:        day,
		TripCost:    800,
		TotalIncome: 800,
		TotalHours:  5.5,
		TripCount:   10,
		CreatedAt:   time.UnixMilli(1710000000000),
	}
	if err := cli.Push(context.Background(), rec); err != nil {
		t.Fatalf("push: %v", err)
	}

	if got.ID != rec.ID || got.Date != "2024-03-14" {
		t.Fatalf("wire identity: id=%s date=%s", got.ID, got.Date)
	}
	if float64(got.TripCost) != 800 || float64(got.TotalHours) != 5.5 {
		t.Fatalf("wire values: %+v", got)
	}
	if int64(got.CreatedAt) != 1710000000000 {
		t.Fatalf("wire createdAt: %v", got.CreatedAt)
	}
}

func TestNewRejectsEmptyEndpoint(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}

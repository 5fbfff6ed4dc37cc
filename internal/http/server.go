package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ridelog/internal/cache"
	"ridelog/internal/core"
	"ridelog/internal/middleware/ratelimit"
	"ridelog/internal/middleware/security"
	"ridelog/internal/middleware/trace"
	"ridelog/internal/services"
)

type Server struct {
	http.Server
	svc      *services.RecordService
	limiter  *ratelimit.Limiter
	detector *security.Detector

	// View caches keyed by window parameters; any write clears them since
	// every view derives from the same record collection.
	weekCache  *cache.LRUCache[core.WeekStats]
	monthCache *cache.LRUCache[core.MonthStats]
	yearCache  *cache.LRUCache[core.YearStats]

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc *services.RecordService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		svc:          svc,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     security.NewDetector(),
		weekCache:    cache.NewLRUCache[core.WeekStats](100, time.Minute),
		monthCache:   cache.NewLRUCache[core.MonthStats](100, time.Minute),
		yearCache:    cache.NewLRUCache[core.YearStats](20, time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.weekCache)
	s.cacheManager.Register(s.monthCache)
	s.cacheManager.Register(s.yearCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/overview", s.handleOverview)
	mux.HandleFunc("/api/week", s.handleWeek)
	mux.HandleFunc("/api/month", s.handleMonth)
	mux.HandleFunc("/api/year", s.handleYear)
	mux.HandleFunc("/api/recent", s.handleRecent)
	mux.HandleFunc("/api/records", s.guardWrites(s.handleRecords))
	mux.HandleFunc("/api/records/", s.guardWrites(s.handleRecordByID))
	mux.HandleFunc("/api/sync/pull", s.guardWrites(s.handleSyncPull))

	traceMW := trace.NewMiddleware(s.detector.ExtractClientIP)
	headersMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = traceMW.Middleware(headersMW.Middleware(mux))

	return s
}

// guardWrites rate limits mutating requests per client IP and flags
// suspicious ones. Reads are served from memory and stay unthrottled.
func (s *Server) guardWrites(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodDelete {
			next(w, r)
			return
		}

		clientIP := s.detector.ExtractClientIP(r)

		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
		}

		if !s.limiter.Allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		next(w, r)
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	// Ensure shutdown logic runs only once
	s.shutdownOnce.Do(func() {
		// Stop cache cleanup goroutine
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}

		// Stop rate limiter cleanup goroutine
		if s.limiter != nil {
			s.limiter.Stop()
		}

		// Shutdown HTTP server
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateViews clears every view cache; called after any write.
func (s *Server) invalidateViews() {
	s.weekCache.Clear()
	s.monthCache.Clear()
	s.yearCache.Clear()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

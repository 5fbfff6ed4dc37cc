package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

func TestLimiterAllowsUnderLimit(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 5, CleanupInterval: time.Hour})
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		if !rl.Allow("10.1.1.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.1.1.1") {
		t.Error("request over the limit should be blocked")
	}
}

func TestLimiterTracksClientsIndependently(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1, CleanupInterval: time.Hour})
	defer rl.Stop()

	if !rl.Allow("10.1.1.1") {
		t.Error("first client should be allowed")
	}
	if !rl.Allow("10.1.1.2") {
		t.Error("second client should be allowed")
	}
	if rl.Allow("10.1.1.1") {
		t.Error("first client should now be blocked")
	}

	if got := rl.ActiveClients(); got != 2 {
		t.Errorf("expected 2 tracked clients, got %d", got)
	}
}

func TestLimiterDefaultsOnInvalidConfig(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()

	// Defaults allow 60 requests per minute.
	for i := 0; i < 60; i++ {
		if !rl.Allow("10.2.2.2") {
			t.Fatalf("request %d should be allowed under default limit", i+1)
		}
	}
	if rl.Allow("10.2.2.2") {
		t.Error("61st request should be blocked")
	}
}

func TestLimiterCleanup(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 10, CleanupInterval: time.Hour})
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		rl.Allow(fmt.Sprintf("10.3.3.%d", i))
	}
	if got := rl.ActiveClients(); got != 5 {
		t.Fatalf("expected 5 tracked clients, got %d", got)
	}

	// Stale entries are those idle for over 10 minutes.
	rl.mu.Lock()
	for _, c := range rl.clients {
		c.lastRequest = time.Now().Add(-11 * time.Minute)
	}
	rl.mu.Unlock()

	rl.cleanupStaleEntries()
	if got := rl.ActiveClients(); got != 0 {
		t.Errorf("expected stale clients removed, got %d", got)
	}
}

func TestLimiterStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop() // must not panic
}

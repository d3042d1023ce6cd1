package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestRateLimiterBurstThenRefill(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return current }

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("expected burst to be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("expected request over burst to be rejected")
	}

	current = current.Add(time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("expected a token after refill interval")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	if !rl.Allow("1.2.3.4") {
		t.Fatal("first client should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("first client should be exhausted")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("second client must have its own bucket")
	}
}

func TestRateLimiterSweepsStaleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return current }

	for i := 0; i < sweepThreshold; i++ {
		rl.Allow("client-" + strconv.Itoa(i))
	}
	current = current.Add(bucketStaleAfter + time.Minute)
	rl.Allow("fresh-client")

	rl.mu.Lock()
	size := len(rl.buckets)
	rl.mu.Unlock()
	if size != 1 {
		t.Fatalf("expected stale buckets swept, got %d", size)
	}
}

func TestRateLimitMiddlewareRejectsWithRetryAfter(t *testing.T) {
	handler := RateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/calculate", nil)
	req.RemoteAddr = "9.8.7.6:54321"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request allowed, got %d", rec.Code)
	}

	// Same IP on a new connection shares the bucket.
	req2 := httptest.NewRequest(http.MethodPost, "/calculate", nil)
	req2.RemoteAddr = "9.8.7.6:54399"
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)

	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec2.Code)
	}
	if rec2.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if ct := rec2.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON error body, got %q", ct)
	}
}

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func newTestLimiter() (*Limiter, *time.Time) {
	l := New(5, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllow_UnderLimit(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 5; i++ {
		ok, retry := l.Allow("1.2.3.4")
		if !ok {
			t.Fatalf("request %d: expected allowed, got blocked (retryAfter=%s)", i+1, retry)
		}
	}
}

func TestAllow_ExceedsLimit(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 5; i++ {
		l.Allow("1.2.3.4")
	}

	ok, retry := l.Allow("1.2.3.4")
	if ok {
		t.Fatal("expected blocked after 5 requests")
	}
	if retry <= 0 || retry > time.Minute {
		t.Fatalf("expected retryAfter in (0, 1m], got %s", retry)
	}
}

func TestAllow_RetryAfterDecreases(t *testing.T) {
	l, now := newTestLimiter()

	for i := 0; i < 5; i++ {
		l.Allow("1.2.3.4")
	}

	*now = now.Add(30 * time.Second)

	ok, retry := l.Allow("1.2.3.4")
	if ok {
		t.Fatal("expected blocked")
	}
	if retry != 30*time.Second {
		t.Fatalf("expected retryAfter=30s, got %s", retry)
	}
}

func TestAllow_WindowResets(t *testing.T) {
	l, now := newTestLimiter()

	for i := 0; i < 5; i++ {
		l.Allow("1.2.3.4")
	}

	*now = now.Add(61 * time.Second)

	ok, _ := l.Allow("1.2.3.4")
	if !ok {
		t.Fatal("expected allowed after window reset")
	}
}

func TestAllow_DifferentKeys(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 5; i++ {
		l.Allow("1.2.3.4")
	}

	ok, _ := l.Allow("5.6.7.8")
	if !ok {
		t.Fatal("different key should not be affected")
	}
}

func TestPrune_IdleKeys(t *testing.T) {
	l, now := newTestLimiter()

	l.Allow("old-ip")
	*now = now.Add(2 * time.Minute)
	l.Allow("new-ip")

	if got := l.Len(); got != 1 {
		t.Fatalf("expected idle key to be pruned, tracking %d keys", got)
	}
}

func TestAllow_ConcurrentAccess(t *testing.T) {
	l := New(5, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("1.2.3.4"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 5 {
		t.Fatalf("expected exactly 5 allowed, got %d", allowed)
	}
}

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter()
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/render", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	// Ports differ per connection; the host is the key.
	for i := 0; i < 5; i++ {
		if rr := do("10.0.0.1:" + string(rune('1'+i)) + "000"); rr.Code != http.StatusNoContent {
			t.Fatalf("request %d: status %d", i+1, rr.Code)
		}
	}

	rr := do("10.0.0.1:9999")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}

	if rr := do("10.0.0.2:1000"); rr.Code != http.StatusNoContent {
		t.Errorf("other client blocked: %d", rr.Code)
	}
}

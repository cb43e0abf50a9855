// Package ratelimit throttles render requests per client address.
package ratelimit

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// client tracks the requests one address made in the current window.
type client struct {
	requests    int
	windowStart time.Time
}

// Limiter is a fixed-window, in-memory limiter keyed by client address.
type Limiter struct {
	mu          sync.Mutex
	clients     map[string]*client
	maxRequests int
	window      time.Duration
	now         func() time.Time // for testing
}

// New allows maxRequests per key within each window. Keys idle for longer
// than a window are dropped on the next call to Allow.
func New(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		clients:     make(map[string]*client),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow records a request for key. When the limit is reached it returns false
// and how long the caller should wait.
func (l *Limiter) Allow(key string) (allowed bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	c, ok := l.clients[key]
	if !ok {
		l.clients[key] = &client{requests: 1, windowStart: now}
		return true, 0
	}

	elapsed := now.Sub(c.windowStart)
	if elapsed >= l.window {
		c.requests = 1
		c.windowStart = now
		return true, 0
	}

	if c.requests < l.maxRequests {
		c.requests++
		return true, 0
	}

	return false, l.window - elapsed
}

// Len reports how many keys are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// prune must be called with l.mu held.
func (l *Limiter) prune(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.windowStart) >= l.window {
			delete(l.clients, key)
		}
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header. Requests are keyed by r.RemoteAddr without the port, so it should
// run after chi's RealIP middleware.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		ok, retryAfter := l.Allow(key)
		if !ok {
			secs := int(math.Ceil(retryAfter.Seconds()))
			slog.Warn("render rate limit exceeded", "ip", key, "path", r.URL.Path, "retry_after", secs)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"storefront/internal/httputil"
)

// RateLimitConfig bounds requests per client IP in a fixed window.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	MaxEntries  int
	TrustProxy  bool
	// Methods limits counting to these methods. Empty counts everything
	// except OPTIONS.
	Methods []string
}

// PINAttemptLimit is the budget for staging PIN submissions.
func PINAttemptLimit(trustProxy bool) RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 10,
		Window:      15 * time.Minute,
		MaxEntries:  10_000,
		TrustProxy:  trustProxy,
		Methods:     []string{http.MethodPost},
	}
}

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter keeps one fixed-window budget per client IP. A single
// RateLimiter can back the middleware and direct Allow calls at once, so
// every entry point draws from the same budget.
type RateLimiter struct {
	mu      sync.Mutex
	config  RateLimitConfig
	windows map[string]window
	now     func() time.Time
}

// RateLimit answers 429 with Retry-After once a client exceeds its budget.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return NewRateLimiter(cfg).Middleware
}

// NewRateLimiter returns an empty limiter for cfg.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{config: cfg, windows: make(map[string]window), now: time.Now}
}

// Allow charges one attempt to the client of r, whatever its method.
func (l *RateLimiter) Allow(r *http.Request) (bool, int) {
	return l.allow(httputil.ClientIP(r, l.config.TrustProxy))
}

// Middleware limits the methods named by the config.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.counts(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		allowed, retryAfter := l.Allow(r)
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) counts(method string) bool {
	if len(l.config.Methods) == 0 {
		return method != http.MethodOptions
	}
	for _, candidate := range l.config.Methods {
		if candidate == method {
			return true
		}
	}
	return false
}

// allow records one request for key and reports whether it fits the budget,
// with the seconds left in the window when it does not.
func (l *RateLimiter) allow(key string) (bool, int) {
	if key == "" {
		return true, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.prune(now)
	current, ok := l.windows[key]
	if !ok || !now.Before(current.resetAt) {
		current = window{resetAt: now.Add(l.config.Window)}
	}
	current.count++
	l.windows[key] = current
	if current.count <= l.config.MaxRequests {
		return true, 0
	}
	return false, max(int(current.resetAt.Sub(now).Seconds()), 0)
}

func (l *RateLimiter) prune(now time.Time) {
	for key, entry := range l.windows {
		if !now.Before(entry.resetAt) {
			delete(l.windows, key)
		}
	}
	for l.config.MaxEntries > 0 && len(l.windows) > l.config.MaxEntries {
		oldestKey := ""
		var oldest time.Time
		for key, entry := range l.windows {
			if oldestKey == "" || entry.resetAt.Before(oldest) {
				oldestKey, oldest = key, entry.resetAt
			}
		}
		delete(l.windows, oldestKey)
	}
}

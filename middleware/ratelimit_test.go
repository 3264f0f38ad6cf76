package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(RateLimitConfig{MaxRequests: 1, Window: time.Minute})
	limiter.now = func() time.Time { return now }

	allowed, _ := limiter.allow("10.0.0.1")
	assert.True(t, allowed)
	allowed, retryAfter := limiter.allow("10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, 60, retryAfter)

	now = now.Add(time.Minute)
	allowed, _ = limiter.allow("10.0.0.1")
	assert.True(t, allowed)
}

func TestRateLimiter_EmptyKeyAlwaysAllowed(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{MaxRequests: 0, Window: time.Minute})
	allowed, _ := limiter.allow("")
	assert.True(t, allowed)
}

func TestRateLimiter_MaxEntries(t *testing.T) {
	now := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(RateLimitConfig{MaxRequests: 5, Window: time.Minute, MaxEntries: 2})
	limiter.now = func() time.Time { return now }

	for _, key := range []string{"a", "b", "c"} {
		limiter.allow(key)
		now = now.Add(time.Second)
	}
	limiter.allow("d")

	assert.LessOrEqual(t, len(limiter.windows), 3)
	_, oldestKept := limiter.windows["a"]
	assert.False(t, oldestKept)
}

func TestRateLimiter_Counts(t *testing.T) {
	all := NewRateLimiter(RateLimitConfig{})
	assert.True(t, all.counts(http.MethodGet))
	assert.False(t, all.counts(http.MethodOptions))

	posts := NewRateLimiter(PINAttemptLimit(false))
	assert.True(t, posts.counts(http.MethodPost))
	assert.False(t, posts.counts(http.MethodGet))
}

func TestRateLimiter_AllowSharesMiddlewareBudget(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{MaxRequests: 2, Window: time.Minute, Methods: []string{http.MethodPost}})
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	get := httptest.NewRequest(http.MethodGet, "/fr?pin=0000", nil)
	get.RemoteAddr = "203.0.113.9:4000"
	post := httptest.NewRequest(http.MethodPost, "/staging-access", nil)
	post.RemoteAddr = "203.0.113.9:4001"

	allowed, _ := limiter.Allow(get)
	assert.True(t, allowed)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, post)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	allowed, _ = limiter.Allow(get)
	assert.False(t, allowed)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, post)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

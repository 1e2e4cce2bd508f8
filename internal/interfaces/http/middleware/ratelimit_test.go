package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(l *Limiter, t0 time.Time) *time.Time {
	now := t0
	l.now = func() time.Time { return now }
	return &now
}

func TestLimiter_BurstThenRefuse(t *testing.T) {
	l := NewLimiter(1, 2, time.Minute)
	fixedClock(l, time.Unix(1000, 0))

	ok, remaining, _ := l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, remaining, _ = l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)

	ok, _, retry := l.Allow("a")
	assert.False(t, ok)
	assert.InDelta(t, time.Second.Seconds(), retry.Seconds(), 0.01)

	// other clients have their own bucket
	ok, _, _ = l.Allow("b")
	assert.True(t, ok)
}

func TestLimiter_Refills(t *testing.T) {
	l := NewLimiter(1, 1, time.Minute)
	now := fixedClock(l, time.Unix(1000, 0))

	ok, _, _ := l.Allow("a")
	assert.True(t, ok)
	ok, _, _ = l.Allow("a")
	assert.False(t, ok)

	*now = now.Add(time.Second)
	ok, _, _ = l.Allow("a")
	assert.True(t, ok)
}

func TestLimiter_SweepsIdleClients(t *testing.T) {
	l := NewLimiter(1, 1, time.Minute)
	now := fixedClock(l, time.Unix(1000, 0))

	l.Allow("a")
	l.Allow("b")
	assert.Equal(t, 2, l.Clients())

	*now = now.Add(2 * time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.Clients())
}

func TestRateLimit_Middleware(t *testing.T) {
	cfg := DefaultRateLimitConfig(1, 1)
	handler := RateLimit(cfg)(okHandler())

	req := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, path, nil)
		r.RemoteAddr = "10.0.0.1:5555"
		handler.ServeHTTP(w, r)
		return w
	}

	first := req("/api/v1/estimate")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := req("/api/v1/estimate")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")

	// health checks are never limited
	assert.Equal(t, http.StatusOK, req("/healthz").Code)
}

func TestRemoteIPKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "192.0.2.7", RemoteIPKey(r))

	r.RemoteAddr = "192.0.2.7"
	assert.Equal(t, "192.0.2.7", RemoteIPKey(r))
}

//Personal.AI order the ending

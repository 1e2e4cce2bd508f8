package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures per-client rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// KeyFunc extracts the client key; nil means the remote IP.
	KeyFunc func(r *http.Request) string
	// SkipPaths bypass the limiter.
	SkipPaths []string
	// IdleTTL drops limiters of clients idle for longer.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns a per-IP limit of rps with the given burst.
func DefaultRateLimitConfig(rps float64, burst int) RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: rps,
		BurstSize:         burst,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		IdleTTL:           10 * time.Minute,
	}
}

// RemoteIPKey keys clients by the host part of RemoteAddr.  Run it behind
// chi's RealIP middleware to honour X-Forwarded-For.
func RemoteIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter holds one token bucket per client key.
type Limiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

// NewLimiter creates a Limiter allowing rps sustained requests per client
// with bursts up to burst.
func NewLimiter(rps float64, burst int, idleTTL time.Duration) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}
}

// Allow consumes one token for key.  It returns whether the request may
// proceed, the tokens left and, when refused, how long until the next token.
func (l *Limiter) Allow(key string) (bool, int, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.idleTTL > 0 && now.Sub(l.lastSweep) > l.idleTTL {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.idleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	r := c.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay
	}
	return true, int(math.Max(0, c.limiter.TokensAt(now))), 0
}

// Clients returns the number of tracked client keys.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// RateLimit rejects clients over their limit with 429 and a Retry-After
// header.
func RateLimit(config RateLimitConfig) func(http.Handler) http.Handler {
	limiter := NewLimiter(config.RequestsPerSecond, config.BurstSize, config.IdleTTL)
	return RateLimitWith(limiter, config)
}

// RateLimitWith is RateLimit over a caller-owned Limiter.
func RateLimitWith(limiter *Limiter, config RateLimitConfig) func(http.Handler) http.Handler {
	skipSet := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipSet[p] = true
	}
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = RemoteIPKey
	}
	limit := strconv.Itoa(limiter.burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipSet[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, retryAfter := limiter.Allow(keyFunc(r))
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"success":false,"error":{"code":"RATE_LIMITED","message":"rate limit exceeded, please retry later"}}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

//Personal.AI order the ending

// Package middleware holds the chi middleware of the estimation API: request
// logging, request-id propagation, metrics, CORS and rate limiting.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
)

// LoggingConfig holds configuration for the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are not logged, e.g. health checks.
	SkipPaths []string
	// SlowThreshold above which a request is logged at warn level.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig returns the logging configuration used by the router.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

// RequestID copies the chi request id into the context under the logging key
// so loggers derived with WithContext carry it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			w.Header().Set(chimw.RequestIDHeader, id)
			r = r.WithContext(logging.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogging logs one line per request.  5xx responses log at error level,
// 4xx and slow requests at warn.
func RequestLogging(logger logging.Logger, config LoggingConfig) func(http.Handler) http.Handler {
	skipSet := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipSet[p] = true
	}
	logger = logger.Named("http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipSet[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			duration := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", status),
				logging.Duration("duration", duration),
				logging.Int("bytes", ww.BytesWritten()),
				logging.String("remote_addr", r.RemoteAddr),
			}
			l := logger.WithContext(r.Context())

			switch {
			case status >= 500:
				l.Error("request completed with server error", fields...)
			case status >= 400:
				l.Warn("request completed with client error", fields...)
			case config.SlowThreshold > 0 && duration >= config.SlowThreshold:
				l.Warn("request completed (slow)", fields...)
			default:
				l.Info("request completed", fields...)
			}
		})
	}
}

//Personal.AI order the ending

// Package http exposes the estimator over a chi HTTP API.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/internal/interfaces/http/handlers"
	"github.com/turtacn/simpol/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware settings of the route
// tree.  Nil handlers leave their routes unmounted.
type RouterConfig struct {
	EstimationHandler *handlers.EstimationHandler
	HealthHandler     *handlers.HealthHandler

	Logger         logging.Logger
	Metrics        middleware.HTTPRecorder
	MetricsHandler http.Handler
	MetricsPath    string

	CORSOrigins    []string
	RateLimit      *middleware.RateLimitConfig
	RequestTimeout time.Duration
}

// NewRouter builds the route tree: health checks and metrics at the root, the
// estimation API under /api/v1.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins...)))
	}

	// --- Health ---
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimit != nil && cfg.RateLimit.RequestsPerSecond > 0 {
			api.Use(middleware.RateLimit(*cfg.RateLimit))
		}
		if cfg.RequestTimeout > 0 {
			api.Use(chimw.Timeout(cfg.RequestTimeout))
		}
		registerEstimationRoutes(api, cfg.EstimationHandler)
	})

	return r
}

func registerEstimationRoutes(r chi.Router, h *handlers.EstimationHandler) {
	if h == nil {
		return
	}
	r.Post("/estimate", h.Estimate)
	r.Post("/estimate/batch", h.EstimateBatch)
	r.Post("/evaluate", h.Evaluate)
	r.Get("/groups", h.Groups)
}

//Personal.AI order the ending

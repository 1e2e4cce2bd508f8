package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/turtacn/simpol/pkg/types/common"
)

// HealthChecker is a dependency that can report its health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a ping function to HealthChecker.
type CheckFunc struct {
	ComponentName string
	Fn            func(ctx context.Context) error
}

func (c CheckFunc) Name() string                    { return c.ComponentName }
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// HealthHandler serves the liveness and readiness checks.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
	timeout  time.Duration
}

// NewHealthHandler creates a HealthHandler.  Only configured dependencies
// (cache, object storage) are passed as checkers; the estimator itself has
// no external state.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		startAt:  time.Now(),
		timeout:  5 * time.Second,
	}
}

// LivenessResponse is the body of GET /healthz.
type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the body of GET /readyz.
type ReadinessResponse struct {
	Status     common.HealthStatus               `json:"status"`
	Components map[string]common.ComponentHealth `json:"components,omitempty"`
}

// Liveness always answers 200 while the process runs.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness answers 200 when every checker passes and 503 otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	components := h.checkAll(ctx)
	resp := ReadinessResponse{Status: common.HealthUp, Components: components}
	for _, c := range components {
		if c.Status != common.HealthUp {
			resp.Status = common.HealthDown
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) checkAll(ctx context.Context) map[string]common.ComponentHealth {
	results := make(map[string]common.ComponentHealth, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range h.checkers {
		wg.Add(1)
		go func(c HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := c.Check(ctx)
			ch := common.ComponentHealth{Name: c.Name(), Status: common.HealthUp, LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				ch.Status = common.HealthDown
				ch.Message = err.Error()
			}

			mu.Lock()
			results[c.Name()] = ch
			mu.Unlock()
		}(checker)
	}

	wg.Wait()
	return results
}

//Personal.AI order the ending

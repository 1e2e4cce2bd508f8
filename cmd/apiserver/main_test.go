package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simpol/internal/bootstrap"
	"github.com/turtacn/simpol/internal/config"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
)

func newTestRuntime(t *testing.T, mutate func(*config.Config)) *bootstrap.Runtime {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Metrics.Enabled = true
	if mutate != nil {
		mutate(cfg)
	}
	rt, err := bootstrap.New(cfg, logging.NewNopLogger(), bootstrap.SourceHTTP)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_EstimateAndMetrics(t *testing.T) {
	h := newRouter(newTestRuntime(t, nil))

	rec := serve(h, http.MethodPost, "/api/v1/estimate", `{"smiles":"CCO"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"success":true`)

	rec = serve(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "simpol_http_requests_total")
	assert.Contains(t, rec.Body.String(), "simpol_estimates_total")
}

func TestNewRouter_HealthChecksWithoutBackends(t *testing.T) {
	rt := newTestRuntime(t, nil)
	assert.Empty(t, healthCheckers(rt))

	h := newRouter(rt)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/readyz", "").Code)
}

func TestNewRouter_MetricsDisabled(t *testing.T) {
	h := newRouter(newTestRuntime(t, func(c *config.Config) { c.Metrics.Enabled = false }))
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/metrics", "").Code)
}

func TestNewRouter_ReportUploadDisabled(t *testing.T) {
	h := newRouter(newTestRuntime(t, nil))
	rec := serve(h, http.MethodPost, "/api/v1/estimate/batch?report=csv", `{"compounds":[{"smiles":"CCO"}]}`)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestNewRouter_RateLimit(t *testing.T) {
	h := newRouter(newTestRuntime(t, func(c *config.Config) {
		c.Server.RateLimitRPS = 1
		c.Server.RateLimitBurst = 1
	}))
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/v1/groups", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, http.MethodGet, "/api/v1/groups", "").Code)
}

//Personal.AI order the ending

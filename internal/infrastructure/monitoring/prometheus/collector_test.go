package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{Subsystem: "unit"}, nil)
	assert.Error(t, err)

	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", EnableProcessMetrics: true, EnableGoMetrics: true}, nil)
	require.NoError(t, err)
	out := scrape(t, c)
	assert.Contains(t, out, "go_goroutines")
}

func TestRegisterCounter(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("things_total", "Things", "kind")
	vec.WithLabelValues("a").Inc()
	vec.WithLabelValues("a").Add(2)

	assert.Contains(t, scrape(t, c), `test_unit_things_total{kind="a"} 3`)
}

func TestRegisterCounter_SameNameReturnsSameVector(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("shared_total", "Shared", "k").WithLabelValues("x").Inc()
	c.RegisterCounter("shared_total", "Shared", "k").WithLabelValues("x").Inc()

	assert.Contains(t, scrape(t, c), `test_unit_shared_total{k="x"} 2`)
}

func TestRegister_TypeMismatchFallsBackToNop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("clash", "Clash")
	g := c.RegisterGauge("clash", "Clash")
	assert.IsType(t, nopGaugeVec{}, g)
	assert.NotPanics(t, func() { g.WithLabelValues().Set(1) })
}

func TestRegisterGaugeAndHistogram(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("depth", "Depth")
	g.WithLabelValues().Inc()
	g.WithLabelValues().Inc()
	g.WithLabelValues().Dec()

	h := c.RegisterHistogram("latency_seconds", "Latency", nil, "op")
	h.WithLabelValues("parse").Observe(0.002)

	out := scrape(t, c)
	assert.Contains(t, out, "test_unit_depth 1")
	assert.Contains(t, out, `test_unit_latency_seconds_count{op="parse"} 1`)
}

func TestNopCollector(t *testing.T) {
	c := NewNopCollector()
	assert.NotPanics(t, func() {
		c.RegisterCounter("a", "a").WithLabelValues("x").Add(1)
		c.RegisterGauge("b", "b").WithLabelValues().Set(1)
		c.RegisterHistogram("c", "c", nil).WithLabelValues().Observe(1)
	})
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimer(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("op_seconds", "Op", nil)
	timer := NewTimer(h.WithLabelValues())
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.ObserveDuration(), time.Millisecond)
	assert.Contains(t, scrape(t, c), "test_unit_op_seconds_count 1")

	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

//Personal.AI order the ending

// Package prometheus exposes the service's metrics through a private
// Prometheus registry.  Callers register vectors through MetricsCollector and
// only see the narrow Counter/Gauge/Histogram interfaces, so a disabled
// collector can hand out no-op implementations.
package prometheus

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
)

// MetricsCollector registers metric vectors and serves the scrape endpoint.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Handler() http.Handler
}

type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

type Counter interface {
	Inc()
	Add(delta float64)
}

type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
}

type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

type Histogram interface {
	Observe(value float64)
}

// CollectorConfig holds the collector settings.
type CollectorConfig struct {
	Namespace            string
	Subsystem            string
	EnableProcessMetrics bool
	EnableGoMetrics      bool
	ConstLabels          map[string]string
}

// DefaultBuckets is used by RegisterHistogram when buckets is nil.
var DefaultBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

type prometheusCollector struct {
	registry *prometheus.Registry
	cfg      CollectorConfig
	logger   logging.Logger

	mu         sync.Mutex
	registered map[string]prometheus.Collector
}

// NewMetricsCollector creates a collector backed by a fresh registry.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("prometheus: namespace is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	reg := prometheus.NewRegistry()
	if cfg.EnableProcessMetrics {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: cfg.Namespace}))
	}
	if cfg.EnableGoMetrics {
		reg.MustRegister(collectors.NewGoCollector())
	}
	return &prometheusCollector{
		registry:   reg,
		cfg:        cfg,
		logger:     logger.Named("metrics"),
		registered: make(map[string]prometheus.Collector),
	}, nil
}

func (c *prometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// register returns the collector already stored under name, if any, so the
// same metric can be requested by several components.
func (c *prometheusCollector) register(name string, fresh prometheus.Collector) (prometheus.Collector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fq := prometheus.BuildFQName(c.cfg.Namespace, c.cfg.Subsystem, name)
	if existing, ok := c.registered[fq]; ok {
		return existing, nil
	}
	if err := c.registry.Register(fresh); err != nil {
		return nil, err
	}
	c.registered[fq] = fresh
	return fresh, nil
}

func (c *prometheusCollector) fail(kind, name string, err error) {
	if err != nil {
		c.logger.Error("failed to register metric", logging.String("kind", kind), logging.String("name", name), logging.Err(err))
		return
	}
	c.logger.Warn("metric type mismatch", logging.String("kind", kind), logging.String("name", name))
}

func (c *prometheusCollector) RegisterCounter(name, help string, labels ...string) CounterVec {
	got, err := c.register(name, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.cfg.Namespace, Subsystem: c.cfg.Subsystem, Name: name, Help: help, ConstLabels: c.cfg.ConstLabels,
	}, labels))
	if v, ok := got.(*prometheus.CounterVec); ok && err == nil {
		return counterVec{v}
	}
	c.fail("counter", name, err)
	return nopVec{}
}

func (c *prometheusCollector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	got, err := c.register(name, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.cfg.Namespace, Subsystem: c.cfg.Subsystem, Name: name, Help: help, ConstLabels: c.cfg.ConstLabels,
	}, labels))
	if v, ok := got.(*prometheus.GaugeVec); ok && err == nil {
		return gaugeVec{v}
	}
	c.fail("gauge", name, err)
	return nopGaugeVec{}
}

func (c *prometheusCollector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if buckets == nil {
		buckets = DefaultBuckets
	}
	got, err := c.register(name, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.cfg.Namespace, Subsystem: c.cfg.Subsystem, Name: name, Help: help, ConstLabels: c.cfg.ConstLabels,
		Buckets: buckets,
	}, labels))
	if v, ok := got.(*prometheus.HistogramVec); ok && err == nil {
		return histogramVec{v}
	}
	c.fail("histogram", name, err)
	return nopHistogramVec{}
}

// ─────────────────────────────────────────────────────────────────────────────
// Wrappers
// ─────────────────────────────────────────────────────────────────────────────

type counterVec struct{ v *prometheus.CounterVec }

func (w counterVec) WithLabelValues(lvs ...string) Counter { return w.v.WithLabelValues(lvs...) }

type gaugeVec struct{ v *prometheus.GaugeVec }

func (w gaugeVec) WithLabelValues(lvs ...string) Gauge { return w.v.WithLabelValues(lvs...) }

type histogramVec struct{ v *prometheus.HistogramVec }

func (w histogramVec) WithLabelValues(lvs ...string) Histogram { return w.v.WithLabelValues(lvs...) }

// ─────────────────────────────────────────────────────────────────────────────
// No-op collector
// ─────────────────────────────────────────────────────────────────────────────

type nopVec struct{}

func (nopVec) WithLabelValues(...string) Counter { return nopMetric{} }

type nopMetric struct{}

func (nopMetric) Inc()            {}
func (nopMetric) Dec()            {}
func (nopMetric) Add(float64)     {}
func (nopMetric) Set(float64)     {}
func (nopMetric) Observe(float64) {}

type nopGaugeVec struct{}

func (nopGaugeVec) WithLabelValues(...string) Gauge { return nopMetric{} }

type nopHistogramVec struct{}

func (nopHistogramVec) WithLabelValues(...string) Histogram { return nopMetric{} }

type nopCollector struct{}

// NewNopCollector returns a collector whose metrics discard every update and
// whose handler answers 404, for runs with metrics disabled.
func NewNopCollector() MetricsCollector { return nopCollector{} }

func (nopCollector) RegisterCounter(string, string, ...string) CounterVec { return nopVec{} }
func (nopCollector) RegisterGauge(string, string, ...string) GaugeVec     { return nopGaugeVec{} }
func (nopCollector) RegisterHistogram(string, string, []float64, ...string) HistogramVec {
	return nopHistogramVec{}
}
func (nopCollector) Handler() http.Handler { return http.NotFoundHandler() }

// ─────────────────────────────────────────────────────────────────────────────
// Timer
// ─────────────────────────────────────────────────────────────────────────────

// Timer observes the seconds elapsed since its creation.
type Timer struct {
	h     Histogram
	start time.Time
}

func NewTimer(h Histogram) *Timer { return &Timer{h: h, start: time.Now()} }

// ObserveDuration records the elapsed time and returns it.
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	if t.h != nil {
		t.h.Observe(d.Seconds())
	}
	return d
}

//Personal.AI order the ending

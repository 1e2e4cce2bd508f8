package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the service records.
type AppMetrics struct {
	// Estimation core
	EstimatesTotal   CounterVec   // source, outcome
	EstimateDuration HistogramVec // source
	GroupsDetected   CounterVec   // group

	// Batch runs
	BatchRunsTotal  CounterVec // status
	BatchCompounds  HistogramVec
	BatchDuration   HistogramVec
	BatchActiveRuns GaugeVec

	// Outer layers
	HTTPRequestsTotal   CounterVec   // method, route, status_code
	HTTPRequestDuration HistogramVec // method, route
	CacheAccessTotal    CounterVec   // result
	StreamMessagesTotal CounterVec   // topic, status
	ReportUploadsTotal  CounterVec   // status
	ErrorsTotal         CounterVec   // component, code
}

var (
	DefaultEstimateBuckets = []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05}
	DefaultHTTPBuckets     = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultBatchBuckets    = []float64{1, 10, 50, 100, 500, 1000, 5000, 10000}
	DefaultRunBuckets      = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(c MetricsCollector) *AppMetrics {
	return &AppMetrics{
		EstimatesTotal:   c.RegisterCounter("estimates_total", "Compounds estimated", "source", "outcome"),
		EstimateDuration: c.RegisterHistogram("estimate_duration_seconds", "Time to parse, count and evaluate one compound", DefaultEstimateBuckets, "source"),
		GroupsDetected:   c.RegisterCounter("groups_detected_total", "Group occurrences detected", "group"),

		BatchRunsTotal:  c.RegisterCounter("batch_runs_total", "Batch runs", "status"),
		BatchCompounds:  c.RegisterHistogram("batch_compounds", "Compounds per batch run", DefaultBatchBuckets),
		BatchDuration:   c.RegisterHistogram("batch_duration_seconds", "Batch run duration", DefaultRunBuckets),
		BatchActiveRuns: c.RegisterGauge("batch_active_runs", "Batch runs in progress"),

		HTTPRequestsTotal:   c.RegisterCounter("http_requests_total", "HTTP requests", "method", "route", "status_code"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPBuckets, "method", "route"),
		CacheAccessTotal:    c.RegisterCounter("cache_access_total", "Result cache lookups", "result"),
		StreamMessagesTotal: c.RegisterCounter("stream_messages_total", "Stream messages handled", "topic", "status"),
		ReportUploadsTotal:  c.RegisterCounter("report_uploads_total", "Report uploads to object storage", "status"),
		ErrorsTotal:         c.RegisterCounter("errors_total", "Errors by component and code", "component", "code"),
	}
}

// NewNopAppMetrics returns metrics that record nothing.
func NewNopAppMetrics() *AppMetrics { return NewAppMetrics(NewNopCollector()) }

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordEstimate counts one compound estimate from source (cli, http,
// stream, batch).
func (m *AppMetrics) RecordEstimate(source string, ok bool, d time.Duration) {
	m.EstimatesTotal.WithLabelValues(source, outcome(ok)).Inc()
	m.EstimateDuration.WithLabelValues(source).Observe(d.Seconds())
}

// RecordGroups adds the non-zero group counts of one compound.
func (m *AppMetrics) RecordGroups(counts map[string]int) {
	for key, n := range counts {
		m.GroupsDetected.WithLabelValues(key).Add(float64(n))
	}
}

// RecordBatch records a finished run.
func (m *AppMetrics) RecordBatch(status string, compounds int, d time.Duration) {
	m.BatchRunsTotal.WithLabelValues(status).Inc()
	m.BatchCompounds.WithLabelValues().Observe(float64(compounds))
	m.BatchDuration.WithLabelValues().Observe(d.Seconds())
}

func (m *AppMetrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *AppMetrics) RecordCacheAccess(hit bool) {
	if hit {
		m.CacheAccessTotal.WithLabelValues("hit").Inc()
		return
	}
	m.CacheAccessTotal.WithLabelValues("miss").Inc()
}

func (m *AppMetrics) RecordStreamMessage(topic string, ok bool) {
	m.StreamMessagesTotal.WithLabelValues(topic, outcome(ok)).Inc()
}

func (m *AppMetrics) RecordReportUpload(ok bool) {
	m.ReportUploadsTotal.WithLabelValues(outcome(ok)).Inc()
}

func (m *AppMetrics) RecordError(component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending

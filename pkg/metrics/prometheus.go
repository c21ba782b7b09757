// Package metrics provides Prometheus metrics for the racecurve service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Parse and aggregate
	recordsParsed    *prometheus.CounterVec
	linesSkipped     *prometheus.CounterVec
	summaryRebuilds  *prometheus.CounterVec
	rebuildDuration  *prometheus.HistogramVec
	summaryEntries   *prometheus.GaugeVec
	datasetsTotal    prometheus.Gauge
	sourceErrors     *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	watchInvalidates *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

// customRegistry keeps the default Go collectors out of /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "racecurve",
		subsystem:        "summary",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsParsed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_parsed_total",
		Help:      "Valid race records bound from source lines",
	}, []string{"dataset"})

	m.linesSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lines_skipped_total",
		Help:      "Source lines rejected by the parser, by reason",
	}, []string{"dataset", "reason"})

	m.summaryRebuilds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rebuilds_total",
		Help:      "Summary recomputations from source content",
	}, []string{"dataset"})

	m.rebuildDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rebuild_duration_milliseconds",
		Help:      "Time to read, parse and aggregate one dataset",
		Buckets:   m.histogramBuckets,
	}, []string{"dataset"})

	m.summaryEntries = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "entries",
		Help:      "AgeBest entries in the latest summary",
	}, []string{"dataset", "sex"})

	m.datasetsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "datasets",
		Help:      "Configured datasets",
	})

	m.sourceErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_errors_total",
		Help:      "Source reads that failed",
	}, []string{"dataset"})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_lookups_total",
		Help:      "Summary cache lookups by result (hit, revalidated, miss)",
	}, []string{"dataset", "result"})

	m.watchInvalidates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "watch_invalidations_total",
		Help:      "Cache entries dropped by file change notifications",
	}, []string{"dataset"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordParse records the outcome of one parse. skipped maps reason to count.
func RecordParse(dataset string, parsed int, skipped map[string]int) {
	globalManager.recordsParsed.WithLabelValues(dataset).Add(float64(parsed))
	for reason, n := range skipped {
		globalManager.linesSkipped.WithLabelValues(dataset, reason).Add(float64(n))
	}
}

// RecordRebuild records a summary recomputation and its size.
func RecordRebuild(dataset string, durationMs float64, male, female int) {
	globalManager.summaryRebuilds.WithLabelValues(dataset).Inc()
	globalManager.rebuildDuration.WithLabelValues(dataset).Observe(durationMs)
	globalManager.summaryEntries.WithLabelValues(dataset, "M").Set(float64(male))
	globalManager.summaryEntries.WithLabelValues(dataset, "F").Set(float64(female))
}

// RecordSourceError counts an unreadable source.
func RecordSourceError(dataset string) {
	globalManager.sourceErrors.WithLabelValues(dataset).Inc()
}

// RecordCacheLookup counts a cache lookup; result is hit, revalidated or miss.
func RecordCacheLookup(dataset, result string) {
	globalManager.cacheLookups.WithLabelValues(dataset, result).Inc()
}

// RecordWatchInvalidation counts a watcher-driven cache drop.
func RecordWatchInvalidation(dataset string) {
	globalManager.watchInvalidates.WithLabelValues(dataset).Inc()
}

// UpdateDatasets sets the configured dataset count.
func UpdateDatasets(n int) {
	globalManager.datasetsTotal.Set(float64(n))
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the registry served at /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

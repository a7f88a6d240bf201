// Package metrics provides Prometheus metrics for the trainer service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every collector of the trainer service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Question pipeline
	questionsGenerated *prometheus.CounterVec
	generationFailures *prometheus.CounterVec

	// Ledger
	answers              *prometheus.CounterVec
	pointsAwarded        *prometheus.CounterVec
	duplicateSubmissions prometheus.Counter
	dedupeSize           prometheus.Gauge
	ledgerLatency        *prometheus.HistogramVec
	ledgerErrors         *prometheus.CounterVec
	contractUpdates      *prometheus.CounterVec

	// External lookups
	lookupLatency *prometheus.HistogramVec
	lookupResults *prometheus.CounterVec
	lookupCache   *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "trainer",
		subsystem:        "quiz",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	m.questionsGenerated = m.counterVec("questions_generated_total",
		"Questions generated per trainer domain", "domain")
	m.generationFailures = m.counterVec("generation_failures_total",
		"Failed or degraded question generations", "domain", "reason")

	m.answers = m.counterVec("answers_total",
		"Graded answers per domain and result", "domain", "result")
	m.pointsAwarded = m.counterVec("points_total",
		"Absolute points moved by graded answers", "direction")
	m.duplicateSubmissions = promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duplicate_submissions_total",
		Help:        "Answer submissions for an already graded question",
		ConstLabels: m.constLabels,
	})
	m.dedupeSize = m.gauge("dedupe_entries", "Question IDs remembered for duplicate detection")
	m.ledgerLatency = m.histogramVec("ledger_latency_milliseconds",
		"Ledger operation latency in milliseconds", "op")
	m.ledgerErrors = m.counterVec("ledger_errors_total",
		"Failed ledger operations", "op")
	m.contractUpdates = m.counterVec("contract_updates_total",
		"Contract submissions by result", "result")

	m.lookupLatency = m.histogramVec("lookup_latency_milliseconds",
		"External lookup latency in milliseconds", "source")
	m.lookupResults = m.counterVec("lookup_results_total",
		"External lookups by source and result", "source", "result")
	m.lookupCache = m.counterVec("lookup_cache_total",
		"Lookup cache hits and misses", "source", "result")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Total number of errors by type", "error_type", "severity")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

func resultLabel(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

// RecordQuestionGenerated counts a generated question.
func RecordQuestionGenerated(domain string) {
	globalManager.questionsGenerated.WithLabelValues(domain).Inc()
}

// RecordGenerationFailure counts a failed or degraded generation.
func RecordGenerationFailure(domain, reason string) {
	globalManager.generationFailures.WithLabelValues(domain, reason).Inc()
}

// RecordAnswer counts a graded answer and the points it moved.
func RecordAnswer(domain string, correct bool, points int64) {
	globalManager.answers.WithLabelValues(domain, resultLabel(correct, "correct", "incorrect")).Inc()
	switch {
	case points > 0:
		globalManager.pointsAwarded.WithLabelValues("earned").Add(float64(points))
	case points < 0:
		globalManager.pointsAwarded.WithLabelValues("deducted").Add(float64(-points))
	}
}

// RecordDuplicateSubmission counts a resubmitted question.
func RecordDuplicateSubmission() {
	globalManager.duplicateSubmissions.Inc()
}

// UpdateDedupeSize sets the number of remembered question IDs.
func UpdateDedupeSize(n int) {
	globalManager.dedupeSize.Set(float64(n))
}

// RecordLedgerLatency records ledger operation latency in milliseconds.
func RecordLedgerLatency(op string, latencyMs float64) {
	globalManager.ledgerLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordLedgerError counts a failed ledger operation.
func RecordLedgerError(op string) {
	globalManager.ledgerErrors.WithLabelValues(op).Inc()
}

// RecordContractUpdate counts an accepted or rejected contract.
func RecordContractUpdate(accepted bool) {
	globalManager.contractUpdates.WithLabelValues(resultLabel(accepted, "accepted", "rejected")).Inc()
}

// RecordLookup records an external lookup's latency and outcome.
func RecordLookup(source string, ok bool, latencyMs float64) {
	globalManager.lookupLatency.WithLabelValues(source).Observe(latencyMs)
	globalManager.lookupResults.WithLabelValues(source, resultLabel(ok, "ok", "error")).Inc()
}

// RecordLookupCache counts a cache hit or miss for source.
func RecordLookupCache(source string, hit bool) {
	globalManager.lookupCache.WithLabelValues(source, resultLabel(hit, "hit", "miss")).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// CollectSystem samples runtime gauges every refresh interval until ctx is done.
func CollectSystem(ctx context.Context) {
	ticker := time.NewTicker(globalManager.refreshInterval)
	defer ticker.Stop()

	var lastNumGC uint32
	for {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		UpdateSystemMemoryUsage(ms.HeapInuse)
		UpdateSystemGoroutineCount(runtime.NumGoroutine())
		if ms.NumGC != lastNumGC {
			pause := ms.PauseNs[(ms.NumGC+255)%256]
			RecordSystemGCPauseTime(float64(pause) / float64(time.Millisecond))
			lastNumGC = ms.NumGC
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

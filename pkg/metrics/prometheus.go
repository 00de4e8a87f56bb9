// Package metrics provides Prometheus metrics for the daonpick catalog service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the service exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline
	feedFetches      *prometheus.CounterVec
	feedFetchLatency *prometheus.HistogramVec
	feedRows         *prometheus.GaugeVec
	feedInvalidRows  *prometheus.CounterVec
	viewStoreOps     *prometheus.CounterVec
	catalogSize      prometheus.Gauge
	catalogGen       prometheus.Gauge
	catalogDegraded  *prometheus.GaugeVec
	loadsDiscarded   prometheus.Counter
	catalogLoadTime  prometheus.Histogram

	// Interactions
	clicks         prometheus.Counter
	clickDuplicate prometheus.Counter
	lookupMisses   prometheus.Counter
	sessions       prometheus.Gauge

	// Task runner
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueDropped    prometheus.Counter
	tasksProcessed  *prometheus.CounterVec
	taskLatency     prometheus.Histogram
	workerCount     prometheus.Gauge
	increments      *prometheus.CounterVec
	analyticsEvents *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager registered on the configured registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "daonpick",
		subsystem:        "catalog",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.feedFetches = m.counterVec("feed_fetches_total", "Feed fetches by source and outcome", "source", "outcome")
	m.feedFetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "feed_fetch_duration_milliseconds",
		Help:    "Feed fetch duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"source"})
	m.feedRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "feed_rows", Help: "Rows accepted from the last fetch of each feed",
	}, []string{"source"})
	m.feedInvalidRows = m.counterVec("feed_invalid_rows_total", "Feed rows rejected at the parse boundary", "source", "reason")
	m.viewStoreOps = m.counterVec("view_store_operations_total", "View store operations by backend, op and outcome", "backend", "op", "outcome")
	m.catalogSize = m.gauge("entries", "Entries in the published catalog snapshot")
	m.catalogGen = m.gauge("generation", "Generation number of the published catalog snapshot")
	m.catalogDegraded = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "degraded", Help: "1 when the published snapshot was built without the named source",
	}, []string{"source"})
	m.loadsDiscarded = m.counter("loads_discarded_total", "Catalog loads discarded because a newer load superseded them")
	m.catalogLoadTime = m.histogram("load_duration_milliseconds", "Full catalog load duration in milliseconds")

	m.clicks = m.counter("clicks_total", "Product clicks recorded")
	m.clickDuplicate = m.counter("clicks_duplicate_total", "Click requests ignored because their click id was already seen")
	m.lookupMisses = m.counter("lookup_misses_total", "Code lookups that matched no product")
	m.sessions = m.gauge("sessions", "Sessions with interaction state in memory")

	m.queueSize = m.gauge("task_queue_size", "Click tasks waiting in the queue")
	m.queueCapacity = m.gauge("task_queue_capacity", "Capacity of the click task queue")
	m.queueDropped = m.counter("task_queue_dropped_total", "Click tasks dropped because the queue was full or closed")
	m.tasksProcessed = m.counterVec("tasks_processed_total", "Click tasks processed by outcome", "outcome")
	m.taskLatency = m.histogram("task_duration_milliseconds", "Click task processing duration in milliseconds")
	m.workerCount = m.gauge("worker_count", "Click task workers running")
	m.increments = m.counterVec("view_increments_total", "View counter increments by outcome", "outcome")
	m.analyticsEvents = m.counterVec("analytics_events_total", "Analytics events by outcome", "outcome")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and kind", "component", "kind")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Goroutines running")
}

// Pipeline.

// RecordFeedFetch records a feed fetch outcome ("ok" or "error") and its duration.
func RecordFeedFetch(source, outcome string, durationMs float64) {
	globalManager.feedFetches.WithLabelValues(source, outcome).Inc()
	globalManager.feedFetchLatency.WithLabelValues(source).Observe(durationMs)
}

// UpdateFeedRows sets the accepted row count of the last fetch.
func UpdateFeedRows(source string, rows int) {
	globalManager.feedRows.WithLabelValues(source).Set(float64(rows))
}

// RecordFeedInvalidRow counts a rejected feed row.
func RecordFeedInvalidRow(source, reason string) {
	globalManager.feedInvalidRows.WithLabelValues(source, reason).Inc()
}

// RecordViewStoreOp counts a view store call.
func RecordViewStoreOp(backend, op, outcome string) {
	globalManager.viewStoreOps.WithLabelValues(backend, op, outcome).Inc()
}

// UpdateCatalog sets the size and generation of the published snapshot.
func UpdateCatalog(entries int, generation uint64) {
	globalManager.catalogSize.Set(float64(entries))
	globalManager.catalogGen.Set(float64(generation))
}

// UpdateDegraded flags whether a source was missing from the published snapshot.
func UpdateDegraded(source string, degraded bool) {
	v := 0.0
	if degraded {
		v = 1
	}
	globalManager.catalogDegraded.WithLabelValues(source).Set(v)
}

// RecordLoadDiscarded counts a superseded load.
func RecordLoadDiscarded() { globalManager.loadsDiscarded.Inc() }

// RecordCatalogLoad records a full load duration.
func RecordCatalogLoad(durationMs float64) { globalManager.catalogLoadTime.Observe(durationMs) }

// Interactions.

// RecordClick counts a product click.
func RecordClick() { globalManager.clicks.Inc() }

// RecordClickDuplicate counts an idempotent replay of a click.
func RecordClickDuplicate() { globalManager.clickDuplicate.Inc() }

// RecordLookupMiss counts a code lookup that fell back.
func RecordLookupMiss() { globalManager.lookupMisses.Inc() }

// UpdateSessions sets the in-memory session count.
func UpdateSessions(n int) { globalManager.sessions.Set(float64(n)) }

// Task runner.

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueDropped counts a task that never made it into the queue.
func RecordQueueDropped() { globalManager.queueDropped.Inc() }

// RecordTaskProcessed counts a processed task ("ok" or "error") and its duration.
func RecordTaskProcessed(outcome string, durationMs float64) {
	globalManager.tasksProcessed.WithLabelValues(outcome).Inc()
	globalManager.taskLatency.Observe(durationMs)
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordIncrement counts a view counter increment outcome.
func RecordIncrement(outcome string) { globalManager.increments.WithLabelValues(outcome).Inc() }

// RecordAnalyticsEvent counts an analytics delivery outcome.
func RecordAnalyticsEvent(outcome string) {
	globalManager.analyticsEvents.WithLabelValues(outcome).Inc()
}

// HTTP.

// RecordHTTPRequest counts a served request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records a served request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordError counts an error by component and kind.
func RecordError(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// System.

// UpdateSystemMemoryUsage sets heap bytes allocated.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

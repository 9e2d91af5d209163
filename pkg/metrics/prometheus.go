// Package metrics provides Prometheus metrics for the autoleague runner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the runner.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Match resolution
	matchesExecuted prometheus.Counter
	resultsCached   prometheus.Counter
	resultsCorrupt  prometheus.Counter
	noRecording     prometheus.Counter
	matchDuration   prometheus.Histogram

	// Ladder progression
	ladderWrites    prometheus.Counter
	ladderSize      prometheus.Gauge
	bubbleSwaps     prometheus.Counter
	bubblePasses    prometheus.Counter
	bubbleCursor    prometheus.Gauge
	eventsCompleted *prometheus.CounterVec
	eventDuration   *prometheus.HistogramVec

	// HTTP status server
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the Record* helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry for /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "autoleague",
		subsystem:        "ladder",
		histogramBuckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
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
	auto := promauto.With(m.registry)

	m.matchesExecuted = m.counter("matches_executed_total", "Matches actually played by the executor")
	m.resultsCached = m.counter("results_cached_total", "Pairings answered from the result store without playing")
	m.resultsCorrupt = m.counter("results_corrupt_total", "Stored results that could not be parsed")
	m.noRecording = m.counter("no_recording_total", "Matches graded without a replay recording")
	m.matchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "match_duration_seconds",
		Help:        "Wall time spent executing a single match",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.ladderWrites = m.counter("ladder_writes_total", "Ladder snapshots persisted")
	m.ladderSize = m.gauge("ladder_size", "Competitors on the most recently written ladder")
	m.bubbleSwaps = m.counter("bubble_swaps_total", "Adjacent swaps performed by the bubble sorter")
	m.bubblePasses = m.counter("bubble_passes_total", "Bubble passes started")
	m.bubbleCursor = m.gauge("bubble_cursor", "Upper index of the pair the bubble sorter compares next")

	m.eventsCompleted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_completed_total",
		Help:        "Completed league events and bubble sorts by mode",
		ConstLabels: m.constLabels,
	}, []string{"mode"})
	m.eventDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "event_duration_seconds",
		Help:        "Wall time of a full event by mode",
		Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
		ConstLabels: m.constLabels,
	}, []string{"mode"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Status server requests",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_seconds",
		Help:        "Status server request latency",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_total",
		Help:        "Errors by component and type",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})
}

// RecordMatchExecuted counts a played match and observes its duration.
func RecordMatchExecuted(seconds float64) {
	globalManager.matchesExecuted.Inc()
	globalManager.matchDuration.Observe(seconds)
}

// RecordResultCached counts a pairing answered from the store.
func RecordResultCached() {
	globalManager.resultsCached.Inc()
}

// RecordResultCorrupt counts an unreadable stored result.
func RecordResultCorrupt() {
	globalManager.resultsCorrupt.Inc()
}

// RecordNoRecording counts a match graded without a replay.
func RecordNoRecording() {
	globalManager.noRecording.Inc()
}

// RecordLadderWrite counts a persisted ladder and updates the size gauge.
func RecordLadderWrite(size int) {
	globalManager.ladderWrites.Inc()
	globalManager.ladderSize.Set(float64(size))
}

// RecordBubbleSwap increments the swap counter.
func RecordBubbleSwap() {
	globalManager.bubbleSwaps.Inc()
}

// RecordBubblePass increments the pass counter.
func RecordBubblePass() {
	globalManager.bubblePasses.Inc()
}

// UpdateBubbleCursor sets the bubble cursor gauge.
func UpdateBubbleCursor(cursor int) {
	globalManager.bubbleCursor.Set(float64(cursor))
}

// RecordEventCompleted counts a finished event and observes its duration.
func RecordEventCompleted(mode string, seconds float64) {
	globalManager.eventsCompleted.WithLabelValues(mode).Inc()
	globalManager.eventDuration.WithLabelValues(mode).Observe(seconds)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

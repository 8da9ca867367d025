// Package metrics provides Prometheus metrics for the agent routing service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the routing service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Routing decision metrics - the business outcome of every interaction
	routingDecisions    *prometheus.CounterVec
	candidatesGenerated prometheus.Histogram
	emptyCandidateSets  prometheus.Counter

	// Model metrics - serving and training performance
	predictLatency   prometheus.Histogram
	predictErrors    prometheus.Counter
	trainingRuns     prometheus.Counter
	trainingFailures prometheus.Counter
	trainingDuration prometheus.Histogram
	trainingLoss     prometheus.Gauge

	// External collaborator metrics - degradation visibility
	geocodeCacheHits      prometheus.Counter
	geocodeCacheMisses    prometheus.Counter
	geocodeFailures       prometheus.Counter
	textAnalyticsFallback *prometheus.CounterVec

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "agentrouter",
		subsystem:        "routing",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.routingDecisions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "decisions_total",
			Help:      "Total routing decisions by outcome (routed, no_intent, all_busy, error)",
		},
		[]string{"outcome", "language"},
	)

	m.candidatesGenerated = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_generated",
		Help:      "Number of candidates produced per routing decision",
		Buckets:   []float64{0, 1, 2, 3, 5, 10},
	})

	m.emptyCandidateSets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "empty_candidate_sets_total",
		Help:      "Total decisions where no agent had positive skill for the interaction",
	})

	m.predictLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predict_latency_milliseconds",
		Help:      "Histogram of ranking model batch prediction latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.predictErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predict_errors_total",
		Help:      "Total ranking model inference failures",
	})

	m.trainingRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_runs_total",
		Help:      "Total completed training runs",
	})

	m.trainingFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_failures_total",
		Help:      "Total training runs that aborted before persisting parameters",
	})

	m.trainingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_duration_seconds",
		Help:      "Training run duration in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})

	m.trainingLoss = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_last_loss",
		Help:      "Final mean squared error of the last completed training run",
	})

	m.geocodeCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "geocode_cache_hits_total",
		Help:      "Total coordinate lookups served from the per-contact cache",
	})

	m.geocodeCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "geocode_cache_misses_total",
		Help:      "Total coordinate lookups that invoked the geocoding service",
	})

	m.geocodeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "geocode_failures_total",
		Help:      "Total geocoding calls that degraded to the (0,0) default",
	})

	m.textAnalyticsFallback = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "text_analytics_fallbacks_total",
			Help:      "Total text analytics calls that degraded to a default value",
		},
		[]string{"detector"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total errors by endpoint, method and type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// RecordRoutingDecision increments the decision counter for an outcome.
func RecordRoutingDecision(outcome, language string) {
	globalManager.routingDecisions.WithLabelValues(outcome, language).Inc()
}

// RecordCandidatesGenerated observes the shortlist size of one decision.
func RecordCandidatesGenerated(count int) {
	globalManager.candidatesGenerated.Observe(float64(count))
}

// RecordEmptyCandidateSet increments the all-busy counter.
func RecordEmptyCandidateSet() {
	globalManager.emptyCandidateSets.Inc()
}

// RecordPredictLatency observes one batch prediction duration.
func RecordPredictLatency(latencyMs float64) {
	globalManager.predictLatency.Observe(latencyMs)
}

// RecordPredictError increments the inference failure counter.
func RecordPredictError() {
	globalManager.predictErrors.Inc()
}

// RecordTrainingRun records a completed training run with its duration and final loss.
func RecordTrainingRun(duration time.Duration, loss float64) {
	globalManager.trainingRuns.Inc()
	globalManager.trainingDuration.Observe(duration.Seconds())
	globalManager.trainingLoss.Set(loss)
}

// RecordTrainingFailure increments the aborted-training counter.
func RecordTrainingFailure() {
	globalManager.trainingFailures.Inc()
}

// RecordGeocodeCacheHit increments the cache hit counter.
func RecordGeocodeCacheHit() {
	globalManager.geocodeCacheHits.Inc()
}

// RecordGeocodeCacheMiss increments the cache miss counter.
func RecordGeocodeCacheMiss() {
	globalManager.geocodeCacheMisses.Inc()
}

// RecordGeocodeFailure increments the degraded-geocode counter.
func RecordGeocodeFailure() {
	globalManager.geocodeFailures.Inc()
}

// RecordTextAnalyticsFallback records a degraded detector result.
// detector is one of language, sentiment, intent.
func RecordTextAnalyticsFallback(detector string) {
	globalManager.textAnalyticsFallback.WithLabelValues(detector).Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the current allocated memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

package prometheus

import (
	"net/http"
	"strconv"
	"time"
)

// Comparison outcome label values.
const (
	OutcomeBackend      = "backend"
	OutcomeCache        = "cache"
	OutcomeFallback     = "fallback"
	OutcomeShortCircuit = "short_circuit"
	OutcomeBlank        = "blank"
)

// Backend operation label values.
const (
	OperationScore    = "score"
	OperationAnalysis = "analysis"
	OperationExplain  = "explain"
	OperationWarmup   = "warmup"
)

// EngineMetrics holds every metric MacroCompare exports.  A nil
// *EngineMetrics is valid and records nothing.
type EngineMetrics struct {
	collector MetricsCollector

	// Engine
	ComparisonsTotal   CounterVec
	ComparisonDuration HistogramVec

	// Backend
	BackendRequestsTotal   CounterVec
	BackendRequestDuration HistogramVec
	BackendTokensTotal     CounterVec
	BackendFallbacksTotal  CounterVec

	// Cache
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	CacheSize        GaugeVec

	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets       = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultComparisonDurationBuckets = []float64{.001, .01, .1, .5, 1, 2.5, 5, 10, 20, 30, 60}
	DefaultLLMDurationBuckets        = []float64{.1, .25, .5, 1, 2, 5, 10, 15, 30, 60}
)

// NewEngineMetrics registers all metrics on collector.
func NewEngineMetrics(collector MetricsCollector) *EngineMetrics {
	m := &EngineMetrics{collector: collector}

	m.ComparisonsTotal = collector.RegisterCounter("comparisons_total", "Comparisons by how the logical score was obtained", "outcome")
	m.ComparisonDuration = collector.RegisterHistogram("comparison_duration_seconds", "End-to-end comparison latency", DefaultComparisonDurationBuckets)

	m.BackendRequestsTotal = collector.RegisterCounter("backend_requests_total", "Language model requests", "operation", "status")
	m.BackendRequestDuration = collector.RegisterHistogram("backend_request_duration_seconds", "Language model request latency", DefaultLLMDurationBuckets, "operation")
	m.BackendTokensTotal = collector.RegisterCounter("backend_tokens_total", "Tokens reported by the language model", "operation", "kind")
	m.BackendFallbacksTotal = collector.RegisterCounter("backend_fallbacks_total", "Logical scores computed without the language model", "reason")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Semantic cache hits")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Semantic cache misses")
	m.CacheSize = collector.RegisterGauge("cache_entries", "Entries held by the semantic cache")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route")

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *EngineMetrics) Handler() http.Handler {
	if m == nil || m.collector == nil {
		return http.NotFoundHandler()
	}
	return m.collector.Handler()
}

// Helpers

func (m *EngineMetrics) RecordComparison(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ComparisonsTotal.WithLabelValues(outcome).Inc()
	m.ComparisonDuration.WithLabelValues().Observe(duration.Seconds())
}

func (m *EngineMetrics) RecordBackendCall(operation string, success bool, duration time.Duration, promptTokens, evalTokens int) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.BackendRequestsTotal.WithLabelValues(operation, status).Inc()
	m.BackendRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if promptTokens > 0 {
		m.BackendTokensTotal.WithLabelValues(operation, "prompt").Add(float64(promptTokens))
	}
	if evalTokens > 0 {
		m.BackendTokensTotal.WithLabelValues(operation, "eval").Add(float64(evalTokens))
	}
}

func (m *EngineMetrics) RecordFallback(reason string) {
	if m == nil {
		return
	}
	m.BackendFallbacksTotal.WithLabelValues(reason).Inc()
}

func (m *EngineMetrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// CacheHit, CacheMiss and CacheEntries satisfy cache.Recorder.

func (m *EngineMetrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues().Inc()
}

func (m *EngineMetrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues().Inc()
}

func (m *EngineMetrics) CacheEntries(n int) {
	if m == nil {
		return
	}
	m.CacheSize.WithLabelValues().Set(float64(n))
}

//Personal.AI order the ending

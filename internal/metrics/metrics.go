// Package metrics exposes Prometheus collectors for the extraction service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/labextract-server/internal/domain"
)

const namespace = "labextract"

// Default buckets
var (
	DefaultDurationBuckets   = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}
	DefaultHTTPBuckets       = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultConfidenceBuckets = prometheus.LinearBuckets(10, 10, 10)
	DefaultSizeBuckets       = []float64{100, 1000, 10000, 50000, 100000, 200000, 1000000}
)

// Metrics holds all service metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ExtractionsTotal     *prometheus.CounterVec
	ExtractionDuration   *prometheus.HistogramVec
	DocumentConfidence   *prometheus.HistogramVec
	InputSize            prometheus.Histogram
	EntitiesTotal        *prometheus.CounterVec
	ReviewsTotal         *prometheus.CounterVec
	TruncationsTotal     prometheus.Counter
	CacheLookupsTotal    *prometheus.CounterVec
	TextExtractionsTotal *prometheus.CounterVec
	StoreOperationsTotal *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New registers every collector. Process and Go runtime collectors are included when
// runtime is true.
func New(runtime bool) *Metrics {
	registry := prometheus.NewRegistry()
	if runtime {
		registry.MustRegister(
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: namespace}),
			prometheus.NewGoCollector(),
		)
	}

	m := &Metrics{
		registry: registry,
		ExtractionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "extractions_total",
			Help: "Extractions by classified document type and submitting surface.",
		}, []string{"document_type", "source"}),
		ExtractionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "extraction_duration_seconds",
			Help:    "Engine time per document.",
			Buckets: DefaultDurationBuckets,
		}, []string{"document_type"}),
		DocumentConfidence: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "document_confidence",
			Help:    "Overall confidence per extracted document.",
			Buckets: DefaultConfidenceBuckets,
		}, []string{"document_type"}),
		InputSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "input_chars",
			Help:    "Characters submitted per document before truncation.",
			Buckets: DefaultSizeBuckets,
		}),
		EntitiesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "entities_total",
			Help: "Extracted entities by kind and vocabulary match.",
		}, []string{"kind", "matched"}),
		ReviewsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "needs_review_total",
			Help: "Documents flagged for manual review.",
		}, []string{"document_type"}),
		TruncationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "truncations_total",
			Help: "Documents truncated to the input budget.",
		}),
		CacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_lookups_total",
			Help: "Result cache lookups by outcome.",
		}, []string{"result"}),
		TextExtractionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "text_extractions_total",
			Help: "Document to text conversions by outcome.",
		}, []string{"outcome"}),
		StoreOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "store_operations_total",
			Help: "Persistence calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: DefaultHTTPBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.ExtractionsTotal, m.ExtractionDuration, m.DocumentConfidence, m.InputSize,
		m.EntitiesTotal, m.ReviewsTotal, m.TruncationsTotal, m.CacheLookupsTotal,
		m.TextExtractionsTotal, m.StoreOperationsTotal,
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveExtraction records one engine call.
func (m *Metrics) ObserveExtraction(source domain.RunSource, result *domain.ExtractionResult, elapsed time.Duration, inputChars int, needsReview, truncated bool) {
	dt := string(result.DocumentType)
	m.ExtractionsTotal.WithLabelValues(dt, string(source)).Inc()
	m.ExtractionDuration.WithLabelValues(dt).Observe(elapsed.Seconds())
	m.DocumentConfidence.WithLabelValues(dt).Observe(result.Confidence)
	m.InputSize.Observe(float64(inputChars))

	for i := range result.Biomarkers {
		m.EntitiesTotal.WithLabelValues("biomarker", strconv.FormatBool(result.Biomarkers[i].Matched)).Inc()
	}
	for i := range result.Variants {
		m.EntitiesTotal.WithLabelValues("variant", strconv.FormatBool(result.Variants[i].Matched)).Inc()
	}
	if needsReview {
		m.ReviewsTotal.WithLabelValues(dt).Inc()
	}
	if truncated {
		m.TruncationsTotal.Inc()
	}
}

// ObserveCache records a cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if hit {
		m.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookupsTotal.WithLabelValues("miss").Inc()
}

// ObserveTextExtraction records a document conversion outcome such as "ok" or "unsupported".
func (m *Metrics) ObserveTextExtraction(outcome string) {
	m.TextExtractionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStore records a persistence call.
func (m *Metrics) ObserveStore(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.StoreOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveHTTP records a served request. route is the matched route pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

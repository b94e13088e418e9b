package metrics

import "github.com/prometheus/client_golang/prometheus"

// Attribute extraction Prometheus metrics.
var (
	ExtractionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "extraction_requests_total",
			Help:      "Total number of attribute extraction requests to the completion API",
		},
		[]string{"model", "status"},
	)

	ExtractionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalog",
			Name:      "extraction_request_duration_seconds",
			Help:      "Attribute extraction request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model", "status"},
	)

	ExtractionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "extraction_tokens_total",
			Help:      "Total completion tokens consumed by attribute extraction",
		},
		[]string{"model", "type"},
	)

	ExtractionFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "extraction_fallbacks_total",
			Help:      "Searches that degraded to naive keyword splitting",
		},
	)

	ExtractionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "extraction_cache_total",
			Help:      "Extraction cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var extractionRegistered bool

// RegisterExtractionMetrics registers extraction metrics. Must be called once from main.
func RegisterExtractionMetrics() {
	if extractionRegistered {
		return
	}
	prometheus.MustRegister(ExtractionRequestsTotal)
	prometheus.MustRegister(ExtractionRequestDuration)
	prometheus.MustRegister(ExtractionTokensTotal)
	prometheus.MustRegister(ExtractionFallbacksTotal)
	prometheus.MustRegister(ExtractionCacheTotal)
	extractionRegistered = true
}

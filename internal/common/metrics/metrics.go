// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_search_requests_total",
			Help: "Chat search requests by outcome",
		},
		[]string{"outcome"},
	)

	IntentExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_extractions_total",
			Help: "Calls to the language service by result",
		},
		[]string{"result"},
	)

	IntentParseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_parse_total",
			Help: "Extractor outputs parsed, by outcome (ok or fallback)",
		},
		[]string{"outcome"},
	)

	IntentDegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_degraded_total",
			Help: "Chat searches served with the neutral intent, by error code",
		},
		[]string{"error_code"},
	)

	IntentCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_cache_lookups_total",
			Help: "Intent cache lookups by result",
		},
		[]string{"result"},
	)

	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_duration_seconds",
			Help:    "Duration of catalog store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	CatalogQueryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_query_errors_total",
			Help: "Failed catalog store queries",
		},
		[]string{"query", "error_code"},
	)

	ProductsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_search_products_returned",
			Help:    "Number of products returned per chat search",
			Buckets: []float64{0, 1, 2, 5, 10},
		},
	)
)

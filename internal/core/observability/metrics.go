package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		},
		[]string{"upstream"},
	)

	queryResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_queries_total",
			Help: "Catalogue queries by product type and outcome.",
		},
		[]string{"product_type", "outcome"},
	)

	productsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_products_returned",
			Help:    "Number of products returned per successful query.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"product_type"},
	)

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_exports_total",
			Help: "Listing exports by outcome.",
		},
		[]string{"outcome"},
	)
)

// Collectors returns every collector owned by this package, for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDurationSeconds,
		upstreamLatencySeconds,
		queryResults,
		productsReturned,
		exportsTotal,
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstreamLatency(upstream string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(durationSeconds)
}

// outcome is one of ok, empty, invalid_input, remote_error, network_error
func IncQuery(productType, outcome string) {
	queryResults.WithLabelValues(productType, outcome).Inc()
}

func ObserveProducts(productType string, n int) {
	productsReturned.WithLabelValues(productType).Observe(float64(n))
}

func IncExport(outcome string) {
	exportsTotal.WithLabelValues(outcome).Inc()
}

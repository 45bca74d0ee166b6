// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Fetch metrics
	OrdersFetched  prometheus.Counter
	OrdersDecoded  prometheus.Counter
	DecodeFailures prometheus.Counter
	FetchErrors    prometheus.Counter

	// Cache metrics
	SnapshotHits   prometheus.Counter
	SnapshotMisses prometheus.Counter

	// Resolution metrics
	DecimalLookups   prometheus.Counter
	DecimalFallbacks prometheus.Counter

	// Latency metrics
	ForecastDuration prometheus.Histogram
	RPCCallLatency   *prometheus.HistogramVec

	// Request metrics
	ForecastRequests *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fee_forecast"
	}

	return &Metrics{
		OrdersFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_fetched_total",
			Help:      "Raw order accounts returned by program scans.",
		}),
		OrdersDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_decoded_total",
			Help:      "Order accounts successfully decoded.",
		}),
		DecodeFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_decode_failures_total",
			Help:      "Order accounts skipped due to layout violations.",
		}),
		FetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Whole-request order fetch failures.",
		}),
		SnapshotHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_hits_total",
			Help:      "Forecast requests served from a fresh snapshot.",
		}),
		SnapshotMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_misses_total",
			Help:      "Forecast requests that required a fresh fetch.",
		}),
		DecimalLookups: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decimal_lookups_total",
			Help:      "Distinct mint decimal resolutions performed.",
		}),
		DecimalFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decimal_fallbacks_total",
			Help:      "Mint decimal resolutions that fell back to the default.",
		}),
		ForecastDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "End-to-end forecast computation time.",
			Buckets:   prometheus.DefBuckets,
		}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_call_duration_seconds",
			Help:      "Solana RPC call latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		ForecastRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_requests_total",
			Help:      "Forecast requests by outcome.",
		}, []string{"status"}),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

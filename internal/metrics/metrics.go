// Package metrics provides Prometheus metrics for the CardVault backend.
// Scrape these at /metrics for dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardvault_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardvault_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Catalog Metrics
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardvault_catalog_requests_total",
			Help: "Outbound card catalog API requests by result",
		},
		[]string{"result"}, // "success" or "error"
	)

	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardvault_catalog_cache_hits_total",
			Help: "Catalog lookups served from the in-memory cache",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardvault_catalog_cache_misses_total",
			Help: "Catalog lookups that missed the in-memory cache",
		},
	)

	CatalogRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardvault_catalog_request_duration_seconds",
			Help:    "Card catalog API call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	// Collection Metrics
	HoldingMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardvault_holding_mutations_total",
			Help: "Holdings ledger mutations by operation",
		},
		[]string{"operation"}, // "add", "merge", "update", "remove", "set_quantity"
	)

	SnapshotsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardvault_snapshots_recorded_total",
			Help: "Collection value snapshots recorded",
		},
	)

	// Achievement Metrics
	AchievementsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardvault_achievements_awarded_total",
			Help: "Achievements granted by achievement name",
		},
		[]string{"achievement"},
	)
)

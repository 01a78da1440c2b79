package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_loads_total",
		Help: "Total number of catalog load attempts",
	}, []string{"result"})

	CatalogLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_load_duration_seconds",
		Help:    "Duration of catalog load operations",
		Buckets: prometheus.DefBuckets,
	})

	SnapshotProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_snapshot_products",
		Help: "Number of products in the current snapshot",
	})

	SnapshotActiveDiscounts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_snapshot_active_discounts",
		Help: "Number of products with an active discount in the current snapshot",
	})

	DiscountsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_discounts_skipped_total",
		Help: "Total number of discount records skipped at load time",
	}, []string{"reason"})

	CacheFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_fallbacks_total",
		Help: "Total number of loads served from the Redis source cache",
	})

	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_queries_total",
		Help: "Total number of catalog queries",
	}, []string{"sort"})

	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_query_duration_seconds",
		Help:    "Duration of catalog query evaluation",
		Buckets: prometheus.DefBuckets,
	})

	RefreshRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_refresh_requests_total",
		Help: "Total number of manual refresh requests",
	}, []string{"origin"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

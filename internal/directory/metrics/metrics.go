package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemoteCallsTotal tracks executor calls per operation and outcome
	RemoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localguide_remote_calls_total",
			Help: "Total number of remote backend calls",
		},
		[]string{"operation", "outcome"},
	)

	// RemoteRetriesTotal tracks retry attempts per operation
	RemoteRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localguide_remote_retries_total",
			Help: "Total number of retried remote attempts",
		},
		[]string{"operation"},
	)

	// RemoteErrorsTotal tracks normalized errors by code
	RemoteErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localguide_remote_errors_total",
			Help: "Total number of remote errors by code",
		},
		[]string{"operation", "code"},
	)

	// RemoteLatency tracks end-to-end executor latency including retries
	RemoteLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "localguide_remote_latency_seconds",
			Help:    "Remote call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// CacheLookups tracks cache hits and misses
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localguide_cache_lookups_total",
			Help: "Cache lookups by tier and result",
		},
		[]string{"tier", "result"},
	)

	// CacheEntries tracks the live entry count of the local cache
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "localguide_cache_entries",
			Help: "Number of entries held by the local TTL cache",
		},
	)

	// ResolverStrategyTotal tracks which fallback step served a category lookup
	ResolverStrategyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localguide_resolver_strategy_total",
			Help: "Category resolver strategy attempts by outcome",
		},
		[]string{"strategy", "outcome"},
	)

	// SearchResults tracks result sizes per entity type
	SearchResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "localguide_search_results",
			Help:    "Number of records returned per entity type",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"entity"},
	)

	// DBConnectionPoolUsage tracks SQL pool usage percentage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "localguide_db_connection_pool_usage_percent",
			Help: "Open SQL connections as a percentage of the pool limit",
		},
	)
)

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by cache name
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbx_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"}, // "friends", "groups", "badges"
	)

	// CacheMisses tracks cache misses by cache name (absent or expired)
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbx_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// CacheExpired tracks stale entries purged on lookup
	CacheExpired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbx_cache_expired_total",
			Help: "Total number of expired cache entries purged on lookup",
		},
		[]string{"cache"},
	)

	// CacheEntries tracks the number of stored entries
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rbx_cache_entries",
			Help: "Current number of entries per cache",
		},
		[]string{"cache"},
	)
)

// Package metrics exposes Prometheus counters for the memoizing cache so
// the hit/miss behavior of prediction memoization stays independently
// measurable.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts predictions served from the memo cache.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "origami_cache_hits_total",
		Help: "Predictions served from the memo cache without recomputation.",
	})

	// CacheMisses counts predictions that had to be computed.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "origami_cache_misses_total",
		Help: "Predictions recomputed because no cache entry matched.",
	})

	// CacheStores counts results written to the cache.
	CacheStores = promauto.NewCounter(prometheus.CounterOpts{
		Name: "origami_cache_stores_total",
		Help: "Prediction results written to the memo cache.",
	})

	// CacheClears counts explicit cache invalidations.
	CacheClears = promauto.NewCounter(prometheus.CounterOpts{
		Name: "origami_cache_clears_total",
		Help: "Explicit memo cache clears, soft or hard.",
	})
)

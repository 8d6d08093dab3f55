package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anivault_cache_hits_total",
		Help: "Cache store hits by category",
	}, []string{"category"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anivault_cache_misses_total",
		Help: "Cache store misses by category",
	}, []string{"category"})

	cacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "anivault_cache_entries",
		Help: "Current number of entries in the cache store",
	})

	cachePolicyRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anivault_cache_policy_rejections_total",
		Help: "Cache writes rejected by the credential-leak heuristic",
	}, []string{"category"})
)

// RecordCacheHit increments the hit counter for a category.
func RecordCacheHit(category string) { cacheHits.WithLabelValues(category).Inc() }

// RecordCacheMiss increments the miss counter for a category.
func RecordCacheMiss(category string) { cacheMisses.WithLabelValues(category).Inc() }

// SetCacheEntries records the current cache entry count.
func SetCacheEntries(n float64) { cacheEntries.Set(n) }

// RecordCachePolicyRejection increments the rejection counter for a category.
func RecordCachePolicyRejection(category string) { cachePolicyRejections.WithLabelValues(category).Inc() }

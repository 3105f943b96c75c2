package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend (memory, redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks cache misses, stale entries included
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"backend"},
	)

	// CacheWrites tracks installed entries
	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_cache_writes_total",
			Help: "Total number of response cache writes",
		},
		[]string{"backend"},
	)

	// CacheEntries tracks entries held by the in-process backend
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_cache_entries",
			Help: "Current number of entries held in the response cache",
		},
		[]string{"backend"}, // "memory"
	)

	// CacheErrors tracks backend operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_cache_errors_total",
			Help: "Total number of cache backend errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)

	// CoalescedLoads tracks callers served by another caller's in-flight load
	CoalescedLoads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_cache_coalesced_total",
			Help: "Total number of cache loads shared with an in-flight load",
		},
	)
)

// Package cache provides the TTL-keyed response cache that shields the
// upstream sports-data provider from request volume.
//
// The cache has the following properties:
//
// - One entry per key, replaced (never mutated) by a later Set
// - Staleness is the only invalidation: an entry is logically gone once
//   now >= expires, and stale entries are ignored or overwritten lazily
// - Pluggable backends: an in-process map (default) or Redis for sharing
//   between replicas
// - Read-through loading with request coalescing, so concurrent misses on
//   one key trigger a single upstream fetch
// - Prometheus metrics for observability
// - Deterministic cache key generation
//
// # Basic Usage
//
//	store := cache.NewMemoryStore()
//	manager := cache.NewManager(store, logger)
//
//	key := cache.Key{Kind: "date", Params: map[string]string{"date": "2025-08-27"}}
//
//	body, hit, err := manager.GetOrLoad(ctx, key, time.Minute, func(ctx context.Context) ([]byte, error) {
//		// Cache miss - fetch from the provider and encode the response
//	})
//
// Loader errors are returned to every waiting caller and are never stored,
// so the next request for the key retries the upstream fetch.
//
// # Redis Backend
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := cache.NewRedisStore(redisClient, logger)
//
// Entries are written with SET PX so Redis reclaims them once the TTL
// elapses; nothing outlives its TTL.
//
// # Metrics
//
//   - gateway_cache_hits_total{backend} - Cache hits
//   - gateway_cache_misses_total{backend} - Cache misses (absent or stale)
//   - gateway_cache_writes_total{backend} - Entries installed
//   - gateway_cache_entries{backend="memory"} - Entries held in memory
//   - gateway_cache_errors_total{operation} - Backend operation errors
//   - gateway_cache_coalesced_total - Callers that shared another caller's load
package cache

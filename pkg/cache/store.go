package cache

import (
	"context"
	"time"
)

// Backend labels used in metrics.
const (
	backendMemory = "memory"
	backendRedis  = "redis"
)

// Store is a TTL-keyed byte cache.
//
// Both operations are total: a backend failure is reported through metrics
// and logs, and behaves as a miss (Get) or a dropped write (Set). Returned
// slices are shared with the store and must not be modified.
type Store interface {
	// Get returns the value for key if present and not yet expired.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set installs or replaces the value for key with expiry now+ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

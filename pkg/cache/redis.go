package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrInvalidEntry indicates a stored entry could not be decoded.
var ErrInvalidEntry = errors.New("invalid cache entry")

// RedisStore is a Store backed by Redis, for sharing cached responses
// between gateway replicas. Values are written with SET PX, so Redis itself
// drops them when the TTL elapses.
type RedisStore struct {
	redis  *redis.Client
	prefix string
	now    func() time.Time
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client, logger zerolog.Logger) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: "gateway:",
		now:    time.Now,
		logger: logger.With().Str("component", "cache").Str("backend", backendRedis).Logger(),
	}
}

// Get retrieves the value for key. Redis errors and undecodable entries are
// logged and reported as a miss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.redis.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			CacheErrors.WithLabelValues("get").Inc()
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache get error")
		}
		CacheMisses.WithLabelValues(backendRedis).Inc()
		return nil, false
	}

	var entry Entry
	if err := sonic.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		s.logger.Warn().Err(errors.Join(ErrInvalidEntry, err)).Str("key", key).Msg("Cache entry decode error")
		CacheMisses.WithLabelValues(backendRedis).Inc()
		return nil, false
	}

	// Redis expiry has millisecond resolution; the stored deadline is authoritative.
	if entry.IsExpired(s.now()) {
		CacheMisses.WithLabelValues(backendRedis).Inc()
		return nil, false
	}

	CacheHits.WithLabelValues(backendRedis).Inc()
	return entry.Data, true
}

// Set stores value for key with expiry now+ttl. A non-positive ttl removes
// any previous value, which is equivalent to installing a stale entry.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		if err := s.redis.Del(ctx, s.prefix+key).Err(); err != nil {
			CacheErrors.WithLabelValues("delete").Inc()
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache delete error")
		}
		return
	}

	entry := newEntry(value, ttl, s.now())
	data, err := sonic.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache entry encode error")
		return
	}

	if err := s.redis.Set(ctx, s.prefix+key, data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache set error")
		return
	}

	CacheWrites.WithLabelValues(backendRedis).Inc()
}

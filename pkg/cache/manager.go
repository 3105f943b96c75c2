package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the encoded value for a key on a cache miss.
type LoadFunc func(ctx context.Context) ([]byte, error)

// Manager performs read-through caching over a Store.
type Manager struct {
	store  Store
	group  singleflight.Group
	logger zerolog.Logger
}

// NewManager creates a read-through manager over store.
func NewManager(store Store, logger zerolog.Logger) *Manager {
	if store == nil {
		panic("cache store cannot be nil")
	}
	return &Manager{
		store:  store,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// GetOrLoad returns the cached value for key. On a miss it runs load, stores
// the result for ttl and returns it; hit reports whether the value came from
// the store. Concurrent misses for the same key share one load. A load error
// is returned to every waiting caller and nothing is stored.
func (m *Manager) GetOrLoad(ctx context.Context, key Key, ttl time.Duration, load LoadFunc) ([]byte, bool, error) {
	if load == nil {
		return nil, false, fmt.Errorf("load function cannot be nil")
	}

	cacheKey := key.String()
	if value, ok := m.store.Get(ctx, cacheKey); ok {
		m.logger.Debug().Str("key", cacheKey).Bool("cache_hit", true).Msg("Cache hit")
		return value, true, nil
	}

	for {
		res, shared, err := m.loadShared(ctx, cacheKey, ttl, load)
		if shared {
			CoalescedLoads.Inc()
		}
		// The leader's request was cancelled while ours is still live: load again.
		if err != nil && shared && isContextError(err) && ctx.Err() == nil {
			continue
		}
		return res.value, res.hit, err
	}
}

type loadResult struct {
	value []byte
	hit   bool
}

func (m *Manager) loadShared(ctx context.Context, cacheKey string, ttl time.Duration, load LoadFunc) (loadResult, bool, error) {
	ch := m.group.DoChan(cacheKey, func() (any, error) {
		// Another flight may have filled the key between our Get and now.
		if value, ok := m.store.Get(ctx, cacheKey); ok {
			return loadResult{value: value, hit: true}, nil
		}

		m.logger.Debug().Str("key", cacheKey).Bool("cache_hit", false).Msg("Cache miss")

		value, err := load(ctx)
		if err != nil {
			return nil, err
		}

		m.store.Set(ctx, cacheKey, value, ttl)
		m.logger.Debug().Str("key", cacheKey).Dur("ttl", ttl).Msg("Cached response")
		return loadResult{value: value}, nil
	})

	select {
	case <-ctx.Done():
		return loadResult{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return loadResult{}, res.Shared, res.Err
		}
		return res.Val.(loadResult), res.Shared, nil
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

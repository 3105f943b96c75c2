package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store backed by a map guarded by a RWMutex.
// Entries are replaced whole under the write lock, so readers observe either
// the previous or the next entry for a key, never a partial one.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source used for expiry decisions.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored value for key unless it is absent or stale.
// A stale entry is reclaimed opportunistically.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	now := s.now()

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		CacheMisses.WithLabelValues(backendMemory).Inc()
		return nil, false
	}

	if entry.IsExpired(now) {
		s.mu.Lock()
		// Only reclaim if no Set replaced the entry in the meantime.
		if current, ok := s.entries[key]; ok && current == entry {
			delete(s.entries, key)
		}
		CacheEntries.WithLabelValues(backendMemory).Set(float64(len(s.entries)))
		s.mu.Unlock()

		CacheMisses.WithLabelValues(backendMemory).Inc()
		return nil, false
	}

	CacheHits.WithLabelValues(backendMemory).Inc()
	return entry.Data, true
}

// Set unconditionally installs value for key with expiry now+ttl.
// A non-positive ttl installs an entry that is already stale.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	entry := newEntry(value, ttl, s.now())

	s.mu.Lock()
	s.entries[key] = entry
	CacheEntries.WithLabelValues(backendMemory).Set(float64(len(s.entries)))
	s.mu.Unlock()

	CacheWrites.WithLabelValues(backendMemory).Inc()
}

// Len returns the number of entries held, stale ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

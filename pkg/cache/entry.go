package cache

import (
	"time"
)

// Entry is a cached response body together with its expiry.
type Entry struct {
	// Data is the encoded response body
	Data []byte `json:"data"`

	// Expires is when the entry becomes stale
	Expires time.Time `json:"expires"`
}

// newEntry builds an entry installed at now that lives for ttl.
func newEntry(value []byte, ttl time.Duration, now time.Time) *Entry {
	data := make([]byte, len(value))
	copy(data, value)
	return &Entry{
		Data:    data,
		Expires: now.Add(ttl),
	}
}

// IsExpired reports whether the entry is stale at now (now >= Expires).
func (e *Entry) IsExpired(now time.Time) bool {
	return !now.Before(e.Expires)
}

// TTL returns the time left until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL(now time.Time) time.Duration {
	ttl := e.Expires.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}

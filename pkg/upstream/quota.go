package upstream

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// QuotaThresholdWarning logs a warning when the remaining quota for an entity
// falls below this value.
const QuotaThresholdWarning = 50

// RateLimit is the quota block SportMonks attaches to every response body.
type RateLimit struct {
	ResetsInSeconds int    `json:"resets_in_seconds"`
	Remaining       int    `json:"remaining"`
	RequestedEntity string `json:"requested_entity"`
}

// QuotaState is the last observed quota for one entity.
type QuotaState struct {
	// Entity is the provider entity the quota applies to (e.g., "Fixture").
	Entity string `json:"entity"`

	// Remaining is the number of calls left in the current window.
	Remaining int `json:"remaining"`

	// ResetAt is when the current window ends.
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was observed.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when Remaining >= QuotaThresholdWarning.
	IsHealthy bool `json:"is_healthy"`
}

// TimeUntilReset returns the duration until the quota resets.
// Returns 0 if the reset time has already passed.
func (s QuotaState) TimeUntilReset(now time.Time) time.Duration {
	d := s.ResetAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// QuotaTracker records provider quota observations. It never gates requests.
type QuotaTracker struct {
	mu     sync.RWMutex
	states map[string]QuotaState
	now    func() time.Time
	logger zerolog.Logger
}

// NewQuotaTracker creates an empty tracker.
func NewQuotaTracker(logger zerolog.Logger) *QuotaTracker {
	return &QuotaTracker{
		states: make(map[string]QuotaState),
		now:    time.Now,
		logger: logger,
	}
}

// Observe records a quota block. A nil block is ignored.
func (q *QuotaTracker) Observe(rl *RateLimit) {
	if rl == nil {
		return
	}

	entity := rl.RequestedEntity
	if entity == "" {
		entity = "unknown"
	}

	now := q.now()
	state := QuotaState{
		Entity:     entity,
		Remaining:  rl.Remaining,
		ResetAt:    now.Add(time.Duration(rl.ResetsInSeconds) * time.Second),
		LastUpdate: now,
		IsHealthy:  rl.Remaining >= QuotaThresholdWarning,
	}

	q.mu.Lock()
	q.states[entity] = state
	q.mu.Unlock()

	quotaRemaining.WithLabelValues(entity).Set(float64(rl.Remaining))

	if !state.IsHealthy {
		quotaLowTotal.WithLabelValues(entity).Inc()
		q.logger.Warn().
			Str("entity", entity).
			Int("remaining", rl.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("SportMonks quota running low")
		return
	}

	q.logger.Debug().
		Str("entity", entity).
		Int("remaining", rl.Remaining).
		Msg("SportMonks quota updated")
}

// State returns the last observation for entity.
func (q *QuotaTracker) State(entity string) (QuotaState, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	s, ok := q.states[entity]
	return s, ok
}

package schedule

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/football-fixtures-gateway/pkg/cache"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/fixture"
)

// Upcoming range bounds.
const (
	DefaultUpcomingDays = 7
	MinUpcomingDays     = 1
	MaxUpcomingDays     = 14
)

// DefaultDayTTL is how long an assembled day stays cached.
const DefaultDayTTL = 60 * time.Second

// Source fetches raw fixtures from the provider.
type Source interface {
	FixturesByDate(ctx context.Context, day time.Time) ([]fixture.RawFixture, error)
	Inplay(ctx context.Context) ([]fixture.RawFixture, error)
}

// ClampDays bounds a requested upcoming range to [MinUpcomingDays, MaxUpcomingDays].
func ClampDays(requested int) int {
	return min(max(requested, MinUpcomingDays), MaxUpcomingDays)
}

// DayKey is the cache key of one assembled day.
func DayKey(day time.Time) cache.Key {
	return cache.Key{
		Kind:   "date",
		Params: map[string]string{"date": day.UTC().Format(time.DateOnly)},
	}
}

// Config holds aggregator settings.
type Config struct {
	// DayTTL is the lifetime of a cached day; DefaultDayTTL when zero.
	DayTTL time.Duration

	// MaxConcurrency caps parallel day fetches; 1 or less is sequential.
	MaxConcurrency int

	// Now returns the current time; time.Now when nil.
	Now func() time.Time
}

// Aggregator builds schedules from a Source.
type Aggregator struct {
	source     Source
	normalizer *fixture.Normalizer
	cache      *cache.Manager
	cfg        Config
	logger     zerolog.Logger
}

// New creates an aggregator. A nil manager disables per-day caching.
func New(source Source, normalizer *fixture.Normalizer, manager *cache.Manager, cfg Config, logger zerolog.Logger) *Aggregator {
	if source == nil {
		panic("schedule source cannot be nil")
	}
	if normalizer == nil {
		normalizer = fixture.NewNormalizer(nil)
	}
	if cfg.DayTTL <= 0 {
		cfg.DayTTL = DefaultDayTTL
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Aggregator{
		source:     source,
		normalizer: normalizer,
		cache:      manager,
		cfg:        cfg,
		logger:     logger.With().Str("component", "schedule").Logger(),
	}
}

// Today returns midnight of the current UTC calendar day.
func (a *Aggregator) Today() time.Time {
	return a.cfg.Now().UTC().Truncate(24 * time.Hour)
}

// Day fetches and assembles one day without consulting the cache.
func (a *Aggregator) Day(ctx context.Context, day time.Time) (DailySchedule, error) {
	date := day.UTC().Format(time.DateOnly)

	raws, err := a.source.FixturesByDate(ctx, day)
	if err != nil {
		return DailySchedule{}, err
	}

	fixtures := a.normalizer.NormalizeAll(raws)
	fixture.SortByKickoff(fixtures)

	a.logger.Debug().Str("date", date).Int("fixtures", len(fixtures)).Msg("Assembled day")
	return DailySchedule{DateUTC: date, Fixtures: fixtures}, nil
}

// DayJSON returns the encoded schedule of one day through the shared day
// cache. hit reports whether it was served from the cache.
func (a *Aggregator) DayJSON(ctx context.Context, day time.Time) ([]byte, bool, error) {
	load := func(ctx context.Context) ([]byte, error) {
		s, err := a.Day(ctx, day)
		if err != nil {
			return nil, err
		}
		return sonic.Marshal(s)
	}

	if a.cache == nil {
		body, err := load(ctx)
		return body, false, err
	}
	return a.cache.GetOrLoad(ctx, DayKey(day), a.cfg.DayTTL, load)
}

// CachedDay is Day through the shared day cache.
func (a *Aggregator) CachedDay(ctx context.Context, day time.Time) (DailySchedule, error) {
	body, _, err := a.DayJSON(ctx, day)
	if err != nil {
		return DailySchedule{}, err
	}

	var s DailySchedule
	if err := sonic.Unmarshal(body, &s); err != nil {
		a.logger.Warn().Err(err).Str("key", DayKey(day).String()).Msg("Cached day is unreadable, refetching")
		return a.Day(ctx, day)
	}
	if s.Fixtures == nil {
		s.Fixtures = []fixture.Fixture{}
	}
	return s, nil
}

// Upcoming assembles requested consecutive days starting today. The count is
// clamped with ClampDays. Any failed day fails the whole range.
func (a *Aggregator) Upcoming(ctx context.Context, requested int) (UpcomingSchedule, error) {
	days := ClampDays(requested)
	start := a.Today()
	results := make([]DailySchedule, days)

	fetch := func(ctx context.Context, i int) error {
		s, err := a.CachedDay(ctx, start.AddDate(0, 0, i))
		if err != nil {
			return err
		}
		results[i] = s
		return nil
	}

	if a.cfg.MaxConcurrency <= 1 || days == 1 {
		for i := 0; i < days; i++ {
			if err := fetch(ctx, i); err != nil {
				a.logger.Warn().Err(err).Int("days", days).Int("failed_day", i).Msg("Upcoming aggregation aborted")
				return UpcomingSchedule{}, err
			}
		}
	} else {
		if err := fanOut(ctx, days, min(a.cfg.MaxConcurrency, days), fetch); err != nil {
			a.logger.Warn().Err(err).Int("days", days).Msg("Upcoming aggregation aborted")
			return UpcomingSchedule{}, err
		}
	}

	schedule := make([]DailySchedule, 0, days)
	for _, s := range results {
		if len(s.Fixtures) == 0 {
			continue
		}
		schedule = append(schedule, s)
	}

	return UpcomingSchedule{Days: days, Schedule: schedule}, nil
}

// Live returns the fixtures currently in play, sorted by kickoff.
func (a *Aggregator) Live(ctx context.Context) (LiveFixtures, error) {
	raws, err := a.source.Inplay(ctx)
	if err != nil {
		return LiveFixtures{}, err
	}

	fixtures := a.normalizer.NormalizeAll(raws)
	fixture.SortByKickoff(fixtures)
	return LiveFixtures{Count: len(fixtures), Fixtures: fixtures}, nil
}

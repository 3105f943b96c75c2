// Package api exposes the fixtures gateway over HTTP.
//
// Every fixtures endpoint is served read-through from the response cache:
// the first request for a key loads from the provider, later requests within
// the endpoint's TTL are answered from the cache. Failed loads are never
// cached.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/football-fixtures-gateway/pkg/cache"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/metrics"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/schedule"
)

// Route patterns.
const (
	routeHealth   = "GET /health"
	routeToday    = "GET /api/fixtures/today"
	routeTomorrow = "GET /api/fixtures/tomorrow"
	routeDate     = "GET /api/fixtures/date/{date}"
	routeUpcoming = "GET /api/fixtures/upcoming"
	routeLive     = "GET /api/live"
	routeMatch    = "GET /api/matches/{id}"
	routeMetrics  = "GET /metrics"
)

// Schedules builds fixture schedules.
type Schedules interface {
	Today() time.Time
	Day(ctx context.Context, day time.Time) (schedule.DailySchedule, error)
	DayJSON(ctx context.Context, day time.Time) ([]byte, bool, error)
	Upcoming(ctx context.Context, requested int) (schedule.UpcomingSchedule, error)
	Live(ctx context.Context) (schedule.LiveFixtures, error)
}

// MatchSource returns a provider fixture payload by id.
type MatchSource interface {
	FixtureByID(ctx context.Context, id int64) ([]byte, error)
}

// Config wires the server's collaborators.
type Config struct {
	Schedules Schedules
	Matches   MatchSource
	Cache     *cache.Manager
	Logger    zerolog.Logger
}

// Server serves the gateway endpoints.
type Server struct {
	schedules Schedules
	matches   MatchSource
	cache     *cache.Manager
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewServer creates a server. All collaborators are required.
func NewServer(cfg Config) *Server {
	if cfg.Schedules == nil || cfg.Matches == nil || cfg.Cache == nil {
		panic("api server requires schedules, matches and cache")
	}
	return &Server{
		schedules: cfg.Schedules,
		matches:   cfg.Matches,
		cache:     cfg.Cache,
		validate:  validator.New(),
		logger:    cfg.Logger.With().Str("component", "api").Logger(),
	}
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(routeHealth, s.handleHealth)
	mux.HandleFunc(routeToday, s.handleToday)
	mux.HandleFunc(routeTomorrow, s.handleTomorrow)
	mux.HandleFunc(routeDate, s.handleDate)
	mux.HandleFunc(routeUpcoming, s.handleUpcoming)
	mux.HandleFunc(routeLive, s.handleLive)
	mux.HandleFunc(routeMatch, s.handleMatch)
	mux.Handle(routeMetrics, metrics.Handler())
	return s.instrument(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []byte(`{"ok":true}`))
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, keyToday, TTLToday, s.dayLoader(s.schedules.Today()))
}

func (s *Server) handleTomorrow(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, keyTomorrow, TTLTomorrow, s.dayLoader(s.schedules.Today().AddDate(0, 0, 1)))
}

func (s *Server) handleDate(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("date")
	if err := s.validate.Var(raw, "required,datetime=2006-01-02"); err != nil {
		writeError(w, http.StatusBadRequest, "date must be a calendar date in YYYY-MM-DD format")
		return
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be a calendar date in YYYY-MM-DD format")
		return
	}

	body, hit, err := s.schedules.DayJSON(r.Context(), day)
	s.respond(w, r, body, hit, err)
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	days := parseDays(r.URL.Query().Get("days"))
	s.serveCached(w, r, upcomingKey(days), TTLUpcoming, func(ctx context.Context) ([]byte, error) {
		up, err := s.schedules.Upcoming(ctx, days)
		if err != nil {
			return nil, err
		}
		return sonic.Marshal(up)
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, keyLive, TTLLive, func(ctx context.Context) ([]byte, error) {
		live, err := s.schedules.Live(ctx)
		if err != nil {
			return nil, err
		}
		return sonic.Marshal(live)
	})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	if err := s.validate.Var(raw, "required,number"); err != nil {
		writeError(w, http.StatusBadRequest, "match id must be numeric")
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "match id must be numeric")
		return
	}

	// The provider payload is passed through unmodified.
	s.serveCached(w, r, matchKey(id), TTLMatch, func(ctx context.Context) ([]byte, error) {
		return s.matches.FixtureByID(ctx, id)
	})
}

func (s *Server) dayLoader(day time.Time) cache.LoadFunc {
	return func(ctx context.Context) ([]byte, error) {
		d, err := s.schedules.Day(ctx, day)
		if err != nil {
			return nil, err
		}
		return sonic.Marshal(d)
	}
}

func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, key cache.Key, ttl time.Duration, load cache.LoadFunc) {
	body, hit, err := s.cache.GetOrLoad(r.Context(), key, ttl, load)
	s.respond(w, r, body, hit, err)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, body []byte, hit bool, err error) {
	if err != nil {
		status, msg := statusForError(err)
		s.logger.Warn().
			Err(err).
			Str("path", r.URL.Path).
			Int("status_code", status).
			Msg("Request failed")
		writeError(w, status, msg)
		return
	}

	result := cacheMiss
	if hit {
		result = cacheHit
	}
	httpCacheResults.WithLabelValues(r.Pattern, result).Inc()
	w.Header().Set(headerCache, result)
	writeJSON(w, http.StatusOK, body)
}

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/football-fixtures-gateway/internal/testutil"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/cache"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/fixture"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/schedule"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/upstream"
)

var testNow = time.Date(2025, 8, 27, 9, 30, 0, 0, time.UTC)

type harness struct {
	mock    *testutil.MockSportMonks
	clock   *testutil.Clock
	handler http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	mock := testutil.NewMockSportMonks()
	t.Cleanup(mock.Close)
	clock := testutil.NewClock(testNow)
	logger := zerolog.Nop()

	cfg := upstream.DefaultConfig("secret-token")
	cfg.BaseURL = mock.URL()
	cfg.Logger = &logger
	cfg.Retry = upstream.RetryConfig{
		MaxAttempts:       1,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        time.Millisecond,
		BackoffMultiplier: 2.0,
	}
	client, err := upstream.New(cfg)
	if err != nil {
		t.Fatalf("upstream.New() error = %v", err)
	}

	normalizer, err := fixture.LoadNormalizer(fixture.DefaultDisplayTimezone)
	if err != nil {
		t.Fatalf("LoadNormalizer() error = %v", err)
	}

	manager := cache.NewManager(cache.NewMemoryStore(cache.WithClock(clock.Now)), logger)
	agg := schedule.New(client, normalizer, manager, schedule.Config{DayTTL: TTLDate, MaxConcurrency: 4, Now: clock.Now}, logger)

	srv := NewServer(Config{
		Schedules: agg,
		Matches:   client,
		Cache:     manager,
		Logger:    logger,
	})
	return &harness{mock: mock, clock: clock, handler: srv.Handler()}
}

func (h *harness) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := sonic.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func expectCache(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if got := rec.Header().Get(headerCache); got != want {
		t.Errorf("%s = %q, want %q", headerCache, got, want)
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	rec := h.get(t, "/health")
	expectStatus(t, rec, http.StatusOK)
	if got := rec.Body.String(); got != `{"ok":true}` {
		t.Errorf("body = %s", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if h.mock.RequestCount() != 0 {
		t.Errorf("health reached the provider")
	}
}

func TestDate_CachedForSixtySeconds(t *testing.T) {
	h := newHarness(t)
	h.mock.SetFixturesByDate("2025-08-27", testutil.NewHealthyResponse(testutil.ListBody(
		testutil.FixtureJSON(2, "2025-08-27 19:00:00", "Arsenal", "Chelsea", 2, 1),
		testutil.FixtureJSON(1, "2025-08-27 11:30:00", "Everton", "Fulham", 0, 0),
	)))
	path := testutil.DatePath("2025-08-27")

	rec := h.get(t, "/api/fixtures/date/2025-08-27")
	expectStatus(t, rec, http.StatusOK)
	expectCache(t, rec, cacheMiss)

	day := decode[schedule.DailySchedule](t, rec)
	if day.DateUTC != "2025-08-27" {
		t.Errorf("date_utc = %q", day.DateUTC)
	}
	if len(day.Fixtures) != 2 {
		t.Fatalf("fixtures = %d, want 2", len(day.Fixtures))
	}
	if *day.Fixtures[0].ID != 1 || *day.Fixtures[1].ID != 2 {
		t.Errorf("fixtures not sorted by kickoff: %d, %d", *day.Fixtures[0].ID, *day.Fixtures[1].ID)
	}
	if day.Fixtures[1].ScoreHome != 2 || day.Fixtures[1].ScoreAway != 1 {
		t.Errorf("score = %d-%d, want 2-1", day.Fixtures[1].ScoreHome, day.Fixtures[1].ScoreAway)
	}

	h.clock.Advance(59 * time.Second)
	rec = h.get(t, "/api/fixtures/date/2025-08-27")
	expectStatus(t, rec, http.StatusOK)
	expectCache(t, rec, cacheHit)
	if n := h.mock.PathCount(path); n != 1 {
		t.Fatalf("provider fetches within TTL = %d, want 1", n)
	}

	h.clock.Advance(2 * time.Second)
	rec = h.get(t, "/api/fixtures/date/2025-08-27")
	expectStatus(t, rec, http.StatusOK)
	expectCache(t, rec, cacheMiss)
	if n := h.mock.PathCount(path); n != 2 {
		t.Fatalf("provider fetches after TTL = %d, want 2", n)
	}
}

func TestDate_InvalidFormat(t *testing.T) {
	h := newHarness(t)

	for _, date := range []string{"2025-13-01", "27-08-2025", "2025-02-30", "20250827", "tomorrow"} {
		t.Run(date, func(t *testing.T) {
			rec := h.get(t, "/api/fixtures/date/"+date)
			expectStatus(t, rec, http.StatusBadRequest)
			body := decode[errorBody](t, rec)
			if body.Error == "" {
				t.Error("missing error message")
			}
		})
	}
	if n := h.mock.RequestCount(); n != 0 {
		t.Errorf("invalid dates reached the provider %d times", n)
	}
}

func TestTodayAndTomorrow(t *testing.T) {
	h := newHarness(t)
	h.mock.SetFixturesByDate("2025-08-27", testutil.NewHealthyResponse(testutil.ListBody(
		testutil.FixtureJSON(1, "2025-08-27 19:00:00", "Arsenal", "Chelsea", 0, 0),
	)))

	rec := h.get(t, "/api/fixtures/today")
	expectStatus(t, rec, http.StatusOK)
	today := decode[schedule.DailySchedule](t, rec)
	if today.DateUTC != "2025-08-27" || len(today.Fixtures) != 1 {
		t.Errorf("today = %+v", today)
	}

	rec = h.get(t, "/api/fixtures/tomorrow")
	expectStatus(t, rec, http.StatusOK)
	tomorrow := decode[schedule.DailySchedule](t, rec)
	if tomorrow.DateUTC != "2025-08-28" {
		t.Errorf("tomorrow date_utc = %q", tomorrow.DateUTC)
	}
	if tomorrow.Fixtures == nil || len(tomorrow.Fixtures) != 0 {
		t.Errorf("tomorrow fixtures = %v, want empty list", tomorrow.Fixtures)
	}

	rec = h.get(t, "/api/fixtures/today")
	expectCache(t, rec, cacheHit)
	if n := h.mock.PathCount(testutil.DatePath("2025-08-27")); n != 1 {
		t.Errorf("today fetched %d times, want 1", n)
	}
	if n := h.mock.PathCount(testutil.DatePath("2025-08-28")); n != 1 {
		t.Errorf("tomorrow fetched %d times, want 1", n)
	}
}

func TestUpcoming_DaysParameter(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{query: "", want: 7},
		{query: "?days=abc", want: 7},
		{query: "?days=2.5", want: 7},
		{query: "?days=0", want: 1},
		{query: "?days=-3", want: 1},
		{query: "?days=3", want: 3},
		{query: "?days=30", want: 14},
		{query: "?days=99999999999999999999", want: 14},
		{query: "?days=-99999999999999999999", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			h := newHarness(t)

			rec := h.get(t, "/api/fixtures/upcoming"+tt.query)
			expectStatus(t, rec, http.StatusOK)
			up := decode[schedule.UpcomingSchedule](t, rec)
			if up.Days != tt.want {
				t.Errorf("days = %d, want %d", up.Days, tt.want)
			}
			if n := h.mock.RequestCount(); n != tt.want {
				t.Errorf("provider requests = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestUpcoming_OmitsEmptyDaysAndSharesDayCache(t *testing.T) {
	h := newHarness(t)
	h.mock.SetFixturesByDate("2025-08-28", testutil.NewHealthyResponse(testutil.ListBody(
		testutil.FixtureJSON(7, "2025-08-28 18:45:00", "Leeds", "Burnley", 1, 1),
	)))

	rec := h.get(t, "/api/fixtures/date/2025-08-28")
	expectStatus(t, rec, http.StatusOK)

	rec = h.get(t, "/api/fixtures/upcoming?days=3")
	expectStatus(t, rec, http.StatusOK)
	expectCache(t, rec, cacheMiss)
	up := decode[schedule.UpcomingSchedule](t, rec)
	if len(up.Schedule) != 1 || up.Schedule[0].DateUTC != "2025-08-28" {
		t.Fatalf("schedule = %+v, want only 2025-08-28", up.Schedule)
	}
	if n := h.mock.PathCount(testutil.DatePath("2025-08-28")); n != 1 {
		t.Errorf("2025-08-28 fetched %d times, want 1", n)
	}

	rec = h.get(t, "/api/fixtures/upcoming?days=3")
	expectCache(t, rec, cacheHit)
	if n := h.mock.RequestCount(); n != 3 {
		t.Errorf("provider requests = %d, want 3", n)
	}
}

func TestLive_ShortTTL(t *testing.T) {
	h := newHarness(t)
	h.mock.SetResponse("/livescores/inplay", testutil.NewHealthyResponse(testutil.ListBody(
		testutil.FixtureJSON(9, "2025-08-27 09:00:00", "Brighton", "Wolves", 1, 0),
	)))

	rec := h.get(t, "/api/live")
	expectStatus(t, rec, http.StatusOK)
	live := decode[schedule.LiveFixtures](t, rec)
	if live.Count != 1 || len(live.Fixtures) != 1 {
		t.Fatalf("live = %+v", live)
	}

	h.clock.Advance(4 * time.Second)
	expectCache(t, h.get(t, "/api/live"), cacheHit)

	h.clock.Advance(2 * time.Second)
	expectCache(t, h.get(t, "/api/live"), cacheMiss)
	if n := h.mock.PathCount("/livescores/inplay"); n != 2 {
		t.Errorf("inplay fetched %d times, want 2", n)
	}
}

func TestMatch_PassesPayloadThrough(t *testing.T) {
	h := newHarness(t)
	payload := `{"data":{"id":42,"name":"Arsenal vs Chelsea","events":[]},"rate_limit":{"resets_in_seconds":60,"remaining":10,"requested_entity":"Fixture"}}`
	h.mock.SetResponse("/fixtures/42", testutil.NewHealthyResponse(payload))

	rec := h.get(t, "/api/matches/42")
	expectStatus(t, rec, http.StatusOK)
	if got := rec.Body.String(); got != payload {
		t.Errorf("body = %s, want provider payload", got)
	}

	h.clock.Advance(2 * time.Second)
	expectCache(t, h.get(t, "/api/matches/42"), cacheHit)

	h.clock.Advance(2 * time.Second)
	expectCache(t, h.get(t, "/api/matches/42"), cacheMiss)
	if n := h.mock.PathCount("/fixtures/42"); n != 2 {
		t.Errorf("match fetched %d times, want 2", n)
	}
}

func TestMatch_InvalidID(t *testing.T) {
	h := newHarness(t)

	for _, id := range []string{"abc", "-1", "1.5", "0", "99999999999999999999"} {
		t.Run(id, func(t *testing.T) {
			rec := h.get(t, "/api/matches/"+id)
			expectStatus(t, rec, http.StatusBadRequest)
		})
	}
	if n := h.mock.RequestCount(); n != 0 {
		t.Errorf("invalid ids reached the provider %d times", n)
	}
}

func TestUpstreamFailure_NotCached(t *testing.T) {
	h := newHarness(t)
	h.mock.SetFixturesByDate("2025-08-27", testutil.NewServerErrorResponse())

	rec := h.get(t, "/api/fixtures/date/2025-08-27")
	expectStatus(t, rec, http.StatusBadGateway)
	if body := decode[errorBody](t, rec); body.Error != "upstream request failed" {
		t.Errorf("error = %q", body.Error)
	}
	if strings.Contains(rec.Body.String(), "secret-token") {
		t.Error("response leaks the API token")
	}

	h.mock.SetFixturesByDate("2025-08-27", testutil.NewHealthyResponse(testutil.ListBody()))
	rec = h.get(t, "/api/fixtures/date/2025-08-27")
	expectStatus(t, rec, http.StatusOK)
	expectCache(t, rec, cacheMiss)
	if n := h.mock.PathCount(testutil.DatePath("2025-08-27")); n != 2 {
		t.Errorf("provider fetches = %d, want 2", n)
	}
}

func TestUpstreamErrors_MapToBadGateway(t *testing.T) {
	tests := map[string]testutil.MockResponse{
		"rate limited": testutil.NewRateLimitResponse(),
		"not found":    testutil.NewNotFoundResponse(),
		"bad json":     testutil.NewHealthyResponse(`{"data":[`),
	}

	for name, resp := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.mock.SetResponse("/livescores/inplay", resp)
			expectStatus(t, h.get(t, "/api/live"), http.StatusBadGateway)
		})
	}
}

func TestUpstreamTimeout_MapsToGatewayTimeout(t *testing.T) {
	h := newHarness(t)
	slow := testutil.NewHealthyResponse(testutil.ListBody())
	slow.Delay = 2 * time.Second
	h.mock.SetResponse("/livescores/inplay", slow)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/live", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	expectStatus(t, rec, http.StatusGatewayTimeout)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/api/live", nil)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusMethodNotAllowed)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/health")

	rec := h.get(t, "/metrics")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `gateway_http_requests_total{route="GET /health",status="200"}`) {
		t.Error("metrics output missing request counter")
	}
}

// Package testutil provides testing utilities for the fixtures gateway.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// NoResultsBody is what SportMonks returns with 200 when a query matches
// nothing.
const NoResultsBody = `{"message":"No result(s) found matching your request. Either the query did not return any results or you don't have access to it via your current subscription.","subscription":[],"rate_limit":{"resets_in_seconds":3600,"remaining":2999,"requested_entity":"Fixture"},"timezone":"UTC"}`

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSportMonks is a configurable mock SportMonks server for testing.
type MockSportMonks struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	requestCount int
	pathCounts   map[string]int
	lastQuery    url.Values
	inFlight     int
	maxInFlight  int
}

// NewMockSportMonks creates a new mock SportMonks server.
func NewMockSportMonks() *MockSportMonks {
	mock := &MockSportMonks{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[r.URL.Path]++
		mock.lastQuery = r.URL.Query()
		mock.inFlight++
		if mock.inFlight > mock.maxInFlight {
			mock.maxInFlight = mock.inFlight
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		defer func() {
			mock.mu.Lock()
			mock.inFlight--
			mock.mu.Unlock()
		}()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(NoResultsBody))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSportMonks) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSportMonks) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSportMonks) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.pathCounts = make(map[string]int)
	m.lastQuery = nil
	m.maxInFlight = 0
}

// SetHandler sets a custom handler for a specific path.
func (m *MockSportMonks) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockSportMonks) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetFixturesByDate configures the listing for one "YYYY-MM-DD" day.
func (m *MockSportMonks) SetFixturesByDate(date string, resp MockResponse) {
	m.SetResponse(DatePath(date), resp)
}

// RequestCount returns the number of requests made to the server.
func (m *MockSportMonks) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PathCount returns the number of requests made for path.
func (m *MockSportMonks) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// MaxInFlight returns the highest number of concurrent requests observed.
func (m *MockSportMonks) MaxInFlight() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxInFlight
}

// LastQuery returns the query string of the most recent request.
func (m *MockSportMonks) LastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

// DatePath returns the listing path for a "YYYY-MM-DD" day.
func DatePath(date string) string {
	return "/fixtures/date/" + date
}

// FixtureJSON renders a provider fixture with both participants and a
// CURRENT score. kickoff is "YYYY-MM-DD HH:MM:SS" or empty for none.
func FixtureJSON(id int64, kickoff, home, away string, homeGoals, awayGoals int) string {
	startingAt := "null"
	if kickoff != "" {
		startingAt = fmt.Sprintf("%q", kickoff)
	}
	return fmt.Sprintf(`{
		"id": %d,
		"league_id": 8,
		"league": {"id": 8, "name": "Premier League"},
		"state_id": 1,
		"starting_at": %s,
		"participants": [
			{"id": %d, "name": %q, "short_code": %q, "image_path": "https://cdn.example/%d.png", "meta": {"location": "home"}},
			{"id": %d, "name": %q, "short_code": %q, "image_path": "https://cdn.example/%d.png", "meta": {"location": "away"}}
		],
		"scores": [
			{"description": "CURRENT", "score": {"participant": "home", "goals": %d}},
			{"description": "CURRENT", "score": {"participant": "away", "goals": %d}}
		]
	}`, id, startingAt,
		id*10+1, home, shortCode(home), id*10+1,
		id*10+2, away, shortCode(away), id*10+2,
		homeGoals, awayGoals)
}

// ListBody wraps fixture objects in a SportMonks listing envelope.
func ListBody(fixtures ...string) string {
	return ListBodyWithQuota(3000, fixtures...)
}

// ListBodyWithQuota is ListBody with a chosen remaining quota.
func ListBodyWithQuota(remaining int, fixtures ...string) string {
	return fmt.Sprintf(`{"data":[%s],"rate_limit":{"resets_in_seconds":3600,"remaining":%d,"requested_entity":"Fixture"},"timezone":"UTC"}`,
		strings.Join(fixtures, ","), remaining)
}

// NewHealthyResponse creates a standard 200 OK JSON response.
func NewHealthyResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"message":"You have reached the rate limit for this entity."}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message":"Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"message":"The requested endpoint does not exist!"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func shortCode(name string) string {
	code := strings.ToUpper(name)
	if len(code) > 3 {
		code = code[:3]
	}
	return code
}

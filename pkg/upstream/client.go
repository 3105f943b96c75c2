// Package upstream provides the SportMonks v3 football HTTP client with retry,
// quota observation, and error classification.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/football-fixtures-gateway/pkg/fixture"
)

const (
	// DefaultBaseURL is the SportMonks v3 football API root.
	DefaultBaseURL = "https://api.sportmonks.com/v3/football"

	// DefaultLocale is the language hint sent with every request.
	DefaultLocale = "en"

	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 10 * time.Second

	// IncludeListing expands the relations fixture listings are normalized from.
	IncludeListing = "participants;league;scores"

	// IncludeMatch also expands match events for the single-fixture payload.
	IncludeMatch = "participants;league;scores;events"

	maxBodyBytes = 6 << 20
)

// Logical endpoint names used in logs, metrics and errors.
const (
	EndpointFixturesByDate = "fixtures_by_date"
	EndpointInplay         = "livescores_inplay"
	EndpointFixtureByID    = "fixture_by_id"
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the provider root; DefaultBaseURL when empty.
	BaseURL string

	// Token is the SportMonks API token (REQUIRED).
	Token string

	// Locale is the language hint; DefaultLocale when empty.
	Locale string

	// Timeout bounds one HTTP attempt; DefaultTimeout when zero.
	Timeout time.Duration

	// Retry controls attempts for transient failures.
	Retry RetryConfig

	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client

	// Logger defaults to the global logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns a configuration with the given token and defaults
// for everything else.
func DefaultConfig(token string) Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Token:   token,
		Locale:  DefaultLocale,
		Timeout: DefaultTimeout,
		Retry:   DefaultRetryConfig(),
	}
}

// Client talks to the SportMonks football API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	locale     string
	retry      RetryConfig
	quota      *QuotaTracker
	logger     zerolog.Logger
}

// New creates a new SportMonks client.
func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, ErrMissingToken
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	locale := cfg.Locale
	if locale == "" {
		locale = DefaultLocale
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	base := log.Logger
	if cfg.Logger != nil {
		base = *cfg.Logger
	}
	logger := base.With().Str("component", "upstream").Logger()

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		locale:     locale,
		retry:      cfg.Retry,
		quota:      NewQuotaTracker(logger),
		logger:     logger,
	}, nil
}

// Quota returns the tracker fed by every response.
func (c *Client) Quota() *QuotaTracker {
	return c.quota
}

type listEnvelope struct {
	Data      fixture.List[fixture.RawFixture] `json:"data"`
	RateLimit *RateLimit                       `json:"rate_limit"`
}

type quotaEnvelope struct {
	RateLimit *RateLimit `json:"rate_limit"`
}

// FixturesByDate returns the raw fixtures scheduled on the UTC calendar day
// of date. A day without fixtures yields an empty slice.
func (c *Client) FixturesByDate(ctx context.Context, date time.Time) ([]fixture.RawFixture, error) {
	path := "/fixtures/date/" + date.UTC().Format(time.DateOnly)
	return c.fetchList(ctx, EndpointFixturesByDate, path)
}

// Inplay returns the raw fixtures currently being played.
func (c *Client) Inplay(ctx context.Context) ([]fixture.RawFixture, error) {
	return c.fetchList(ctx, EndpointInplay, "/livescores/inplay")
}

// FixtureByID returns the provider payload for one fixture unmodified.
func (c *Client) FixtureByID(ctx context.Context, id int64) ([]byte, error) {
	path := "/fixtures/" + strconv.FormatInt(id, 10)
	body, err := c.Fetch(ctx, EndpointFixtureByID, path, IncludeMatch)
	if err != nil {
		return nil, err
	}

	var env quotaEnvelope
	if err := sonic.Unmarshal(body, &env); err == nil {
		c.quota.Observe(env.RateLimit)
	}
	return body, nil
}

func (c *Client) fetchList(ctx context.Context, endpoint, path string) ([]fixture.RawFixture, error) {
	body, err := c.Fetch(ctx, endpoint, path, IncludeListing)
	if err != nil {
		return nil, err
	}

	var env listEnvelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		uerr := &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: http.StatusOK,
			Class:      ErrorClassDecode,
			Message:    "decode provider payload",
			Err:        err,
		}
		errorsTotal.WithLabelValues(string(uerr.Class)).Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Upstream payload is not a JSON object")
		return nil, uerr
	}

	c.quota.Observe(env.RateLimit)

	// A day without fixtures comes back as a message with no data field.
	if env.Data == nil {
		return []fixture.RawFixture{}, nil
	}
	return env.Data, nil
}

// Fetch performs a GET against path with the credential, include and locale
// parameters set, retrying transient failures. It returns the body of a 2xx
// response once it is known to be valid JSON.
func (c *Client) Fetch(ctx context.Context, endpoint, path, include string) ([]byte, error) {
	fullURL := c.buildURL(path, include)
	redacted := redactAPIURL(fullURL)

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", redacted).
		Msg("Executing upstream request")

	var body []byte
	err := retryWithBackoff(ctx, c.retry, endpoint, c.logger, func() error {
		var attemptErr error
		body, attemptErr = c.do(ctx, endpoint, fullURL)
		return attemptErr
	})
	if err != nil {
		if ctx.Err() != nil {
			c.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("Upstream request abandoned")
			return nil, err
		}
		c.logger.Error().
			Err(err).
			Str("endpoint", endpoint).
			Str("url", redacted).
			Str("error_class", string(errorClassOf(err))).
			Msg("Upstream request failed")
		return nil, err
	}
	return body, nil
}

// do performs one attempt.
func (c *Client) do(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, markTransient(&UpstreamError{
			Endpoint: endpoint,
			Class:    ErrorClassNetwork,
			Message:  "send request",
			Err:      errors.New(c.sanitize(err.Error())),
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, markTransient(&UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Class:      ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		})
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Upstream request error")

		return nil, markTransient(&UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    fmt.Sprintf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(c.sanitize(string(body)))),
		})
	}

	if !sonic.Valid(body) {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Class:      ErrorClassDecode,
			Message:    fmt.Sprintf("malformed JSON body=%s", abbreviateBody(c.sanitize(string(body)))),
		}
	}

	return body, nil
}

func (c *Client) buildURL(path, include string) string {
	values := url.Values{}
	values.Set("api_token", c.token)
	if include != "" {
		values.Set("include", include)
	}
	if c.locale != "" {
		values.Set("locale", c.locale)
	}
	return c.baseURL + path + "?" + values.Encode()
}

func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if c.token != "" {
		value = strings.ReplaceAll(value, c.token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apiTokenParamRegex.ReplaceAllString(rawURL, "api_token=REDACTED")
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(text string) string {
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

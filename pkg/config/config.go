// Package config loads the gateway configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Sternrassler/football-fixtures-gateway/pkg/fixture"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/logging"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/upstream"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config represents the runtime configuration of the gateway.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	SportMonks SportMonksConfig `mapstructure:"sportmonks"`
	Display    DisplayConfig    `mapstructure:"display"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host" env:"HOST" validate:"required"`
	Port int    `mapstructure:"port" env:"PORT" validate:"min=1,max=65535"`
}

// SportMonksConfig configures the upstream provider.
type SportMonksConfig struct {
	APIToken    string        `mapstructure:"api_token" env:"SPORTMONKS_API_TOKEN" validate:"required"`
	BaseURL     string        `mapstructure:"base_url" env:"SPORTMONKS_BASE_URL" validate:"required,url"`
	Locale      string        `mapstructure:"locale" env:"SPORTMONKS_LOCALE" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout" env:"UPSTREAM_TIMEOUT" validate:"gt=0"`
	MaxAttempts int           `mapstructure:"max_attempts" env:"UPSTREAM_MAX_ATTEMPTS" validate:"min=1,max=5"`
}

// DisplayConfig controls how kickoff_local is rendered.
type DisplayConfig struct {
	Timezone string `mapstructure:"timezone" env:"DISPLAY_TIMEZONE" validate:"required,timezone"`
}

// ScheduleConfig controls multi-day aggregation.
type ScheduleConfig struct {
	UpcomingConcurrency int `mapstructure:"upcoming_concurrency" env:"UPCOMING_CONCURRENCY" validate:"min=1,max=14"`
}

// CacheConfig selects and configures the response cache backend.
type CacheConfig struct {
	Backend  string `mapstructure:"backend" env:"CACHE_BACKEND" validate:"oneof=memory redis"`
	RedisURL string `mapstructure:"redis_url" env:"REDIS_URL" validate:"required_if=Backend redis"`
	RedisDB  int    `mapstructure:"redis_db" env:"REDIS_DB" validate:"min=0"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level" env:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"pretty" env:"LOG_PRETTY"`
}

// ConfigurationError reports a missing or invalid setting. The process must
// not start serving when Load returns one.
type ConfigurationError struct {
	// Field is the environment variable at fault, empty when unknown.
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

type binding struct {
	key string
	env string
	def any
}

var bindings = []binding{
	{key: "server.host", env: "HOST", def: "0.0.0.0"},
	{key: "server.port", env: "PORT", def: 8080},
	{key: "sportmonks.api_token", env: "SPORTMONKS_API_TOKEN"},
	{key: "sportmonks.base_url", env: "SPORTMONKS_BASE_URL", def: upstream.DefaultBaseURL},
	{key: "sportmonks.locale", env: "SPORTMONKS_LOCALE", def: upstream.DefaultLocale},
	{key: "sportmonks.timeout", env: "UPSTREAM_TIMEOUT", def: "10s"},
	{key: "sportmonks.max_attempts", env: "UPSTREAM_MAX_ATTEMPTS", def: 2},
	{key: "display.timezone", env: "DISPLAY_TIMEZONE", def: fixture.DefaultDisplayTimezone},
	{key: "schedule.upcoming_concurrency", env: "UPCOMING_CONCURRENCY", def: 1},
	{key: "cache.backend", env: "CACHE_BACKEND", def: BackendMemory},
	{key: "cache.redis_url", env: "REDIS_URL", def: "redis://localhost:6379"},
	{key: "cache.redis_db", env: "REDIS_DB", def: 0},
	{key: "log.level", env: "LOG_LEVEL", def: string(logging.LevelInfo)},
	{key: "log.pretty", env: "LOG_PRETTY", def: false},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if env := fld.Tag.Get("env"); env != "" {
			return env
		}
		return fld.Name
	})
	return v
}

// Load reads the configuration from the environment and validates it.
// Every failure is a *ConfigurationError.
func Load() (*Config, error) {
	v := viper.New()
	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, &ConfigurationError{Field: b.env, Reason: err.Error()}
		}
		if b.def != nil {
			v.SetDefault(b.key, b.def)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unmarshal: %v", err)}
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	c.SportMonks.APIToken = strings.TrimSpace(c.SportMonks.APIToken)
	c.SportMonks.BaseURL = strings.TrimRight(strings.TrimSpace(c.SportMonks.BaseURL), "/")
	c.SportMonks.Locale = strings.TrimSpace(c.SportMonks.Locale)
	c.Display.Timezone = strings.TrimSpace(c.Display.Timezone)
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	c.Cache.RedisURL = strings.TrimSpace(c.Cache.RedisURL)
}

// Validate checks every field and reports the first violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigurationError{Reason: err.Error()}
	}

	fe := verrs[0]
	return &ConfigurationError{Field: fe.Field(), Reason: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "url":
		return "must be an absolute URL"
	case "timezone":
		return fmt.Sprintf("is not a known IANA timezone (%v)", fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	case "min", "max", "gt":
		return fmt.Sprintf("must satisfy %s=%s, got %v", fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Upstream returns the SportMonks client configuration.
func (c *Config) Upstream() upstream.Config {
	up := upstream.DefaultConfig(c.SportMonks.APIToken)
	up.BaseURL = c.SportMonks.BaseURL
	up.Locale = c.SportMonks.Locale
	up.Timeout = c.SportMonks.Timeout
	up.Retry.MaxAttempts = c.SportMonks.MaxAttempts
	return up
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}

// Command fixtures-gateway serves normalized football fixtures from
// SportMonks behind a read-through response cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/football-fixtures-gateway/pkg/api"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/cache"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/config"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/fixture"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/logging"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/schedule"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/upstream"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	redisPingTimeout  = 5 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logger := logging.Setup(logging.DefaultConfig())
		var cerr *config.ConfigurationError
		if errors.As(err, &cerr) {
			logger.Error().Str("field", cerr.Field).Str("reason", cerr.Reason).Msg("Invalid configuration")
		} else {
			logger.Error().Err(err).Msg("Failed to load configuration")
		}
		return 1
	}

	base := logging.Setup(cfg.Logging())
	logger := logging.NewLogger("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newStore(ctx, cfg, base)
	if err != nil {
		logger.Error().Err(err).Str("backend", cfg.Cache.Backend).Msg("Failed to create cache store")
		return 1
	}
	defer closeStore()

	handler, err := newHandler(cfg, store, base)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build gateway")
		return 1
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("cache_backend", cfg.Cache.Backend).
			Str("display_timezone", cfg.Display.Timezone).
			Msg("Starting fixtures gateway")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server failed")
			return 1
		}
	case <-ctx.Done():
		logger.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Graceful shutdown failed")
			return 1
		}
	}

	logger.Info().Msg("Stopped")
	return 0
}

// newStore creates the configured cache backend. The returned func releases
// its resources.
func newStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cache.Store, func(), error) {
	if cfg.Cache.Backend != config.BackendRedis {
		return cache.NewMemoryStore(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DB = cfg.Cache.RedisDB
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("Connected to Redis")

	return cache.NewRedisStore(client, logger), func() { _ = client.Close() }, nil
}

// newHandler wires the provider client, schedule aggregation and HTTP API
// over store.
func newHandler(cfg *config.Config, store cache.Store, logger zerolog.Logger) (http.Handler, error) {
	upCfg := cfg.Upstream()
	upCfg.Logger = &logger
	client, err := upstream.New(upCfg)
	if err != nil {
		return nil, fmt.Errorf("create sportmonks client: %w", err)
	}

	normalizer, err := fixture.LoadNormalizer(cfg.Display.Timezone)
	if err != nil {
		return nil, err
	}

	manager := cache.NewManager(store, logger)
	schedules := schedule.New(client, normalizer, manager, schedule.Config{
		DayTTL:         api.TTLDate,
		MaxConcurrency: cfg.Schedule.UpcomingConcurrency,
	}, logger)

	srv := api.NewServer(api.Config{
		Schedules: schedules,
		Matches:   client,
		Cache:     manager,
		Logger:    logger,
	})
	return srv.Handler(), nil
}

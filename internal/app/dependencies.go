package app

import (
	"context"
	"fmt"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sellerstats/internal/config"
	"github.com/noah-isme/sellerstats/internal/leaderboard"
	"github.com/noah-isme/sellerstats/internal/ratelimit"
	"github.com/noah-isme/sellerstats/internal/salesstats"
)

// MetricsNamespace prefixes every Prometheus series the service exports.
const MetricsNamespace = "sellerstats"

// Dependencies enumerates core services shared by the HTTP server.
type Dependencies struct {
	Redis           *redis.Client
	Validator       *validator.Validate
	Limiter         ratelimit.Allower
	MetricsRegistry *prometheus.Registry
	Leaderboard     *leaderboard.Service
}

// New connects to Redis when configured and assembles the shared services.
// The returned close function releases the Redis connection pool.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Dependencies, func(), error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := &Dependencies{
		Validator:       salesstats.NewValidator(),
		MetricsRegistry: reg,
		Limiter:         ratelimit.NewMemoryLimiter("ratelimit:"),
	}
	closeFn := func() {}

	if cfg.RedisURL != "" {
		rdb, err := NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, closeFn, err
		}
		if err := redisotel.InstrumentTracing(rdb); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
		deps.Redis = rdb
		deps.Limiter = ratelimit.Limiter{Client: rdb, Prefix: "ratelimit:"}
		closeFn = func() {
			if err := rdb.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}
	} else {
		logger.Warn().Msg("REDIS_URL not set; leaderboard cache disabled and rate limits are per process")
	}

	deps.Leaderboard = &leaderboard.Service{
		Options:   cfg.SalesOptions(),
		R:         deps.Redis,
		TTL:       cfg.LeaderboardCacheTTL,
		Logger:    logger.With().Str("component", "leaderboard").Logger(),
		Validator: deps.Validator,
	}
	return deps, closeFn, nil
}

// NewRedis parses url and verifies the server answers a ping.
func NewRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// PingRedis satisfies health.Checker.
func (d *Dependencies) PingRedis(ctx context.Context, timeout time.Duration) error {
	if d.Redis == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.Redis.Ping(ctx).Err()
}

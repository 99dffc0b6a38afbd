package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sellerstats/internal/app"
	"github.com/noah-isme/sellerstats/internal/config"
	"github.com/noah-isme/sellerstats/internal/health"
	"github.com/noah-isme/sellerstats/internal/leaderboard"
	"github.com/noah-isme/sellerstats/internal/obs"
	"github.com/noah-isme/sellerstats/internal/ratelimit"
	"github.com/noah-isme/sellerstats/internal/security"
)

type routerConfig struct {
	Config   *config.Config
	Deps     *app.Dependencies
	Logger   zerolog.Logger
	Tracing  bool
	Buckets  []float64
	RedisTTL time.Duration
}

func newRouter(rc routerConfig) http.Handler {
	cfg, deps := rc.Config, rc.Deps

	obs.MustRegisterDomainMetrics(app.MetricsNamespace, deps.MetricsRegistry)
	httpMetrics := obs.NewHTTPMetrics(app.MetricsNamespace, rc.Buckets, deps.MetricsRegistry)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if rc.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: rc.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.AppEnv == "production"}.Middleware)

	r.Handle("/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}))

	var checker health.Checker
	if deps.Redis != nil {
		checker = deps
	}
	healthHandler := health.Handler{Checker: checker, RedisTimeout: rc.RedisTTL}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	lb := &leaderboard.Handler{Svc: deps.Leaderboard}
	limit := ratelimit.Handler{
		Limiter: deps.Limiter,
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP,
			Window: time.Minute,
			Max:    cfg.RateLimitPerMinute,
		},
		OnError: func(err error) {
			rc.Logger.Warn().Err(err).Msg("rate limiter unavailable")
		},
	}

	r.Route("/api/v1/leaderboard", func(v chi.Router) {
		v.Use(limit.Middleware)
		v.With(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware).Post("/", lb.Compute)
		v.Get("/{id}", lb.Get)
	})

	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

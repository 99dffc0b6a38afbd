package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/sellerstats/internal/salesstats"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv              string
	Port                string
	RedisURL            string
	CORSAllowedOrigins  []string
	LeaderboardCacheTTL time.Duration
	BodyLimitBytes      int64
	RateLimitPerMinute  int
	LogFormat           string
	LogLevel            string

	TopN        int
	SalesCount  salesstats.SalesCountMode
	Precision   salesstats.Precision
	StrictEmpty bool
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:              valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:            strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins:  splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		LeaderboardCacheTTL: parseDuration(k.String("LEADERBOARD_CACHE_TTL"), "10m"),
		BodyLimitBytes:      int64(parseInt(k.String("HTTP_BODY_LIMIT_BYTES"), 10<<20)),
		RateLimitPerMinute:  parseInt(k.String("RATE_LIMIT_PER_MINUTE"), 60),
		LogFormat:           valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:            valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		TopN:                parseInt(k.String("SALES_TOP_N"), salesstats.DefaultTopN),
		StrictEmpty:         parseBool(k.String("SALES_STRICT_EMPTY")),
	}

	mode, err := salesstats.ParseSalesCountMode(valueOrDefault(k.String("SALES_COUNT_MODE"), string(salesstats.SalesCountUnits)))
	if err != nil {
		return nil, fmt.Errorf("SALES_COUNT_MODE: %w", err)
	}
	cfg.SalesCount = mode

	precision, err := salesstats.ParsePrecision(valueOrDefault(k.String("SALES_ROUNDING"), "integer"))
	if err != nil {
		return nil, fmt.Errorf("SALES_ROUNDING: %w", err)
	}
	cfg.Precision = precision

	if cfg.TopN < 1 {
		return nil, fmt.Errorf("SALES_TOP_N must be positive, got %d", cfg.TopN)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// SalesOptions returns pipeline options using the built-in policies.
func (c *Config) SalesOptions() salesstats.Options {
	opts := salesstats.DefaultOptions()
	opts.TopN = c.TopN
	opts.SalesCount = c.SalesCount
	opts.Precision = c.Precision
	opts.Strict = c.StrictEmpty
	return opts
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}

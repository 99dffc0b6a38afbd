package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/sellerstats/internal/common"
	"github.com/noah-isme/sellerstats/internal/obs"
	"github.com/noah-isme/sellerstats/internal/salesstats"
)

// ErrNotFound is returned when no stored leaderboard matches an id.
var ErrNotFound = errors.New("leaderboard not found")

// Overrides adjusts the service defaults for a single request. Zero values
// keep the defaults.
type Overrides struct {
	TopN       int
	SalesCount salesstats.SalesCountMode
}

// Settings echoes the effective knobs a leaderboard was computed with.
type Settings struct {
	TopN       int                       `json:"top_n"`
	SalesCount salesstats.SalesCountMode `json:"sales_count"`
	Rounding   string                    `json:"rounding"`
	Strict     bool                      `json:"strict"`
}

// Result is a computed leaderboard as returned to API clients.
type Result struct {
	ID          string                    `json:"id"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Cached      bool                      `json:"cached"`
	Settings    Settings                  `json:"settings"`
	Sellers     []salesstats.SellerReport `json:"sellers"`
	Stats       salesstats.Stats          `json:"stats"`
}

// Service computes leaderboards and caches them in Redis by content.
type Service struct {
	Options   salesstats.Options
	R         *redis.Client
	TTL       time.Duration
	Logger    zerolog.Logger
	Validator *validator.Validate
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) cacheEnabled() bool {
	return s.R != nil && s.TTL > 0
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

func (s *Service) effective(ov Overrides) salesstats.Options {
	opts := s.Options
	if ov.TopN != 0 {
		opts.TopN = ov.TopN
	}
	if ov.SalesCount != "" {
		opts.SalesCount = ov.SalesCount
	}
	return opts
}

func settingsOf(opts salesstats.Options) Settings {
	return Settings{
		TopN:       opts.TopN,
		SalesCount: opts.SalesCount,
		Rounding:   opts.Precision.String(),
		Strict:     opts.Strict,
	}
}

// Compute ranks the sellers in the dataset. Identical datasets computed with
// identical settings are served from the cache while it is warm.
func (s *Service) Compute(ctx context.Context, in *salesstats.Input, ov Overrides) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("leaderboard service not configured")
	}
	ctx, span := obs.Tracer("leaderboard").Start(ctx, "leaderboard.compute")
	defer span.End()

	opts := s.effective(ov)
	settings := settingsOf(opts)

	var contentKey string
	if s.cacheEnabled() && in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("fingerprint dataset: %w", err)
		}
		tag, err := json.Marshal(settings)
		if err != nil {
			return nil, fmt.Errorf("fingerprint settings: %w", err)
		}
		contentKey = cacheKey("lb", "sum", common.Fingerprint(payload, tag))
		if res, ok := s.load(ctx, contentKey); ok {
			obs.ObserveLeaderboardCache(true)
			span.SetAttributes(attribute.Bool("leaderboard.cached", true))
			res.Cached = true
			return res, nil
		}
		obs.ObserveLeaderboardCache(false)
	}

	start := time.Now()
	analyzer := &salesstats.Analyzer{Options: opts, Logger: s.Logger, Validator: s.Validator}
	rep, err := analyzer.Run(in)
	if err != nil {
		obs.ObserveLeaderboardRun("invalid", 0, 0, obs.DurationMillis(time.Since(start)))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid leaderboard request")
		return nil, err
	}
	obs.ObserveLeaderboardRun("ok", rep.Stats.SkippedRecords, rep.Stats.SkippedItems, obs.DurationMillis(time.Since(start)))
	span.SetAttributes(
		attribute.Int("leaderboard.sellers", len(rep.Sellers)),
		attribute.Int("leaderboard.records", rep.Stats.Records),
		attribute.Int("leaderboard.skipped_line_items", rep.Stats.SkippedItems),
	)

	res := &Result{
		ID:          uuid.NewString(),
		GeneratedAt: s.now().UTC(),
		Settings:    settings,
		Sellers:     rep.Sellers,
		Stats:       rep.Stats,
	}
	if contentKey != "" {
		s.store(ctx, contentKey, res)
		s.store(ctx, cacheKey("lb", "id", res.ID), res)
	}
	return res, nil
}

// Get returns a previously computed leaderboard by id.
func (s *Service) Get(ctx context.Context, id string) (*Result, error) {
	if s == nil || !s.cacheEnabled() {
		return nil, ErrNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	data, err := s.R.Get(ctx, cacheKey("lb", "id", id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return &res, nil
}

func (s *Service) load(ctx context.Context, key string) (*Result, bool) {
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.Logger.Warn().Err(err).Str("key", key).Msg("leaderboard cache read failed")
		}
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (s *Service) store(ctx context.Context, key string, value *Result) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.R.Set(ctx, key, data, s.TTL).Err(); err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("leaderboard cache write failed")
	}
}

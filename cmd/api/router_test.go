package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sellerstats/internal/app"
	"github.com/noah-isme/sellerstats/internal/config"
)

const dataset = `{
  "sellers": [{"id": "seller_1", "first_name": "Alexey", "last_name": "Petrov"}],
  "products": [{"sku": "A", "purchase_price": 50, "sale_price": 100}],
  "purchase_records": [{"seller_id": "seller_1", "items": [{"sku": "A", "quantity": 2}]}]
}`

func testRouter(t *testing.T, env map[string]string) http.Handler {
	t.Helper()
	base := map[string]string{"REDIS_URL": ""}
	for k, v := range env {
		base[k] = v
	}
	cfg, err := config.LoadForTests(base)
	require.NoError(t, err)
	deps, closeFn, err := app.New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(closeFn)
	return newRouter(routerConfig{Config: cfg, Deps: deps, Logger: zerolog.Nop()})
}

func TestRouterComputesLeaderboard(t *testing.T) {
	router := testRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/leaderboard", strings.NewReader(dataset)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"seller_id":"seller_1"`)
	require.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	require.NotEmpty(t, rr.Header().Get("X-RateLimit-Limit"))
}

func TestRouterEnforcesBodyLimit(t *testing.T) {
	router := testRouter(t, map[string]string{"HTTP_BODY_LIMIT_BYTES": "16"})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/leaderboard", strings.NewReader(dataset)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestRouterRateLimitsLeaderboard(t *testing.T) {
	router := testRouter(t, map[string]string{"RATE_LIMIT_PER_MINUTE": "1"})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/leaderboard", strings.NewReader(dataset)))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/leaderboard", strings.NewReader(dataset)))
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := testRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"redis":"disabled"`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "sellerstats_http_requests_total")
}

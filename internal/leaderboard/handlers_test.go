package leaderboard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sellerstats/internal/leaderboard"
	"github.com/noah-isme/sellerstats/internal/salesstats"
)

const body = `{
  "sellers": [
    {"id": "seller_1", "first_name": "Alexey", "last_name": "Petrov"},
    {"id": "seller_2", "first_name": "Ivan", "last_name": "Ivanov"},
    {"id": "seller_3", "first_name": "Maria", "last_name": "Smirnova"}
  ],
  "products": [
    {"sku": "A", "purchase_price": 50, "sale_price": 100},
    {"sku": "B", "purchase_price": 10, "sale_price": 20}
  ],
  "purchase_records": [
    {"seller_id": "seller_1", "items": [{"sku": "A", "quantity": 10, "sale_price": 100, "discount": 0}]},
    {"seller_id": "seller_2", "items": [{"sku": "A", "quantity": 6, "sale_price": 100, "discount": 0}]},
    {"seller_id": "seller_3", "items": [{"sku": "B", "quantity": 10, "sale_price": 20, "discount": 0}]},
    {"seller_id": "ghost", "items": [{"sku": "A", "quantity": 99}]}
  ]
}`

type envelope struct {
	Data  leaderboard.Result `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newRouter(svc *leaderboard.Service) http.Handler {
	h := &leaderboard.Handler{Svc: svc}
	r := chi.NewRouter()
	r.Post("/api/v1/leaderboard", h.Compute)
	r.Get("/api/v1/leaderboard/{id}", h.Get)
	return r
}

func do(t *testing.T, router http.Handler, method, target, payload string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr.Code, env
}

func TestHandlerComputeRanksSellers(t *testing.T) {
	router := newRouter(&leaderboard.Service{Options: salesstats.DefaultOptions()})

	code, env := do(t, router, http.MethodPost, "/api/v1/leaderboard", body)
	require.Equal(t, http.StatusOK, code)

	sellers := env.Data.Sellers
	require.Len(t, sellers, 3)
	require.Equal(t, salesstats.ID("seller_1"), sellers[0].SellerID)
	require.Equal(t, 500.0, sellers[0].Profit)
	require.Equal(t, 75.0, sellers[0].Bonus)
	require.Equal(t, 300.0, sellers[1].Profit)
	require.Equal(t, 30.0, sellers[1].Bonus)
	require.Equal(t, 100.0, sellers[2].Profit)
	require.Equal(t, 0.0, sellers[2].Bonus)
	require.Equal(t, 1, env.Data.Stats.SkippedRecords)
}

func TestHandlerComputeQueryOverrides(t *testing.T) {
	router := newRouter(&leaderboard.Service{Options: salesstats.DefaultOptions()})

	code, env := do(t, router, http.MethodPost, "/api/v1/leaderboard?top=1&sales_count=records", body)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, env.Data.Settings.TopN)
	require.Equal(t, 1, env.Data.Sellers[0].SalesCount)

	code, env = do(t, router, http.MethodPost, "/api/v1/leaderboard?top=0", body)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "INVALID_OPTIONS", env.Error.Code)

	code, env = do(t, router, http.MethodPost, "/api/v1/leaderboard?sales_count=receipts", body)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "INVALID_OPTIONS", env.Error.Code)
}

func TestHandlerComputeErrors(t *testing.T) {
	router := newRouter(&leaderboard.Service{Options: salesstats.DefaultOptions()})

	code, env := do(t, router, http.MethodPost, "/api/v1/leaderboard", `{"sellers": [`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "BAD_REQUEST", env.Error.Code)

	code, env = do(t, router, http.MethodPost, "/api/v1/leaderboard", "")
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "BAD_REQUEST", env.Error.Code)

	code, env = do(t, router, http.MethodPost, "/api/v1/leaderboard", `{"sellers": "x", "products": [], "purchase_records": []}`)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Equal(t, "INVALID_INPUT", env.Error.Code)

	code, env = do(t, router, http.MethodPost, "/api/v1/leaderboard", `{"sellers": [], "products": []}`)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Equal(t, "INVALID_INPUT", env.Error.Code)
	require.Contains(t, env.Error.Message, "PurchaseRecords")
}

func TestHandlerGet(t *testing.T) {
	_, rdb := newRedis(t)
	router := newRouter(&leaderboard.Service{Options: salesstats.DefaultOptions(), R: rdb, TTL: time.Minute})

	code, created := do(t, router, http.MethodPost, "/api/v1/leaderboard", body)
	require.Equal(t, http.StatusOK, code)

	code, fetched := do(t, router, http.MethodGet, "/api/v1/leaderboard/"+created.Data.ID, "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, created.Data.Sellers, fetched.Data.Sellers)

	code, env := do(t, router, http.MethodGet, "/api/v1/leaderboard/3f0e2a52-8d8e-4c55-9b0b-0c4b4f3f2a11", "")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "LEADERBOARD_NOT_FOUND", env.Error.Code)
}

func TestHandlerNotConfigured(t *testing.T) {
	router := newRouter(nil)
	code, env := do(t, router, http.MethodPost, "/api/v1/leaderboard", body)
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, "LEADERBOARD_NOT_CONFIGURED", env.Error.Code)
}

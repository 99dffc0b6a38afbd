package leaderboard

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/sellerstats/internal/common"
	"github.com/noah-isme/sellerstats/internal/dataset"
	"github.com/noah-isme/sellerstats/internal/salesstats"
)

// Handler exposes leaderboard endpoints.
type Handler struct {
	Svc *Service
}

// Compute ranks the sellers of the dataset posted in the request body.
// The optional query parameters top and sales_count override the defaults.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "LEADERBOARD_NOT_CONFIGURED", "leaderboard service not configured", nil)
		return
	}
	ov, err := overridesFromQuery(r)
	if err != nil {
		common.WriteError(w, toAppError(err))
		return
	}
	in, err := dataset.Decode(r.Body)
	if errors.Is(err, dataset.ErrMalformed) {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	if err != nil {
		common.WriteError(w, toAppError(err))
		return
	}
	res, err := h.Svc.Compute(r.Context(), in, ov)
	if err != nil {
		common.WriteError(w, toAppError(err))
		return
	}
	common.Data(w, http.StatusOK, res)
}

// Get returns a stored leaderboard by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "LEADERBOARD_NOT_CONFIGURED", "leaderboard service not configured", nil)
		return
	}
	res, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, toAppError(err))
		return
	}
	common.Data(w, http.StatusOK, res)
}

func overridesFromQuery(r *http.Request) (Overrides, error) {
	q := r.URL.Query()
	var ov Overrides
	if raw := strings.TrimSpace(q.Get("top")); raw != "" {
		ov.TopN = common.AtoiDefault(raw, -1)
		if ov.TopN < 1 {
			return ov, common.NewAppError("INVALID_OPTIONS", "top must be a positive integer", http.StatusBadRequest, salesstats.ErrInvalidConfig)
		}
	}
	if raw := q.Get("sales_count"); raw != "" {
		mode, err := salesstats.ParseSalesCountMode(raw)
		if err != nil {
			return ov, err
		}
		ov.SalesCount = mode
	}
	return ov, nil
}

func toAppError(err error) *common.AppError {
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, salesstats.ErrInvalidConfig):
		return common.NewAppError("INVALID_OPTIONS", err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, salesstats.ErrInvalidInput):
		return common.NewAppError("INVALID_INPUT", err.Error(), http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrNotFound):
		return common.NewAppError("LEADERBOARD_NOT_FOUND", "leaderboard not found", http.StatusNotFound, err)
	default:
		return common.NewAppError("LEADERBOARD_ERROR", "failed to compute leaderboard", http.StatusInternalServerError, err)
	}
}

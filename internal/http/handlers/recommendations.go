package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"coach-server/internal/domain"
	"coach-server/internal/middleware"
	"coach-server/internal/recommend"
)

type recommendationRequest struct {
	Context recommend.Context `json:"context"`
}

// RecommendationsGet serves a daily recommendation for the caller's current
// context. Results are cached per (user, context) so repeated requests with
// the same inputs do not re-invoke the generator.
func (a *App) RecommendationsGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Context == nil {
		req.Context = recommend.Context{}
	}
	if _, ok := req.Context["locale"]; !ok {
		req.Context["locale"] = middleware.LocaleFromContext(r.Context())
	}

	value, err := a.Cache.GetOrCompute(r.Context(), userID, req.Context, func(ctx context.Context) (json.RawMessage, error) {
		snapshot, err := json.Marshal(req.Context)
		if err != nil {
			return nil, err
		}
		return a.Recommender.Generate(ctx, snapshot)
	})
	if err != nil {
		if errors.Is(err, domain.ErrGeneratorFailure) || errors.Is(err, context.DeadlineExceeded) {
			a.error(w, http.StatusBadGateway, "generation_failed", "recommendation could not be generated")
			return
		}
		a.Logger.Error().Err(err).Str("owner_id", userID).Msg("recommendations: compute failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load recommendation")
		return
	}

	a.json(w, http.StatusOK, map[string]any{"recommendation": value})
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"coach-server/internal/domain"
)

// ProfilePut replaces the caller's onboarding profile.
func (a *App) ProfilePut(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var profile domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if fields := a.validateStruct(profile); fields != nil {
		a.validationError(w, fields)
		return
	}

	profile.OwnerID = userID
	profile.UpdatedAt = time.Now().UTC()
	if err := a.Profiles.Upsert(r.Context(), &profile); err != nil {
		a.Logger.Error().Err(err).Str("owner_id", userID).Msg("profile: upsert failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save profile")
		return
	}

	a.json(w, http.StatusOK, profile)
}

// ProfileGet returns the caller's profile, or 404 before onboarding.
func (a *App) ProfileGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	profile, err := a.Profiles.GetByOwner(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		a.Logger.Error().Err(err).Str("owner_id", userID).Msg("profile: lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load profile")
		return
	}

	a.json(w, http.StatusOK, profile)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"coach-server/internal/domain"
)

const defaultWorkoutListLimit = 50

// WorkoutsCreate logs one training session for the caller.
func (a *App) WorkoutsCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var entry domain.WorkoutEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if fields := a.validateStruct(entry); fields != nil {
		a.validationError(w, fields)
		return
	}

	entry.ID = uuid.NewString()
	entry.OwnerID = userID
	entry.CreatedAt = time.Now().UTC()
	if entry.PerformedAt.IsZero() {
		entry.PerformedAt = entry.CreatedAt
	}
	if err := a.Workouts.Create(r.Context(), &entry); err != nil {
		a.Logger.Error().Err(err).Str("owner_id", userID).Msg("workouts: create failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to log workout")
		return
	}

	a.json(w, http.StatusCreated, entry)
}

// WorkoutsList returns the caller's most recent sessions, newest first.
func (a *App) WorkoutsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	limit := defaultWorkoutListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := a.Workouts.ListByOwner(r.Context(), userID, limit)
	if err != nil {
		a.Logger.Error().Err(err).Str("owner_id", userID).Msg("workouts: list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load workouts")
		return
	}
	if entries == nil {
		entries = []domain.WorkoutEntry{}
	}

	a.json(w, http.StatusOK, map[string]any{"items": entries})
}

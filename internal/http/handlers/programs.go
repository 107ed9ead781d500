package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coach-server/internal/domain"
	"coach-server/internal/middleware"
)

type jobResponse struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Result    json.RawMessage  `json:"result,omitempty"`
	Error     *domain.JobError `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ProgramsSubmit accepts a program request and returns the id of the pending
// generation job. Generation itself happens out of band; callers poll the
// status endpoint.
func (a *App) ProgramsSubmit(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var req domain.ProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Locale == "" {
		req.Locale = middleware.LocaleFromContext(r.Context())
	}

	jobID, err := a.Submitter.Submit(r.Context(), userID, req)
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.As(err, &vErr):
			a.validationError(w, vErr.Fields)
		case errors.Is(err, domain.ErrUnauthorized):
			a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		default:
			a.Logger.Error().Err(err).Msg("programs: submit failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to submit program request")
		}
		return
	}

	a.json(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"status": string(domain.JobStatusPending),
	})
}

// ProgramStatus reports the current state of one generation job. Jobs owned
// by other users are indistinguishable from missing ones.
func (a *App) ProgramStatus(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	jobID := chi.URLParam(r, "id")
	job, err := a.Jobs.GetForOwner(r.Context(), jobID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("programs: status lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}

	a.json(w, http.StatusOK, jobResponse{
		ID:        job.ID,
		Status:    string(job.Status),
		Result:    job.Result,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	})
}

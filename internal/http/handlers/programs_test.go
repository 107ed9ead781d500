package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"coach-server/internal/domain"
)

func TestProgramsSubmit_AcceptsAndStoresPendingJob(t *testing.T) {
	app := newTestApp()

	body := `{"goal":"strength","days_per_week":3,"experience":"beginner"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/programs", strings.NewReader(body))
	req = req.WithContext(authedContext("user-1"))
	rr := httptest.NewRecorder()

	app.ProgramsSubmit(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body: %s", rr.Code, rr.Body.String())
	}

	var payload struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.JobID == "" {
		t.Fatal("expected non-empty job_id")
	}
	if payload.Status != "pending" {
		t.Fatalf("status = %q, want pending", payload.Status)
	}

	job, err := app.Jobs.GetForOwner(context.Background(), payload.JobID, "user-1")
	if err != nil {
		t.Fatalf("GetForOwner: %v", err)
	}
	if job.Status != domain.JobStatusPending {
		t.Fatalf("stored status = %q, want pending", job.Status)
	}
}

func TestProgramsSubmit_RejectsInvalidRequest(t *testing.T) {
	app := newTestApp()

	body := `{"goal":"bulk","days_per_week":9,"experience":"beginner"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/programs", strings.NewReader(body))
	req = req.WithContext(authedContext("user-1"))
	rr := httptest.NewRecorder()

	app.ProgramsSubmit(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body: %s", rr.Code, rr.Body.String())
	}

	var payload struct {
		Error struct {
			Code   string             `json:"code"`
			Fields []domain.FieldError `json:"fields"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "validation_failed" {
		t.Fatalf("error code = %q, want validation_failed", payload.Error.Code)
	}
	if len(payload.Error.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %+v", len(payload.Error.Fields), payload.Error.Fields)
	}
}

func TestProgramsSubmit_RequiresAuth(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/v1/programs", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()

	app.ProgramsSubmit(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestProgramStatus_ReturnsJob(t *testing.T) {
	app := newTestApp()

	jobID, err := app.Submitter.Submit(context.Background(), "user-1", domain.ProgramRequest{
		Goal:        "strength",
		DaysPerWeek: 3,
		Experience:  "beginner",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	rr := httptest.NewRecorder()
	app.ProgramStatus(rr, statusRequest(jobID, "user-1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rr.Code, rr.Body.String())
	}

	var payload jobResponse
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ID != jobID {
		t.Fatalf("id = %q, want %q", payload.ID, jobID)
	}
	if payload.Status != "pending" {
		t.Fatalf("status = %q, want pending", payload.Status)
	}
	if payload.Result != nil {
		t.Fatalf("expected no result on pending job, got %s", payload.Result)
	}
}

func TestProgramStatus_HidesOtherOwners(t *testing.T) {
	app := newTestApp()

	jobID, err := app.Submitter.Submit(context.Background(), "user-1", domain.ProgramRequest{
		Goal:        "strength",
		DaysPerWeek: 3,
		Experience:  "beginner",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	rr := httptest.NewRecorder()
	app.ProgramStatus(rr, statusRequest(jobID, "user-2"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func statusRequest(jobID, userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/programs/"+jobID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", jobID)
	ctx := context.WithValue(authedContext(userID), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

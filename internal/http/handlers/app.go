package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"coach-server/internal/domain"
	"coach-server/internal/middleware"
	"coach-server/internal/pipeline"
	"coach-server/internal/providers/plan"
	"coach-server/internal/recommend"
)

type App struct {
	Logger      zerolog.Logger
	Submitter   *pipeline.Submitter
	Jobs        domain.JobRepository
	Profiles    domain.ProfileRepository
	Workouts    domain.WorkoutRepository
	Cache       *recommend.Store
	Recommender plan.Generator

	validate *validator.Validate
}

func NewApp(logger zerolog.Logger) *App {
	return &App{Logger: logger, validate: domain.NewValidator()}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": msg},
	})
}

func (a *App) validationError(w http.ResponseWriter, fields []domain.FieldError) {
	a.json(w, http.StatusUnprocessableEntity, map[string]any{
		"error": map[string]any{
			"code":    "validation_failed",
			"message": "invalid request",
			"fields":  fields,
		},
	})
}

// validateStruct runs the shared validator and maps failures onto JSON field
// names. A nil slice means the value passed.
func (a *App) validateStruct(v any) []domain.FieldError {
	err := a.validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []domain.FieldError{{Field: "", Code: "invalid", Message: err.Error()}}
	}
	out := make([]domain.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, domain.FieldError{
			Field:   fe.Field(),
			Code:    fe.Tag(),
			Message: "failed " + fe.Tag() + " validation",
		})
	}
	return out
}

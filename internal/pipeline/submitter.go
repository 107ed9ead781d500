// Package pipeline implements the asynchronous generation pipeline: job
// submission, the worker that drives the status lifecycle, and the
// caller-side poller that awaits a terminal state.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"coach-server/internal/domain"
	"coach-server/internal/telemetry"
)

// Dispatcher publishes a job id for out-of-band worker pickup.
type Dispatcher interface {
	Publish(ctx context.Context, jobID string) error
}

// Submitter validates program requests and creates pending jobs. It never
// blocks on generation: the only work done inline is a validation pass and a
// single insert.
type Submitter struct {
	jobs     domain.JobRepository
	dispatch Dispatcher
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewSubmitter(jobs domain.JobRepository, dispatch Dispatcher, logger zerolog.Logger) *Submitter {
	return &Submitter{jobs: jobs, dispatch: dispatch, validate: domain.NewValidator(), logger: logger}
}

// Submit validates the request and persists a pending job, returning its id.
// A *domain.ValidationError means nothing was persisted. Dispatch publish
// failures are logged, not returned: the worker's pending sweep guarantees
// eventual pickup.
func (s *Submitter) Submit(ctx context.Context, ownerID string, req domain.ProgramRequest) (string, error) {
	if ownerID == "" {
		return "", domain.ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return "", fmt.Errorf("validate request: %w", err)
		}
		return "", toValidationError(err)
	}

	// Marshaling the validated struct both canonicalizes the snapshot and
	// severs it from any memory the caller might mutate afterwards.
	snapshot, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("snapshot request: %w", err)
	}

	job := &domain.GenerationJob{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Status:        domain.JobStatusPending,
		InputSnapshot: snapshot,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	telemetry.JobsSubmitted.Inc()

	if err := s.dispatch.Publish(ctx, job.ID); err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("submitter: dispatch publish failed, sweep will pick up")
	}
	s.logger.Info().Str("job_id", job.ID).Str("owner_id", ownerID).Msg("submitter: job accepted")
	return job.ID, nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, domain.FieldError{
			Field:   fe.Field(),
			Code:    fe.Tag(),
			Message: validationMessage(fe),
		})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

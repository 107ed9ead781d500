package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"coach-server/internal/domain"
	"coach-server/internal/providers/plan"
	"coach-server/internal/telemetry"
)

// JobSource delivers dispatched job ids to the worker.
type JobSource interface {
	Next(ctx context.Context, timeout time.Duration) (string, error)
}

// WorkerOptions tunes the worker loop.
type WorkerOptions struct {
	// GenerationTimeout bounds one generator invocation. A job whose
	// generation exceeds it fails with code "timeout".
	GenerationTimeout time.Duration
	// SweepInterval controls how often pending jobs with lost dispatch
	// messages are reclaimed.
	SweepInterval time.Duration
	// ReceiveTimeout is how long one queue receive blocks.
	ReceiveTimeout time.Duration
}

const (
	defaultGenerationTimeout = 90 * time.Second
	defaultSweepInterval     = 30 * time.Second
	defaultReceiveTimeout    = 2 * time.Second
)

// Worker consumes dispatched jobs, drives them through the status lifecycle,
// and guarantees exactly one terminal write per claimed job. Claiming is a
// conditional pending -> processing transition, so duplicate dispatch
// deliveries and concurrent workers cannot double-process a job.
type Worker struct {
	jobs   domain.JobRepository
	source JobSource
	gen    plan.Generator
	logger zerolog.Logger
	opts   WorkerOptions
}

func NewWorker(jobs domain.JobRepository, source JobSource, gen plan.Generator, logger zerolog.Logger, opts WorkerOptions) *Worker {
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = defaultGenerationTimeout
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	if opts.ReceiveTimeout <= 0 {
		opts.ReceiveTimeout = defaultReceiveTimeout
	}
	return &Worker{jobs: jobs, source: source, gen: gen, logger: logger, opts: opts}
}

// Run consumes jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("worker: started")
	lastSweep := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if time.Since(lastSweep) >= w.opts.SweepInterval {
			w.sweepPending(ctx)
			lastSweep = time.Now()
		}

		jobID, err := w.source.Next(ctx, w.opts.ReceiveTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			w.logger.Error().Err(err).Msg("worker: receive failed")
			continue
		}
		if jobID == "" {
			continue
		}
		w.handleDispatch(ctx, jobID)
	}
}

func (w *Worker) handleDispatch(ctx context.Context, jobID string) {
	job, err := w.jobs.Claim(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotClaimable) {
			// Duplicate delivery or a job already swept up. At-least-once
			// dispatch makes this normal.
			w.logger.Debug().Str("job_id", jobID).Msg("worker: job not claimable, skipping")
			return
		}
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("worker: claim failed")
		return
	}
	w.process(ctx, job)
}

// sweepPending reclaims jobs whose dispatch message never arrived. It drains
// until no pending job remains so a backlog clears in one pass.
func (w *Worker) sweepPending(ctx context.Context) {
	for {
		job, err := w.jobs.ClaimNextPending(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				w.logger.Error().Err(err).Msg("worker: pending sweep failed")
			}
			return
		}
		w.logger.Info().Str("job_id", job.ID).Msg("worker: swept up pending job")
		w.process(ctx, job)
	}
}

// process runs the generator for one claimed job and writes exactly one
// terminal state.
func (w *Worker) process(ctx context.Context, job *domain.GenerationJob) {
	w.logger.Info().Str("job_id", job.ID).Msg("worker: processing job")
	telemetry.JobsInFlight.Inc()
	defer telemetry.JobsInFlight.Dec()

	genCtx, cancel := context.WithTimeout(ctx, w.opts.GenerationTimeout)
	defer cancel()

	started := time.Now()
	result, err := w.gen.Generate(genCtx, job.InputSnapshot)
	telemetry.GenerationSeconds.Observe(time.Since(started).Seconds())
	if err != nil {
		w.fail(ctx, job.ID, classifyGenerationError(err))
		return
	}

	if err := validateProgramResult(result); err != nil {
		w.fail(ctx, job.ID, domain.JobError{
			Code:    "invalid_output",
			Message: fmt.Sprintf("generator returned an unusable program: %v", err),
		})
		return
	}

	if err := w.jobs.Complete(ctx, job.ID, result); err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: terminal write failed")
		return
	}
	telemetry.JobsCompleted.Inc()
	w.logger.Info().Str("job_id", job.ID).Dur("took", time.Since(started)).Msg("worker: job completed")
}

func (w *Worker) fail(ctx context.Context, jobID string, jobErr domain.JobError) {
	if err := w.jobs.Fail(ctx, jobID, jobErr); err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("worker: terminal write failed")
		return
	}
	telemetry.JobsFailed.Inc()
	w.logger.Warn().Str("job_id", jobID).Str("code", jobErr.Code).Msg("worker: job failed")
}

func classifyGenerationError(err error) domain.JobError {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.JobError{Code: "timeout", Message: "generation did not finish in time"}
	}
	return domain.JobError{Code: "generation_failed", Message: "the program generator failed; submit a new request to retry"}
}

func validateProgramResult(result json.RawMessage) error {
	var program domain.TrainingProgram
	if err := json.Unmarshal(result, &program); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return program.Validate()
}

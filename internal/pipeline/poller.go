package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"coach-server/internal/domain"
)

// ErrAwaitTimeout is returned when the maximum wait elapses without the job
// reaching a terminal state. It is distinct from a failed job: the job may
// still be running and may be re-awaited.
var ErrAwaitTimeout = errors.New("await timeout: job not terminal")

// StatusReader is the read-only view the poller needs. It never writes.
type StatusReader interface {
	GetForOwner(ctx context.Context, id, ownerID string) (*domain.GenerationJob, error)
}

// AwaitOptions tunes one Await call.
type AwaitOptions struct {
	// Interval between status reads. Defaults to 5s.
	Interval time.Duration
	// MaxWait bounds the total wait. Defaults to 5m.
	MaxWait time.Duration
}

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxWait      = 5 * time.Minute
)

// Outcome is the terminal observation of a job.
type Outcome struct {
	Status domain.JobStatus
	Result json.RawMessage
	Err    *domain.JobError
}

// Poller drives caller-visible completion by re-reading job status until it
// is terminal, the max wait elapses, or the context is cancelled.
type Poller struct {
	reader StatusReader
	logger zerolog.Logger
}

func NewPoller(reader StatusReader, logger zerolog.Logger) *Poller {
	return &Poller{reader: reader, logger: logger}
}

// Await polls the job at a fixed interval. It returns the terminal Outcome,
// ErrAwaitTimeout when MaxWait elapses first, or the context error on
// cancellation. Waiting is cooperative: between reads the goroutine parks on
// a timer and cancellation takes effect at the next wake-up.
func (p *Poller) Await(ctx context.Context, jobID, ownerID string, opts AwaitOptions) (*Outcome, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	maxWait := opts.MaxWait
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}
	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastRank := -1
	for {
		job, err := p.reader.GetForOwner(ctx, jobID, ownerID)
		if err != nil {
			return nil, fmt.Errorf("read job %s: %w", jobID, err)
		}
		rank := job.Status.Rank()
		if rank < lastRank {
			// The store orders transitions; a regression here means a bug
			// upstream, not a state the caller should ever act on.
			return nil, fmt.Errorf("job %s: status regressed to %s: %w", jobID, job.Status, domain.ErrInvalidTransition)
		}
		lastRank = rank

		switch job.Status {
		case domain.JobStatusCompleted:
			return &Outcome{Status: job.Status, Result: job.Result}, nil
		case domain.JobStatusFailed:
			return &Outcome{Status: job.Status, Err: job.Error}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			p.logger.Debug().Str("job_id", jobID).Msg("poller: gave up waiting")
			return nil, ErrAwaitTimeout
		case <-ticker.C:
		}
	}
}

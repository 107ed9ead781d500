package domain

import (
	"context"
	"encoding/json"
)

// JobRepository defines persistence for generation jobs. Status writes are
// conditional so the forward-only lifecycle is enforced at the storage layer,
// not by caller discipline.
type JobRepository interface {
	// Create inserts a new job. The caller sets status to pending.
	Create(ctx context.Context, job *GenerationJob) error

	// GetForOwner fetches a job, returning ErrNotFound both for missing ids
	// and for jobs owned by someone else.
	GetForOwner(ctx context.Context, id, ownerID string) (*GenerationJob, error)

	// Claim transitions pending -> processing and returns the claimed job.
	// Returns ErrNotClaimable if the job is missing or no longer pending, so
	// duplicate dispatches are skipped instead of double-processed.
	Claim(ctx context.Context, id string) (*GenerationJob, error)

	// ClaimNextPending claims the oldest pending job, for sweeping up jobs
	// whose dispatch message was lost. Returns ErrNotFound when none exist.
	ClaimNextPending(ctx context.Context) (*GenerationJob, error)

	// Complete transitions processing -> completed, writing the result
	// atomically with the status. Returns ErrInvalidTransition if the job is
	// not processing.
	Complete(ctx context.Context, id string, result json.RawMessage) error

	// Fail transitions processing -> failed, writing the error atomically
	// with the status. Returns ErrInvalidTransition if the job is not
	// processing.
	Fail(ctx context.Context, id string, jobErr JobError) error
}

// ProfileRepository persists onboarding answers.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *Profile) error
	GetByOwner(ctx context.Context, ownerID string) (*Profile, error)
}

// WorkoutRepository persists logged training sessions.
type WorkoutRepository interface {
	Create(ctx context.Context, entry *WorkoutEntry) error
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]WorkoutEntry, error)
}

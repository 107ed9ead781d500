package repo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coach-server/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository.
//
// Every status write is a conditional UPDATE guarded by the current status,
// so the forward-only lifecycle holds even with concurrent workers or
// duplicate dispatch deliveries.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.GenerationJob) error {
	query := `
INSERT INTO generation_jobs (id, owner_id, status, input_snapshot, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now());
`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.OwnerID,
		job.Status,
		[]byte(job.InputSnapshot),
	)
	return err
}

// GetForOwner fetches a job scoped to its owner. A job belonging to another
// owner is indistinguishable from a missing one.
func (r *JobRepositoryPG) GetForOwner(ctx context.Context, id, ownerID string) (*domain.GenerationJob, error) {
	query := `
SELECT id, owner_id, status, input_snapshot, result, error_code, error_message, created_at, updated_at
FROM generation_jobs
WHERE id = $1 AND owner_id = $2;
`
	return r.scanJob(r.pool.QueryRow(ctx, query, id, ownerID))
}

// Claim transitions a pending job to processing and returns its snapshot.
func (r *JobRepositoryPG) Claim(ctx context.Context, id string) (*domain.GenerationJob, error) {
	query := `
UPDATE generation_jobs
SET status = 'processing', updated_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING id, owner_id, status, input_snapshot, result, error_code, error_message, created_at, updated_at;
`
	job, err := r.scanJob(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotClaimable
	}
	return job, err
}

// ClaimNextPending claims the oldest pending job. SKIP LOCKED keeps
// concurrent sweepers from fighting over the same row.
func (r *JobRepositoryPG) ClaimNextPending(ctx context.Context) (*domain.GenerationJob, error) {
	query := `
WITH next_job AS (
    SELECT id
    FROM generation_jobs
    WHERE status = 'pending'
    ORDER BY created_at ASC
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
UPDATE generation_jobs
SET status = 'processing', updated_at = now()
WHERE id IN (SELECT id FROM next_job)
RETURNING id, owner_id, status, input_snapshot, result, error_code, error_message, created_at, updated_at;
`
	return r.scanJob(r.pool.QueryRow(ctx, query))
}

// Complete writes the result atomically with the terminal status.
func (r *JobRepositoryPG) Complete(ctx context.Context, id string, result json.RawMessage) error {
	query := `
UPDATE generation_jobs
SET status = 'completed', result = $2, updated_at = now()
WHERE id = $1 AND status = 'processing';
`
	tag, err := r.pool.Exec(ctx, query, id, []byte(result))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// Fail writes the error atomically with the terminal status.
func (r *JobRepositoryPG) Fail(ctx context.Context, id string, jobErr domain.JobError) error {
	query := `
UPDATE generation_jobs
SET status = 'failed', error_code = $2, error_message = $3, updated_at = now()
WHERE id = $1 AND status = 'processing';
`
	tag, err := r.pool.Exec(ctx, query, id, jobErr.Code, jobErr.Message)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *JobRepositoryPG) scanJob(row pgx.Row) (*domain.GenerationJob, error) {
	var job domain.GenerationJob
	var snapshot, result []byte
	var errCode, errMessage *string
	if err := row.Scan(
		&job.ID,
		&job.OwnerID,
		&job.Status,
		&snapshot,
		&result,
		&errCode,
		&errMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	job.InputSnapshot = json.RawMessage(snapshot)
	if len(result) > 0 {
		job.Result = json.RawMessage(result)
	}
	if errCode != nil || errMessage != nil {
		job.Error = &domain.JobError{}
		if errCode != nil {
			job.Error.Code = *errCode
		}
		if errMessage != nil {
			job.Error.Message = *errMessage
		}
	}
	return &job, nil
}

package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"coach-server/internal/domain"
)

const defaultWorkoutListLimit = 50

// WorkoutRepositoryPG implements domain.WorkoutRepository.
type WorkoutRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewWorkoutRepository creates a new workout repository backed by PostgreSQL.
func NewWorkoutRepository(pool *pgxpool.Pool) *WorkoutRepositoryPG {
	return &WorkoutRepositoryPG{pool: pool}
}

// Create inserts a logged workout.
func (r *WorkoutRepositoryPG) Create(ctx context.Context, entry *domain.WorkoutEntry) error {
	query := `
INSERT INTO workouts (id, owner_id, activity, duration_minutes, intensity, notes, performed_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now());
`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.OwnerID,
		entry.Activity,
		entry.DurationMinutes,
		entry.Intensity,
		entry.Notes,
		entry.PerformedAt,
	)
	return err
}

// ListByOwner returns the most recent workouts for an owner, newest first.
func (r *WorkoutRepositoryPG) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.WorkoutEntry, error) {
	if limit <= 0 || limit > defaultWorkoutListLimit {
		limit = defaultWorkoutListLimit
	}
	query := `
SELECT id, owner_id, activity, duration_minutes, intensity, notes, performed_at, created_at
FROM workouts
WHERE owner_id = $1
ORDER BY performed_at DESC
LIMIT $2;
`
	rows, err := r.pool.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.WorkoutEntry
	for rows.Next() {
		var e domain.WorkoutEntry
		if err := rows.Scan(
			&e.ID,
			&e.OwnerID,
			&e.Activity,
			&e.DurationMinutes,
			&e.Intensity,
			&e.Notes,
			&e.PerformedAt,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

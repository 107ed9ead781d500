package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coach-server/internal/domain"
)

// ProfileRepositoryPG implements domain.ProfileRepository.
type ProfileRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository backed by PostgreSQL.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepositoryPG {
	return &ProfileRepositoryPG{pool: pool}
}

// Upsert writes the onboarding answers for an owner, last write wins.
func (r *ProfileRepositoryPG) Upsert(ctx context.Context, profile *domain.Profile) error {
	query := `
INSERT INTO profiles (owner_id, goal, experience, days_per_week, equipment, birth_year, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (owner_id) DO UPDATE
SET goal = EXCLUDED.goal,
    experience = EXCLUDED.experience,
    days_per_week = EXCLUDED.days_per_week,
    equipment = EXCLUDED.equipment,
    birth_year = EXCLUDED.birth_year,
    updated_at = now();
`
	_, err := r.pool.Exec(ctx, query,
		profile.OwnerID,
		profile.Goal,
		profile.Experience,
		profile.DaysPerWeek,
		profile.Equipment,
		profile.BirthYear,
	)
	return err
}

// GetByOwner fetches the profile for an owner.
func (r *ProfileRepositoryPG) GetByOwner(ctx context.Context, ownerID string) (*domain.Profile, error) {
	query := `
SELECT owner_id, goal, experience, days_per_week, equipment, birth_year, updated_at
FROM profiles
WHERE owner_id = $1;
`
	row := r.pool.QueryRow(ctx, query, ownerID)
	var p domain.Profile
	if err := row.Scan(
		&p.OwnerID,
		&p.Goal,
		&p.Experience,
		&p.DaysPerWeek,
		&p.Equipment,
		&p.BirthYear,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

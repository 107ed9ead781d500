package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS generation_jobs (
		id uuid PRIMARY KEY,
		owner_id text NOT NULL,
		status text NOT NULL,
		input_snapshot jsonb NOT NULL,
		result jsonb,
		error_code text,
		error_message text,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now(),
		CONSTRAINT generation_jobs_status_check CHECK (status IN ('pending', 'processing', 'completed', 'failed')),
		CONSTRAINT generation_jobs_terminal_payload_check CHECK (
			(status = 'completed' AND result IS NOT NULL AND error_message IS NULL)
			OR (status = 'failed' AND error_message IS NOT NULL AND result IS NULL)
			OR (status IN ('pending', 'processing') AND result IS NULL AND error_message IS NULL)
		)
	)`,
	`CREATE INDEX IF NOT EXISTS generation_jobs_pending_idx
		ON generation_jobs (created_at) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS generation_jobs_owner_idx
		ON generation_jobs (owner_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		owner_id text PRIMARY KEY,
		goal text NOT NULL DEFAULT '',
		experience text NOT NULL DEFAULT '',
		days_per_week int NOT NULL DEFAULT 0,
		equipment text[] NOT NULL DEFAULT '{}',
		birth_year int NOT NULL DEFAULT 0,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS workouts (
		id uuid PRIMARY KEY,
		owner_id text NOT NULL,
		activity text NOT NULL,
		duration_minutes int NOT NULL,
		intensity text NOT NULL DEFAULT '',
		notes text NOT NULL DEFAULT '',
		performed_at timestamptz NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS workouts_owner_idx
		ON workouts (owner_id, performed_at DESC)`,
}

// Migrate applies the schema. Statements are idempotent so repeated startup
// runs are safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

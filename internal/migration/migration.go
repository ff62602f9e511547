package migration

import (
	"context"

	"gora/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.1.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create runs table", err)
	}

	if err := r.createRunModelsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create run_models table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			kind VARCHAR(20) NOT NULL,
			input_name TEXT NOT NULL DEFAULT '',
			data_hash VARCHAR(64) NOT NULL DEFAULT '',
			reference_model TEXT NOT NULL DEFAULT '',
			report TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return err
	}
	// Tables created before fingerprints existed
	_, err = db.ExecContext(ctx, `ALTER TABLE runs ADD COLUMN IF NOT EXISTS data_hash VARCHAR(64) NOT NULL DEFAULT ''`)
	return err
}

func (r *MigrationRunner) createRunModelsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS run_models (
			run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			model_id INTEGER NOT NULL DEFAULT 0,
			name TEXT NOT NULL,
			level INTEGER NOT NULL DEFAULT 0,
			progenitor TEXT NOT NULL DEFAULT '',
			stats JSONB NOT NULL DEFAULT '{}',
			PRIMARY KEY (run_id, position)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_data_hash ON runs(data_hash);
		CREATE INDEX IF NOT EXISTS idx_run_models_name ON run_models(name);
	`)
	return err
}

package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"gora/domain/core"
	"gora/internal/errors"
	"gora/models"
	"gora/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// RunRepository implements ports.RunRepository for PostgreSQL
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepository{db: db}
}

// SaveRun inserts the run and its models in one transaction
func (r *RunRepository) SaveRun(ctx context.Context, run *models.Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO runs (id, kind, input_name, data_hash, reference_model, report, created_at)
		VALUES (:id, :kind, :input_name, :data_hash, :reference_model, :report, :created_at)
	`, run)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return errors.InvalidInput(fmt.Sprintf("run %s already exists", run.ID), err)
		}
		return errors.DatabaseError("failed to insert run", err)
	}

	for i := range run.Models {
		m := &run.Models[i]
		m.RunID = run.ID
		m.Position = i
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO run_models (run_id, position, model_id, name, level, progenitor, stats)
			VALUES (:run_id, :position, :model_id, :name, :level, :progenitor, :stats)
		`, m)
		if err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert model %s", m.Name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit run", err)
	}
	return nil
}

// GetRun retrieves a run and its models by ID
func (r *RunRepository) GetRun(ctx context.Context, id core.RunID) (*models.Run, error) {
	var run models.Run
	err := r.db.GetContext(ctx, &run, `
		SELECT id, kind, input_name, data_hash, reference_model, report, created_at
		FROM runs
		WHERE id = $1
	`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("run " + id.String())
		}
		return nil, errors.DatabaseError("failed to get run", err)
	}

	err = r.db.SelectContext(ctx, &run.Models, `
		SELECT run_id, position, model_id, name, level, progenitor, stats
		FROM run_models
		WHERE run_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, errors.DatabaseError("failed to get run models", err)
	}
	return &run, nil
}

// ListRuns returns recent runs, newest first
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `
		SELECT id, kind, input_name, data_hash, reference_model, report, created_at
		FROM runs
		ORDER BY created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var runs []*models.Run
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}
	return runs, nil
}

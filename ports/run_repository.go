package ports

import (
	"context"

	"gora/domain/core"
	"gora/models"
)

// RunRepository stores finished runs and the models they report.
type RunRepository interface {
	// SaveRun stores the run and its models.
	SaveRun(ctx context.Context, run *models.Run) error

	// GetRun returns a run with its models, or a NOT_FOUND error.
	GetRun(ctx context.Context, id core.RunID) (*models.Run, error)

	// ListRuns returns the most recent runs, newest first, without their models.
	ListRuns(ctx context.Context, limit int) ([]*models.Run, error)
}

package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gora/domain/core"
	apperrors "gora/internal/errors"
	"gora/models"
)

// Mock implementations for testing
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) SaveRun(ctx context.Context, run *models.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) GetRun(ctx context.Context, id core.RunID) (*models.Run, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Run), args.Error(1)
}

func (m *MockRunRepository) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.Run), args.Error(1)
}

func TestFitService_SavesRun(t *testing.T) {
	repo := new(MockRunRepository)
	repo.On("SaveRun", mock.Anything, mock.MatchedBy(func(run *models.Run) bool {
		return run.Kind == core.RunFit && len(run.Models) == 1 && run.Models[0].Name == "AB:C"
	})).Return(nil).Once()

	svc := NewFitService(DefaultSettings(), repo, quietLogger())
	_, err := svc.Fit(context.Background(), abcRequest(t, false, "-m", "AB:C"))
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSearchService_SaveFailure(t *testing.T) {
	repo := new(MockRunRepository)
	repo.On("SaveRun", mock.Anything, mock.AnythingOfType("*models.Run")).
		Return(apperrors.DatabaseError("insert failed", nil)).Once()

	svc := NewSearchService(DefaultSettings(), repo, quietLogger())
	res, err := svc.Search(context.Background(), abcRequest(t, false, "-l", "1"))
	assert.Nil(t, res)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
	repo.AssertExpectations(t)
}

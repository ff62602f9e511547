package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gora/domain/model"
	"gora/internal"
	"gora/internal/config"
	apperrors "gora/internal/errors"
	"gora/internal/manager"
	"gora/internal/options"
	"gora/internal/testkit"
)

func quietLogger() *internal.Logger { return internal.NewLogger(internal.LogLevelError) }

func abcRequest(t *testing.T, directed bool, args ...string) Request {
	t.Helper()
	data, err := testkit.ABCTable(directed)
	require.NoError(t, err)
	opts := options.NewStandard()
	require.NoError(t, opts.SetOptions(args))
	return Request{Name: "abc", Data: data, Options: opts}
}

func TestFitService_Fit(t *testing.T) {
	repo := testkit.NewInMemoryRunRepository()
	svc := NewFitService(DefaultSettings(), repo, quietLogger())

	res, err := svc.Fit(context.Background(), abcRequest(t, false, "-m", "AB:BC", "-m", "A:B:C"))
	require.NoError(t, err)
	require.Len(t, res.Models, 2)

	report := string(res.Markdown)
	assert.Contains(t, report, "### Basic statistics")
	assert.Contains(t, report, "### Model AB:BC")
	assert.Contains(t, report, "### Model A:B:C")

	run := res.Run
	assert.Equal(t, "abc", run.InputName)
	assert.Equal(t, abcRequest(t, false).Data.Fingerprint(), run.DataHash)
	assert.Equal(t, "A:B:C", run.RefModel)
	require.Len(t, run.Models, 2)
	assert.Equal(t, "AB:BC", run.Models[0].Name)
	assert.Equal(t, 1, run.Models[0].ModelID)
	for _, attr := range []string{model.AttrLR, model.AttrAlpha, model.AttrP2, model.AttrInformation, model.AttrDDF} {
		assert.Contains(t, run.Models[0].Stats, attr)
	}
	assert.NotContains(t, run.Models[0].Stats, model.AttrCondH)
	assert.InDelta(t, 0.0, run.Models[1].Stats[model.AttrDLR], 1e-9, "the bottom is the reference")

	for _, mdl := range res.Models {
		assert.Nil(t, mdl.FitTable(), "fit tables are released")
	}

	stored, err := repo.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Report, stored.Report)
	assert.Len(t, stored.Models, 2)
}

func TestFitService_DirectedStatistics(t *testing.T) {
	svc := NewFitService(DefaultSettings(), nil, quietLogger())
	res, err := svc.Fit(context.Background(), abcRequest(t, true, "-m", "IV:AC", "--percent-correct", "--bp-statistics"))
	require.NoError(t, err)

	stats := res.Run.Models[0].Stats
	for _, attr := range []string{model.AttrCondH, model.AttrCondPctDH, model.AttrPctCorrectData, model.AttrBPH, model.AttrBPDAIC} {
		assert.Contains(t, stats, attr)
	}
	assert.Equal(t, "IV:AC", res.Run.Models[0].Name)
}

func TestFitService_Errors(t *testing.T) {
	svc := NewFitService(DefaultSettings(), nil, quietLogger())
	ctx := context.Background()

	_, err := svc.Fit(ctx, abcRequest(t, false))
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = svc.Fit(ctx, abcRequest(t, false, "-m", "AB"))
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = svc.Fit(ctx, abcRequest(t, false, "-m", "AB:C", "--reference-model", "XY"))
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = svc.Fit(ctx, Request{})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Fit(cancelled, abcRequest(t, false, "-m", "AB:C"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSettingsFromConfig(t *testing.T) {
	s := SettingsFromConfig(config.AnalysisConfig{
		DDFMethod:        1,
		ReferenceModel:   "top",
		Filter:           "alpha < 0.05",
		SortAttr:         "bic",
		SortDirection:    "ascending",
		IPFMaxIterations: 20,
		SearchWidth:      5,
	})
	assert.Equal(t, manager.DDFMethodLegacy, s.Manager.DDFMethod)
	assert.Equal(t, "top", s.Manager.RefModelName)
	assert.Equal(t, 20, s.Manager.IPF.MaxIterations)
	assert.Equal(t, manager.DefaultConfig().IPF.Tolerance, s.Manager.IPF.Tolerance)
	assert.Equal(t, "alpha < 0.05", s.Filter)
	assert.Equal(t, "bic", s.SortAttr)
	assert.Equal(t, 5, s.SearchWidth)
	assert.Equal(t, 7, s.SearchLevels)
}

func TestFitService_SettingsApply(t *testing.T) {
	settings := DefaultSettings()
	settings.Manager.RefModelName = "top"
	svc := NewFitService(settings, nil, quietLogger())

	res, err := svc.Fit(context.Background(), abcRequest(t, false, "-m", "AB:C"))
	require.NoError(t, err)
	assert.Equal(t, "ABC", res.Run.RefModel)

	res, err = svc.Fit(context.Background(), abcRequest(t, false, "-m", "AB:C", "-r", "bottom"))
	require.NoError(t, err)
	assert.Equal(t, "A:B:C", res.Run.RefModel, "run options override the settings")
}

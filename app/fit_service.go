package app

import (
	"bytes"
	"context"

	"gora/domain/core"
	"gora/domain/model"
	"gora/internal"
	"gora/internal/errors"
	"gora/internal/options"
	"gora/ports"
)

// FitService fits the models a run names and reports their statistics.
type FitService struct {
	analysis
}

// NewFitService creates a fit service. repo may be nil to skip persistence.
func NewFitService(settings Settings, repo ports.RunRepository, logger *internal.Logger) *FitService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &FitService{analysis{settings: settings, repo: repo, logger: logger.Named("fit")}}
}

// Fit validates and fits every "short-model" of the request. The report starts with
// the basic statistics of the data followed by one fit report per model.
func (s *FitService) Fit(ctx context.Context, req Request) (*Result, error) {
	res, err := s.fit(ctx, req)
	if err != nil {
		return nil, s.fail(core.RunFit, err)
	}
	return res, nil
}

func (s *FitService) fit(ctx context.Context, req Request) (*Result, error) {
	m, err := s.newManager(req)
	if err != nil {
		return nil, err
	}
	opts := req.Options
	if opts == nil {
		opts = options.NewStandard()
	}
	names := opts.GetAll(options.OptShortModel)
	if len(names) == 0 {
		return nil, errors.InvalidInput("no models to fit: set short-model", nil)
	}
	s.logger.Info("fitting %d models from %s", len(names), req.Name)

	var report bytes.Buffer
	report.Write(m.BasicStatisticsMarkdown())

	fitted := make([]*model.Model, 0, len(names))
	for i, name := range names {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		mdl, err := m.MakeModel(name, true)
		if err != nil {
			return nil, errors.InvalidInput("bad model name", err)
		}
		mdl.ID = i + 1
		if err := computeStatistics(m, mdl, opts); err != nil {
			return nil, errors.AnalysisFailed(name, err)
		}
		report.Write(m.FitReportMarkdown(mdl))
		mdl.DeleteFitTable()
		fitted = append(fitted, mdl)
	}
	return s.finish(ctx, core.RunFit, req, m, fitted, &report)
}

package app

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"gora/domain/core"
	"gora/domain/model"
	"gora/domain/table"
	"gora/internal"
	"gora/internal/config"
	"gora/internal/errors"
	"gora/internal/manager"
	"gora/internal/metrics"
	"gora/internal/options"
	"gora/models"
	"gora/ports"
)

// Settings are the analysis defaults a run starts from before its own options apply.
type Settings struct {
	Manager       manager.Config
	Filter        string
	SortAttr      string
	SortDirection string
	SearchWidth   int
	SearchLevels  int
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Manager:       manager.DefaultConfig(),
		SortAttr:      model.AttrInformation,
		SortDirection: "descending",
		SearchWidth:   3,
		SearchLevels:  7,
	}
}

// SettingsFromConfig maps the environment configuration onto run settings.
func SettingsFromConfig(cfg config.AnalysisConfig) Settings {
	s := DefaultSettings()
	s.Manager.DDFMethod = manager.DDFMethod(cfg.DDFMethod)
	s.Manager.InverseNotation = cfg.InverseNotation
	if cfg.ReferenceModel != "" {
		s.Manager.RefModelName = cfg.ReferenceModel
	}
	if cfg.IPFMaxIterations > 0 {
		s.Manager.IPF.MaxIterations = cfg.IPFMaxIterations
	}
	if cfg.IPFTolerance > 0 {
		s.Manager.IPF.Tolerance = cfg.IPFTolerance
	}
	if cfg.MaxStateSpace > 0 {
		s.Manager.IPF.MaxStateSpace = cfg.MaxStateSpace
	}
	s.Filter = cfg.Filter
	if cfg.SortAttr != "" {
		s.SortAttr = cfg.SortAttr
	}
	if cfg.SortDirection != "" {
		s.SortDirection = cfg.SortDirection
	}
	if cfg.SearchWidth > 0 {
		s.SearchWidth = cfg.SearchWidth
	}
	if cfg.SearchLevels > 0 {
		s.SearchLevels = cfg.SearchLevels
	}
	return s
}

// Request is the input of a fit or search run.
type Request struct {
	// Name labels the run, usually the input file name.
	Name    string
	Data    *table.Table
	Options *options.Options
	// Progress, when set, is called after each search level.
	Progress func(Progress)
}

// Progress reports a finished search level.
type Progress struct {
	Level    int    `json:"level"`
	Levels   int    `json:"levels"`
	Searched int    `json:"searched"`
	Kept     int    `json:"kept"`
	Best     string `json:"best,omitempty"`
}

// Result is a finished run.
type Result struct {
	Run      *models.Run
	Manager  *manager.Manager
	Models   []*model.Model
	Markdown []byte
}

// analysis holds what the fit and search services share.
type analysis struct {
	settings Settings
	repo     ports.RunRepository
	logger   *internal.Logger
}

// newManager builds a manager for the request with the settings applied first and the
// request options on top, then builds the reference models.
func (a *analysis) newManager(req Request) (*manager.Manager, error) {
	if req.Data == nil {
		return nil, errors.InvalidInput("no data in request", nil)
	}
	if req.Options == nil {
		req.Options = options.NewStandard()
	}
	m, err := manager.New(req.Data.Vars(), req.Data, a.settings.Manager, a.logger)
	if err != nil {
		return nil, errors.InvalidInput("cannot build manager", err)
	}
	if a.settings.Filter != "" {
		f, err := manager.ParseFilter(a.settings.Filter)
		if err != nil {
			return nil, errors.ConfigInvalid(err.Error())
		}
		if err := m.SetFilter(f.Attr, f.Value, f.Op); err != nil {
			return nil, errors.ConfigInvalid(err.Error())
		}
	}
	if err := m.SetSortAttr(a.settings.SortAttr); err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}
	dir, err := manager.ParseSortDirection(a.settings.SortDirection)
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}
	m.SetSortDirection(dir)

	if err := m.Configure(req.Options); err != nil {
		return nil, errors.InvalidInput("invalid run options", err)
	}
	if err := m.MakeReferenceModels(nil); err != nil {
		return nil, errors.InvalidInput("cannot build reference models", err)
	}
	return m, nil
}

// computeStatistics fits the model and stores every statistic the run reports.
func computeStatistics(m *manager.Manager, mdl *model.Model, opts *options.Options) error {
	if mdl.FitTable() == nil {
		if err := m.MakeFitTable(mdl); err != nil {
			return err
		}
	}
	if err := m.ComputeL2Statistics(mdl); err != nil {
		return err
	}
	if err := m.ComputePearsonStatistics(mdl); err != nil {
		return err
	}
	if m.IsDirected() {
		if err := m.ComputeDependentStatistics(mdl); err != nil {
			return err
		}
		if opts.GetBool(options.OptPercentCorrect) {
			if err := m.ComputePercentCorrect(mdl); err != nil {
				return err
			}
		}
	}
	if opts.GetBool(options.OptBPStatistics) {
		if err := m.ComputeBPStatistics(mdl); err != nil {
			return err
		}
	}
	return nil
}

func modelResult(m *manager.Manager, mdl *model.Model) models.ModelResult {
	res := models.ModelResult{
		ModelID: mdl.ID,
		Name:    m.ModelName(mdl),
		Level:   mdl.Level,
		Stats:   models.Stats(mdl.Attributes()),
	}
	if mdl.Progenitor != nil {
		res.Progenitor = m.ModelName(mdl.Progenitor)
	}
	return res
}

// finish assembles the run, stores it when a repository is configured and records the
// outcome.
func (a *analysis) finish(ctx context.Context, kind core.RunKind, req Request, m *manager.Manager, mdls []*model.Model, report *bytes.Buffer) (*Result, error) {
	run := &models.Run{
		ID:        core.NewRunID(),
		Kind:      kind,
		InputName: req.Name,
		DataHash:  req.Data.Fingerprint(),
		RefModel:  m.ModelName(m.RefModel()),
		Report:    report.String(),
		CreatedAt: time.Now().UTC(),
		Models:    make([]models.ModelResult, 0, len(mdls)),
	}
	for _, mdl := range mdls {
		run.Models = append(run.Models, modelResult(m, mdl))
	}
	if a.repo != nil {
		if err := a.repo.SaveRun(ctx, run); err != nil {
			metrics.Runs.WithLabelValues(string(kind), "error").Inc()
			return nil, errors.Wrap(err, "failed to save run")
		}
	}
	metrics.Runs.WithLabelValues(string(kind), "ok").Inc()
	a.logger.Info("%s run %s finished: %d models", kind, run.ID, len(mdls))
	return &Result{Run: run, Manager: m, Models: mdls, Markdown: report.Bytes()}, nil
}

func (a *analysis) fail(kind core.RunKind, err error) error {
	metrics.Runs.WithLabelValues(string(kind), "error").Inc()
	a.logger.Warn("%s run failed: %v", kind, err)
	return err
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run cancelled: %w", err)
	}
	return nil
}

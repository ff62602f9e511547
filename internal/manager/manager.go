// Package manager generates the model lattice of a reconstructability analysis and
// computes the statistics that rank its models.
//
// A Manager owns one analysis run: the normalized input table, the relation and model
// caches, the reference models and the first-come AIC/BIC baselines. It is not safe for
// concurrent use.
package manager

import (
	"fmt"
	"strings"

	"gora/domain/core"
	"gora/domain/model"
	"gora/domain/table"
	"gora/domain/variable"
	"gora/internal"
	"gora/internal/ipf"
	"gora/internal/options"
)

// DDFMethod selects how degrees-of-freedom differences are counted.
type DDFMethod int

const (
	// DDFMethodNew takes the difference of the two models' degrees of freedom.
	DDFMethodNew DDFMethod = iota
	// DDFMethodLegacy counts every interaction term present in only one model.
	DDFMethodLegacy
)

func (d DDFMethod) String() string {
	switch d {
	case DDFMethodNew:
		return "new"
	case DDFMethodLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("DDFMethod(%d)", int(d))
	}
}

// SystemMode tells whether the variables include dependent variables.
type SystemMode int

const (
	ModeUndirected SystemMode = iota
	ModeDirected
)

func (s SystemMode) String() string {
	if s == ModeDirected {
		return "directed"
	}
	return "neutral"
}

// SortDirection orders ranked models.
type SortDirection int

const (
	SortDescending SortDirection = iota
	SortAscending
)

// ParseSortDirection accepts "ascending" or "descending".
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascending", "asc":
		return SortAscending, nil
	case "descending", "desc", "":
		return SortDescending, nil
	}
	return SortDescending, fmt.Errorf("%w: sort direction %q", core.ErrUnknownOption, s)
}

func (s SortDirection) String() string {
	if s == SortAscending {
		return "ascending"
	}
	return "descending"
}

// Config carries the settings a manager reads once at initialization.
type Config struct {
	DDFMethod       DDFMethod
	InverseNotation bool
	// RefModelName is "top", "bottom", "default" or a model name.
	RefModelName string
	IPF          ipf.Options
	HTML         bool
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		DDFMethod:    DDFMethodNew,
		RefModelName: "default",
		IPF:          ipf.DefaultOptions(),
	}
}

type baseline struct {
	set      bool
	aic, bic float64
}

// Manager is the lattice generator and statistics engine of one analysis run.
type Manager struct {
	cfg        Config
	mode       SystemMode
	vars       *variable.List
	data       *table.Table
	sampleSize float64
	logger     *internal.Logger

	relations map[string]*model.Relation
	models    map[string]*model.Model
	dataH     map[string]float64

	top, bottom, ref *model.Model
	refEpoch         int
	refer, referBP   baseline

	filter   *Filter
	sortAttr string
	sortDir  SortDirection
}

// New creates a manager over a frequency (or probability) table. The table is copied
// and normalized; its total becomes the sample size.
func New(vars *variable.List, input *table.Table, cfg Config, logger *internal.Logger) (*Manager, error) {
	if vars == nil || input == nil {
		return nil, core.NewDataError(0, "manager needs variables and an input table")
	}
	data := input.Copy()
	n, err := data.Normalize()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.RefModelName == "" {
		cfg.RefModelName = "default"
	}
	mode := ModeUndirected
	if vars.IsDirected() {
		mode = ModeDirected
	}
	return &Manager{
		cfg:        cfg,
		mode:       mode,
		vars:       vars,
		data:       data,
		sampleSize: n,
		logger:     logger.Named("manager"),
		relations:  make(map[string]*model.Relation),
		models:     make(map[string]*model.Model),
		dataH:      make(map[string]float64),
		sortAttr:   model.AttrInformation,
		sortDir:    SortDescending,
	}, nil
}

// Configure reads the run options: ddf-method, inverse-notation, reference-model,
// filter, sort-by, sort-direction, the IPF limits and html. Options that are not set
// keep their current values. The reference model name takes effect at the next
// MakeReferenceModels.
func (m *Manager) Configure(opts *options.Options) error {
	if v, ok := opts.GetInt(options.OptDDFMethod); ok {
		switch DDFMethod(v) {
		case DDFMethodNew, DDFMethodLegacy:
			m.cfg.DDFMethod = DDFMethod(v)
		default:
			return fmt.Errorf("%w: ddf-method %d", core.ErrUnknownOption, v)
		}
	}
	if _, ok := opts.GetString(options.OptInverseNotation); ok {
		m.cfg.InverseNotation = opts.GetBool(options.OptInverseNotation)
	}
	if _, ok := opts.GetString(options.OptHTML); ok {
		m.cfg.HTML = opts.GetBool(options.OptHTML)
	}
	if v, ok := opts.GetString(options.OptReferenceModel); ok && v != "" {
		m.cfg.RefModelName = v
	}
	if v, ok := opts.GetInt(options.OptIPFMaxIter); ok {
		m.cfg.IPF.MaxIterations = v
	}
	if v, ok := opts.GetFloat(options.OptIPFMaxDev); ok {
		m.cfg.IPF.Tolerance = v
	}
	if v, ok := opts.GetString(options.OptFilter); ok && v != "" {
		f, err := ParseFilter(v)
		if err != nil {
			return err
		}
		if err := m.SetFilter(f.Attr, f.Value, f.Op); err != nil {
			return err
		}
	}
	if v, ok := opts.GetString(options.OptSortBy); ok && v != "" {
		if err := m.SetSortAttr(v); err != nil {
			return err
		}
	}
	if v, ok := opts.GetString(options.OptSortDirection); ok {
		dir, err := ParseSortDirection(v)
		if err != nil {
			return err
		}
		m.SetSortDirection(dir)
	}
	return nil
}

// Config returns the active configuration.
func (m *Manager) Config() Config { return m.cfg }

// SetDDFMethod switches the DDF counting rule.
func (m *Manager) SetDDFMethod(method DDFMethod) { m.cfg.DDFMethod = method }

// SetUseInverseNotation switches relation naming in reports.
func (m *Manager) SetUseInverseNotation(on bool) { m.cfg.InverseNotation = on }

// SetHTMLOutput makes reports render as HTML.
func (m *Manager) SetHTMLOutput(on bool) { m.cfg.HTML = on }

// Mode reports whether the system is directed.
func (m *Manager) Mode() SystemMode { return m.mode }

// IsDirected is shorthand for Mode() == ModeDirected.
func (m *Manager) IsDirected() bool { return m.mode == ModeDirected }

// Vars returns the variable list.
func (m *Manager) Vars() *variable.List { return m.vars }

// Data returns the normalized input table.
func (m *Manager) Data() *table.Table { return m.data }

// SampleSize is the total frequency of the input.
func (m *Manager) SampleSize() float64 { return m.sampleSize }

// ModelName renders a model with the configured notation.
func (m *Manager) ModelName(mdl *model.Model) string {
	return mdl.PrintName(m.cfg.InverseNotation)
}

// CachedModels returns the number of distinct models built so far.
func (m *Manager) CachedModels() int { return len(m.models) }

// MakeRelation returns the relation over indices from the relation store, attaching
// the data projection when makeProject is set.
func (m *Manager) MakeRelation(indices []int, makeProject bool) *model.Relation {
	r := model.NewRelation(m.vars, indices)
	if cached, ok := m.relations[r.Key()]; ok {
		r = cached
	} else {
		m.relations[r.Key()] = r
	}
	if makeProject && r.Table() == nil {
		r.AttachTable(m.data.Project(r.Indices()))
	}
	return r
}

// cacheModel returns the cached model equal to the relation set, building and
// caching it when absent.
func (m *Manager) cacheModel(relations []*model.Relation) (*model.Model, bool) {
	key := model.CanonicalKey(relations)
	if cached, ok := m.models[key]; ok {
		return cached, true
	}
	mdl := model.New(relations)
	mdl.SetRefEpoch(m.refEpoch)
	m.models[key] = mdl
	return mdl, false
}

// dataEntropy is H of the data projected onto indices; the empty set has entropy 0.
func (m *Manager) dataEntropy(indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	key := model.RelationKey(indices)
	if h, ok := m.dataH[key]; ok {
		return h
	}
	var h float64
	if len(indices) == m.vars.Len() {
		h = m.data.Entropy()
	} else {
		h = m.data.Project(indices).Entropy()
	}
	m.dataH[key] = h
	return h
}

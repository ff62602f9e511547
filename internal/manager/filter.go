package manager

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gora/domain/core"
	"gora/domain/model"
)

// RelOp is the comparison a filter applies.
type RelOp int

const (
	LessThan RelOp = iota
	Equals
	GreaterThan
)

func (op RelOp) String() string {
	switch op {
	case LessThan:
		return "<"
	case Equals:
		return "="
	case GreaterThan:
		return ">"
	default:
		return fmt.Sprintf("RelOp(%d)", int(op))
	}
}

// ParseRelOp accepts <, =, ==, > and their names.
func ParseRelOp(s string) (RelOp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "<", "lt", "lessthan":
		return LessThan, nil
	case "=", "==", "eq", "equals":
		return Equals, nil
	case ">", "gt", "greaterthan":
		return GreaterThan, nil
	}
	return LessThan, fmt.Errorf("%w: filter operator %q", core.ErrUnknownOption, s)
}

// Filter keeps models whose statistic compares true against Value.
type Filter struct {
	Attr  string
	Value float64
	Op    RelOp
}

func (f Filter) String() string {
	return fmt.Sprintf("%s %s %g", f.Attr, f.Op, f.Value)
}

// ParseFilter reads "attr op value", e.g. "alpha < 0.05".
func ParseFilter(s string) (Filter, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return Filter{}, fmt.Errorf("%w: filter %q must be \"attribute operator value\"", core.ErrUnknownOption, s)
	}
	op, err := ParseRelOp(fields[1])
	if err != nil {
		return Filter{}, err
	}
	v, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Filter{}, fmt.Errorf("%w: filter value %q", core.ErrUnknownOption, fields[2])
	}
	return Filter{Attr: fields[0], Value: v, Op: op}, nil
}

const equalsTolerance = 1e-12

func (f Filter) keep(v float64) bool {
	switch f.Op {
	case LessThan:
		return v < f.Value
	case GreaterThan:
		return v > f.Value
	default:
		return math.Abs(v-f.Value) <= equalsTolerance*math.Max(1, math.Abs(f.Value))
	}
}

// SetFilter sets the retention predicate, replacing any earlier one.
func (m *Manager) SetFilter(attr string, value float64, op RelOp) error {
	if !model.IsAttribute(attr) {
		return core.NewUnknownAttributeError(attr)
	}
	m.filter = &Filter{Attr: attr, Value: value, Op: op}
	m.logger.Debug("filter set: %s", m.filter)
	return nil
}

// ClearFilter removes the predicate.
func (m *Manager) ClearFilter() { m.filter = nil }

// Filter returns the current predicate.
func (m *Manager) Filter() (Filter, bool) {
	if m.filter == nil {
		return Filter{}, false
	}
	return *m.filter, true
}

// ApplyFilter reports whether the model is kept. Without a filter every model is kept.
// The filtered statistic is computed when the model does not have it yet.
func (m *Manager) ApplyFilter(mdl *model.Model) (bool, error) {
	if m.filter == nil {
		return true, nil
	}
	v, err := m.Attribute(mdl, m.filter.Attr)
	if err != nil {
		return false, err
	}
	return m.filter.keep(v), nil
}

// SetSortAttr names the statistic the reporting and search layers rank by.
func (m *Manager) SetSortAttr(name string) error {
	if !model.IsAttribute(name) {
		return core.NewUnknownAttributeError(name)
	}
	m.sortAttr = name
	return nil
}

// SortAttr returns the ranking statistic.
func (m *Manager) SortAttr() string { return m.sortAttr }

// SetSortDirection sets the ranking direction.
func (m *Manager) SetSortDirection(dir SortDirection) { m.sortDir = dir }

// SortDirection returns the ranking direction.
func (m *Manager) SortDirection() SortDirection { return m.sortDir }

// Attribute returns a named statistic of the model, computing its family when missing.
// Statistics that need the fitted distribution make the fit table first.
func (m *Manager) Attribute(mdl *model.Model, name string) (float64, error) {
	if !model.IsAttribute(name) {
		return 0, core.NewUnknownAttributeError(name)
	}
	m.syncEpoch(mdl)
	if v, ok := mdl.Attribute(name); ok {
		return v, nil
	}
	if err := m.computeFamily(mdl, name); err != nil {
		return 0, err
	}
	v, ok := mdl.Attribute(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s was not computed for %s", core.ErrNotApplicable, name, mdl)
	}
	return v, nil
}

func (m *Manager) computeFamily(mdl *model.Model, name string) error {
	switch name {
	case model.AttrH:
		if err := m.ensureFit(mdl, false); err != nil {
			return err
		}
		_, err := m.ComputeH(mdl)
		return err
	case model.AttrDF, model.AttrDDF:
		return m.ComputeDFStatistics(mdl)
	case model.AttrP2, model.AttrP2Alpha:
		if err := m.ensureFit(mdl, true); err != nil {
			return err
		}
		return m.ComputePearsonStatistics(mdl)
	case model.AttrCondH, model.AttrCondPctDH:
		if !m.IsDirected() {
			return core.NewNotApplicableError("dependent statistics")
		}
		if err := m.ensureFit(mdl, false); err != nil {
			return err
		}
		return m.ComputeDependentStatistics(mdl)
	case model.AttrPctCorrectData:
		if !m.IsDirected() {
			return core.NewNotApplicableError("percent correct")
		}
		if err := m.ensureFit(mdl, true); err != nil {
			return err
		}
		return m.ComputePercentCorrect(mdl)
	case model.AttrBPH, model.AttrBPT, model.AttrBPInformation,
		model.AttrBPAIC, model.AttrBPBIC, model.AttrBPDAIC, model.AttrBPDBIC:
		return m.ComputeBPStatistics(mdl)
	case model.AttrIPFIterations:
		return m.MakeFitTable(mdl)
	default:
		if err := m.ensureFit(mdl, false); err != nil {
			return err
		}
		return m.ComputeL2Statistics(mdl)
	}
}

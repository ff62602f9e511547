package manager

import (
	"fmt"
	"strings"

	"gora/domain/core"
	"gora/domain/model"
	"gora/domain/variable"
)

// MakeReferenceModels builds the saturated model over top, the independence model and
// the default reference. In directed systems the independence model is the IV relation
// plus the relation of the dependent variables. Calling it again replaces all three,
// starts a new reference epoch so statistics that depend on the references are
// recomputed on demand, and resets the first-come AIC/BIC baselines.
func (m *Manager) MakeReferenceModels(top *model.Relation) error {
	var indices []int
	if top == nil {
		indices = m.vars.AllIndices()
	} else {
		indices = top.Indices()
	}
	topRel := m.MakeRelation(indices, true)

	var bottomRels []*model.Relation
	if m.IsDirected() {
		var ivs, dvs []int
		for _, i := range indices {
			if m.vars.At(i).Role == variable.RoleIV {
				ivs = append(ivs, i)
			} else {
				dvs = append(dvs, i)
			}
		}
		if len(ivs) > 0 {
			bottomRels = append(bottomRels, m.MakeRelation(ivs, true))
		}
		if len(dvs) > 0 {
			bottomRels = append(bottomRels, m.MakeRelation(dvs, true))
		}
	} else {
		for _, i := range indices {
			bottomRels = append(bottomRels, m.MakeRelation([]int{i}, true))
		}
	}

	m.refEpoch++
	m.refer = baseline{}
	m.referBP = baseline{}

	topModel := model.New([]*model.Relation{topRel})
	bottomModel := model.New(bottomRels)
	for _, mdl := range []*model.Model{topModel, bottomModel} {
		mdl.SetRefEpoch(m.refEpoch)
		m.models[mdl.Key()] = mdl
		if err := m.MakeFitTable(mdl); err != nil {
			return fmt.Errorf("reference model %s: %w", mdl, err)
		}
	}
	m.top, m.bottom, m.ref = topModel, bottomModel, bottomModel

	if name := m.cfg.RefModelName; name != "" && name != "default" {
		if _, err := m.SetRefModel(name); err != nil {
			return err
		}
	}
	m.logger.Info("reference models built: top %s, bottom %s, reference %s (%s system)",
		m.top, m.bottom, m.ref, m.mode)
	return nil
}

// TopRefModel returns the saturated reference model, nil before MakeReferenceModels.
func (m *Manager) TopRefModel() *model.Model { return m.top }

// BottomRefModel returns the independence reference model.
func (m *Manager) BottomRefModel() *model.Model { return m.bottom }

// RefModel returns the model DDF, dLR and the AIC/BIC deltas are measured against.
func (m *Manager) RefModel() *model.Model { return m.ref }

// SetRefModel selects the reference by "top", "bottom", "default" or a model name.
// Changing the reference starts a new reference epoch like MakeReferenceModels.
func (m *Manager) SetRefModel(name string) (*model.Model, error) {
	if err := m.requireReferences(); err != nil {
		return nil, err
	}
	var ref *model.Model
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "top":
		ref = m.top
	case "bottom", "default", "":
		ref = m.bottom
	default:
		mdl, err := m.MakeModel(name, true)
		if err != nil {
			return nil, err
		}
		if mdl.FitTable() == nil {
			if err := m.MakeFitTable(mdl); err != nil {
				return nil, err
			}
		}
		ref = mdl
	}
	if ref != m.ref {
		m.ref = ref
		m.refEpoch++
		m.refer = baseline{}
		m.referBP = baseline{}
		m.logger.Debug("reference model set to %s", ref)
	}
	return ref, nil
}

func (m *Manager) requireReferences() error {
	if m.top == nil || m.bottom == nil || m.ref == nil {
		return core.ErrReferenceModels
	}
	return nil
}

// syncEpoch drops statistics computed against an older set of references.
func (m *Manager) syncEpoch(mdl *model.Model) {
	if mdl.RefEpoch() != m.refEpoch {
		mdl.ClearAttributes(model.ReferenceAttributes...)
		mdl.SetRefEpoch(m.refEpoch)
	}
}

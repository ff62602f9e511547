package manager

import (
	"math"

	"gora/domain/model"
)

const entropyEpsilon = 1e-12

// informationFraction places hModel between the bottom (0) and top (1) entropies.
func informationFraction(hBottom, hModel, hTop float64) float64 {
	span := hBottom - hTop
	if math.Abs(span) < entropyEpsilon {
		return 1
	}
	v := (hBottom - hModel) / span
	return math.Max(0, math.Min(1, v))
}

// ComputeExplainedInformation returns the share of the saturated model's information
// that the model captures, measured from the bottom reference. It needs the reference
// models and the model's entropy (or fit table).
func (m *Manager) ComputeExplainedInformation(mdl *model.Model) (float64, error) {
	if err := m.requireReferences(); err != nil {
		return 0, err
	}
	m.syncEpoch(mdl)
	if v, ok := mdl.Attribute(model.AttrExplainedI); ok {
		return v, nil
	}
	hTop, err := m.ComputeH(m.top)
	if err != nil {
		return 0, err
	}
	hBottom, err := m.ComputeH(m.bottom)
	if err != nil {
		return 0, err
	}
	h, err := m.ComputeH(mdl)
	if err != nil {
		return 0, err
	}
	explained := informationFraction(hBottom, h, hTop)
	mdl.SetAttribute(model.AttrExplainedI, explained)
	mdl.SetAttribute(model.AttrInformation, explained)
	return explained, nil
}

// ComputeUnexplainedInformation returns the share of the saturated model's information
// the model leaves out. Explained and unexplained information add up to one.
func (m *Manager) ComputeUnexplainedInformation(mdl *model.Model) (float64, error) {
	if err := m.requireReferences(); err != nil {
		return 0, err
	}
	m.syncEpoch(mdl)
	if v, ok := mdl.Attribute(model.AttrUnexplainedI); ok {
		return v, nil
	}
	explained, err := m.ComputeExplainedInformation(mdl)
	if err != nil {
		return 0, err
	}
	unexplained := 1 - explained
	mdl.SetAttribute(model.AttrUnexplainedI, unexplained)
	return unexplained, nil
}

// ComputeInformationStatistics stores h, t, explained_i, unexplained_i and information.
func (m *Manager) ComputeInformationStatistics(mdl *model.Model) error {
	h, err := m.ComputeH(mdl)
	if err != nil {
		return err
	}
	mdl.SetAttribute(model.AttrT, h-m.dataEntropy(m.vars.AllIndices()))
	if _, err := m.ComputeUnexplainedInformation(mdl); err != nil {
		return err
	}
	return nil
}

package manager

import (
	"gora/domain/model"
)

// bpH is the entropy of the model assembled directly from the data marginals of its
// relations: the alternating sum of the marginal entropies over every intersection of
// relations. It equals the fitted entropy for loopless models and needs no IPF.
func (m *Manager) bpH(mdl *model.Model) float64 {
	if v, ok := mdl.Attribute(model.AttrBPH); ok {
		return v
	}
	h := inclusionExclusion(relationSets(mdl.Relations()), m.dataEntropy)
	mdl.SetAttribute(model.AttrBPH, h)
	return h
}

// ComputeBPT stores bp_h and returns bp_t, the BP entropy minus the data entropy.
func (m *Manager) ComputeBPT(mdl *model.Model) (float64, error) {
	if v, ok := mdl.Attribute(model.AttrBPT); ok {
		return v, nil
	}
	t := m.bpH(mdl) - m.dataEntropy(m.vars.AllIndices())
	mdl.SetAttribute(model.AttrBPT, t)
	return t, nil
}

// ComputeBPStatistics stores the BP family: bp_h, bp_t, bp_information against the
// BP entropies of the reference models, and the BP AIC/BIC values.
func (m *Manager) ComputeBPStatistics(mdl *model.Model) error {
	if err := m.requireReferences(); err != nil {
		return err
	}
	m.syncEpoch(mdl)
	if _, err := m.ComputeBPT(mdl); err != nil {
		return err
	}
	if _, ok := mdl.Attribute(model.AttrBPInformation); !ok {
		info := informationFraction(m.bpH(m.bottom), m.bpH(mdl), m.bpH(m.top))
		mdl.SetAttribute(model.AttrBPInformation, info)
	}
	return m.CalculateBPAicBic(mdl)
}

// CalculateBPAicBic stores bp_aic and bp_bic from bp_t and the model's degrees of
// freedom, and their deltas from the reference model's values, captured the first time
// they are needed.
func (m *Manager) CalculateBPAicBic(mdl *model.Model) error {
	if err := m.requireReferences(); err != nil {
		return err
	}
	m.syncEpoch(mdl)
	t, err := m.ComputeBPT(mdl)
	if err != nil {
		return err
	}
	aic, bic := m.aicBic(m.likelihoodRatio(t), m.ComputeDF(mdl))

	if !m.referBP.set {
		refT, err := m.ComputeBPT(m.ref)
		if err != nil {
			return err
		}
		m.referBP.aic, m.referBP.bic = m.aicBic(m.likelihoodRatio(refT), m.ComputeDF(m.ref))
		m.referBP.set = true
	}

	mdl.SetAttribute(model.AttrBPAIC, aic)
	mdl.SetAttribute(model.AttrBPBIC, bic)
	mdl.SetAttribute(model.AttrBPDAIC, m.referBP.aic-aic)
	mdl.SetAttribute(model.AttrBPDBIC, m.referBP.bic-bic)
	return nil
}

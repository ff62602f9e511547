package manager

import (
	"gora/domain/core"
	"gora/domain/model"
	"gora/domain/table"
	"gora/internal/stats"
)

// ComputeDependentStatistics stores cond_h, the uncertainty of the dependent variables
// given the independent ones under the model, and cond_pct_dh, the percentage of the
// dependent variables' uncertainty the model removes. Neutral systems fail with
// ErrNotApplicable.
func (m *Manager) ComputeDependentStatistics(mdl *model.Model) error {
	if !m.IsDirected() {
		return core.NewNotApplicableError("dependent statistics")
	}
	h, err := m.ComputeH(mdl)
	if err != nil {
		return err
	}
	condH := h - m.dataEntropy(m.vars.IVIndices())
	hDV := m.dataEntropy(m.vars.DVIndices())
	pct := 0.0
	if hDV > entropyEpsilon {
		pct = 100 * (hDV - condH) / hDV
	}
	mdl.SetAttribute(model.AttrCondH, condH)
	mdl.SetAttribute(model.AttrCondPctDH, pct)
	return nil
}

// ComputePercentCorrect stores pct_correct_data: for every independent-variable state
// the model predicts the dependent state with the highest fitted probability (the
// lowest state on ties), and the statistic is the percentage of the sample the
// prediction gets right. It needs the fit table; neutral systems fail with
// ErrNotApplicable.
func (m *Manager) ComputePercentCorrect(mdl *model.Model) error {
	if !m.IsDirected() {
		return core.NewNotApplicableError("percent correct")
	}
	fit := mdl.FitTable()
	if fit == nil {
		return missingFit(mdl)
	}
	ivMask := table.Key(m.vars.Mask(m.vars.IVIndices()))
	dvMask := table.Key(m.vars.Mask(m.vars.DVIndices()))

	type candidates struct {
		dv []table.Key
		q  []float64
	}
	byIV := make(map[table.Key]*candidates)
	fit.Each(func(k table.Key, q float64) {
		iv := k & ivMask
		c, ok := byIV[iv]
		if !ok {
			c = &candidates{}
			byIV[iv] = c
		}
		c.dv = append(c.dv, k&dvMask)
		c.q = append(c.q, q)
	})
	predicted := make(map[table.Key]table.Key, len(byIV))
	for iv, c := range byIV {
		if best := stats.ArgMax(c.q); best >= 0 {
			predicted[iv] = c.dv[best]
		}
	}

	correct := 0.0
	m.data.Each(func(k table.Key, p float64) {
		if dv, ok := predicted[k&ivMask]; ok && dv == k&dvMask {
			correct += p
		}
	})
	mdl.SetAttribute(model.AttrPctCorrectData, 100*correct)
	return nil
}

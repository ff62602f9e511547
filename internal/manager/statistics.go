package manager

import (
	"math"

	"gora/domain/model"
	"gora/domain/table"
	"gora/internal/stats"
)

// likelihoodRatio converts an entropy difference in bits into the L2 statistic.
func (m *Manager) likelihoodRatio(deltaH float64) float64 {
	return 2 * m.sampleSize * math.Ln2 * deltaH
}

func (m *Manager) aicBic(lr, df float64) (float64, float64) {
	return lr + 2*df, lr + math.Log(m.sampleSize)*df
}

// ComputeL2Statistics stores the likelihood-ratio statistics of the model: lr against
// the data, dlr and its alpha against the reference model, aic, bic and their deltas
// from the first-come reference baseline, plus df, ddf and the information measures.
// It needs the model's entropy or fit table.
func (m *Manager) ComputeL2Statistics(mdl *model.Model) error {
	if err := m.requireReferences(); err != nil {
		return err
	}
	m.syncEpoch(mdl)
	h, err := m.ComputeH(mdl)
	if err != nil {
		return err
	}
	if err := m.ComputeDFStatistics(mdl); err != nil {
		return err
	}
	if err := m.ComputeInformationStatistics(mdl); err != nil {
		return err
	}
	hRef, err := m.ComputeH(m.ref)
	if err != nil {
		return err
	}
	hData := m.dataEntropy(m.vars.AllIndices())
	df := m.ComputeDF(mdl)
	ddf, _ := mdl.Attribute(model.AttrDDF)

	lr := math.Max(0, m.likelihoodRatio(h-hData))
	dlr := m.likelihoodRatio(math.Abs(h - hRef))
	aic, bic := m.aicBic(lr, df)

	if !m.refer.set {
		refLR := math.Max(0, m.likelihoodRatio(hRef-hData))
		m.refer.aic, m.refer.bic = m.aicBic(refLR, m.ComputeDF(m.ref))
		m.refer.set = true
	}

	mdl.SetAttribute(model.AttrLR, lr)
	mdl.SetAttribute(model.AttrDLR, dlr)
	mdl.SetAttribute(model.AttrAlpha, stats.ChiSquareSurvival(dlr, ddf))
	mdl.SetAttribute(model.AttrAIC, aic)
	mdl.SetAttribute(model.AttrBIC, bic)
	mdl.SetAttribute(model.AttrDAIC, m.refer.aic-aic)
	mdl.SetAttribute(model.AttrDBIC, m.refer.bic-bic)
	return nil
}

// ComputePearsonStatistics stores the Pearson chi-square of the data against the
// fitted distribution, over cells the fit gives positive probability, and its alpha
// with the degrees of freedom the model leaves free. It needs the fit table.
func (m *Manager) ComputePearsonStatistics(mdl *model.Model) error {
	fit := mdl.FitTable()
	if fit == nil {
		return missingFit(mdl)
	}
	n := m.sampleSize
	p2 := 0.0
	fit.Each(func(k table.Key, q float64) {
		if q <= 0 {
			return
		}
		d := n*m.data.Get(k) - n*q
		p2 += d * d / (n * q)
	})
	df := m.ComputeDF(mdl)
	topDF := m.effectDF(m.vars.AllIndices())
	mdl.SetAttribute(model.AttrP2, p2)
	mdl.SetAttribute(model.AttrP2Alpha, stats.ChiSquareSurvival(p2, topDF-df))
	return nil
}

package manager

import (
	"fmt"
	"time"

	"gora/domain/core"
	"gora/domain/model"
	"gora/internal/ipf"
	"gora/internal/metrics"
)

// MakeFitTable computes the model's expected distribution by IPF over its relation
// marginals and stores it on the model. A model made of one relation over every
// variable is the data itself. Fits that stop at the iteration limit are kept and
// logged.
func (m *Manager) MakeFitTable(mdl *model.Model) error {
	start := time.Now()
	if mdl.Len() == 1 && mdl.Relation(0).Len() == m.vars.Len() {
		mdl.SetFitTable(m.data.Copy())
		mdl.SetAttribute(model.AttrIPFIterations, 0)
		return nil
	}

	marginals := make([]ipf.Marginal, 0, mdl.Len())
	for _, r := range mdl.Relations() {
		if r.Table() == nil {
			r.AttachTable(m.data.Project(r.Indices()))
		}
		marginals = append(marginals, ipf.Marginal{Indices: r.Indices(), Table: r.Table()})
	}
	fit, res, err := ipf.Fit(m.vars, marginals, m.cfg.IPF)
	if err != nil {
		return err
	}
	if !res.Converged {
		m.logger.Warn("IPF for %s stopped after %d iterations without converging", mdl, res.Iterations)
	}
	mdl.SetFitTable(fit)
	mdl.SetAttribute(model.AttrIPFIterations, float64(res.Iterations))
	metrics.FitDuration.Observe(time.Since(start).Seconds())
	metrics.FitIterations.Observe(float64(res.Iterations))
	m.logger.Trace("fit %s in %d iterations", mdl, res.Iterations)
	return nil
}

// ComputeH returns the entropy of the model's fitted distribution. Once computed it is
// kept even after the fit table is released.
func (m *Manager) ComputeH(mdl *model.Model) (float64, error) {
	if h, ok := mdl.Attribute(model.AttrH); ok {
		return h, nil
	}
	fit := mdl.FitTable()
	if fit == nil {
		return 0, missingFit(mdl)
	}
	h := fit.Entropy()
	mdl.SetAttribute(model.AttrH, h)
	return h, nil
}

// ensureFit makes the fit table when neither it nor the entropy exist.
func (m *Manager) ensureFit(mdl *model.Model, needCells bool) error {
	if mdl.FitTable() != nil {
		return nil
	}
	if _, ok := mdl.Attribute(model.AttrH); ok && !needCells {
		return nil
	}
	return m.MakeFitTable(mdl)
}

func missingFit(mdl *model.Model) error {
	return fmt.Errorf("%w for model %s", core.ErrMissingFitTable, mdl)
}

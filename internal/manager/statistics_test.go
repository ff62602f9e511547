package manager

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gora/domain/core"
	"gora/domain/model"
	"gora/domain/table"
)

func fitted(t *testing.T, m *Manager, name string) *model.Model {
	t.Helper()
	mdl, err := m.MakeModel(name, true)
	require.NoError(t, err)
	require.NoError(t, m.MakeFitTable(mdl))
	return mdl
}

func attr(t *testing.T, mdl *model.Model, name string) float64 {
	t.Helper()
	v, ok := mdl.Attribute(name)
	require.True(t, ok, "missing %s on %s", name, mdl)
	return v
}

func TestStatistics_RequireReferences(t *testing.T) {
	m := newABC(t, false)
	mdl := fitted(t, m, "AB:C")

	_, err := m.ComputeExplainedInformation(mdl)
	assert.True(t, errors.Is(err, core.ErrPreconditionViolation))
	_, err = m.ComputeDDF(mdl)
	assert.True(t, core.IsPreconditionViolation(err))
	assert.True(t, core.IsPreconditionViolation(m.ComputeL2Statistics(mdl)))
	_, err = m.SetRefModel("top")
	assert.True(t, core.IsPreconditionViolation(err))
}

func TestReferenceModels(t *testing.T) {
	m := withReferences(t, newABC(t, false))
	assert.Equal(t, "ABC", m.TopRefModel().PrintName(false))
	assert.Equal(t, "A:B:C", m.BottomRefModel().PrintName(false))
	assert.Same(t, m.BottomRefModel(), m.RefModel())

	oldTop, oldBottom, oldRef := m.TopRefModel(), m.BottomRefModel(), m.RefModel()
	require.NoError(t, m.MakeReferenceModels(nil))
	assert.NotSame(t, oldTop, m.TopRefModel())
	assert.NotSame(t, oldBottom, m.BottomRefModel())
	assert.NotSame(t, oldRef, m.RefModel())
}

func TestReferenceModels_Directed(t *testing.T) {
	m := withReferences(t, newABC(t, true))
	assert.Equal(t, "IV:C", m.BottomRefModel().PrintName(false))
	assert.Same(t, m.BottomRefModel(), m.RefModel())
}

func TestSetRefModel(t *testing.T) {
	m := withReferences(t, newABC(t, false))

	ref, err := m.SetRefModel("top")
	require.NoError(t, err)
	assert.Same(t, m.TopRefModel(), ref)

	ref, err = m.SetRefModel("AB:C")
	require.NoError(t, err)
	assert.Equal(t, "AB:C", ref.PrintName(false))
	assert.NotNil(t, ref.FitTable())

	ref, err = m.SetRefModel("default")
	require.NoError(t, err)
	assert.Same(t, m.BottomRefModel(), ref)

	_, err = m.SetRefModel("AZ")
	assert.True(t, errors.Is(err, core.ErrInvalidModelName))
}

func TestInformation_ReconcilesToTotal(t *testing.T) {
	m := withReferences(t, newABC(t, false))

	for _, name := range []string{"ABC", "AB:AC:BC", "AB:C", "A:BC", "A:B:C"} {
		mdl := fitted(t, m, name)
		explained, err := m.ComputeExplainedInformation(mdl)
		require.NoError(t, err)
		unexplained, err := m.ComputeUnexplainedInformation(mdl)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, explained+unexplained, 1e-9, name)
		assert.GreaterOrEqual(t, explained, 0.0)
		assert.LessOrEqual(t, explained, 1.0)
	}

	top, err := m.ComputeExplainedInformation(m.TopRefModel())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, top, 1e-9)
	bottom, err := m.ComputeExplainedInformation(m.BottomRefModel())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, bottom, 1e-9)
}

func TestComputeH_MissingFitTable(t *testing.T) {
	m := withReferences(t, newABC(t, false))
	mdl, err := m.MakeModel("AB:BC", false)
	require.NoError(t, err)

	_, err = m.ComputeH(mdl)
	assert.True(t, errors.Is(err, core.ErrMissingFitTable))
	assert.True(t, errors.Is(m.ComputeL2Statistics(mdl), core.ErrMissingFitTable))
	assert.True(t, errors.Is(m.ComputePearsonStatistics(mdl), core.ErrMissingFitTable))
}

func TestComputeDF(t *testing.T) {
	m := withReferences(t, newABC(t, false))
	tests := []struct {
		name string
		want float64
	}{
		{"ABC", 11},
		{"AB:AC:BC", 9},
		{"AB:C", 6},
		{"AC:B", 5},
		{"A:B:C", 4},
	}
	for _, tt := range tests {
		mdl, err := m.MakeModel(tt.name, false)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.ComputeDF(mdl), tt.name)
	}
}

func TestBuildDDF_SymmetricDifference(t *testing.T) {
	m := newABC(t, false)
	a, err := m.MakeModel("AB:BC", false)
	require.NoError(t, err)
	b, err := m.MakeModel("AC:BC", false)
	require.NoError(t, err)

	diff := m.BuildDDF(a, b)
	require.Len(t, diff, 2)
	assert.ElementsMatch(t, []string{"AB", "AC"}, relationNames(diff))
	assert.Empty(t, m.BuildDDF(a, a))
}

func TestComputeDDF_SaturatedVersusChild(t *testing.T) {
	for _, method := range []DDFMethod{DDFMethodNew, DDFMethodLegacy} {
		m := withReferences(t, newABC(t, false))
		m.SetDDFMethod(method)
		_, err := m.SetRefModel("top")
		require.NoError(t, err)

		child, _, err := m.MakeChildModel(m.TopRefModel(), 0, true)
		require.NoError(t, err)
		ddf, err := m.ComputeDDF(child)
		require.NoError(t, err)
		// the ABC interaction term: (2-1)(3-1)(2-1)
		assert.Equal(t, 2.0, ddf, method.String())

		abc, err := m.MakeModel("AB:C", false)
		require.NoError(t, err)
		ddf, err = m.ComputeDDF(abc)
		require.NoError(t, err)
		assert.Equal(t, 5.0, ddf, method.String())
	}
}

func TestComputeDDF_MethodsDifferOnCrossingModels(t *testing.T) {
	m := withReferences(t, newABC(t, false))
	_, err := m.SetRefModel("AC:B")
	require.NoError(t, err)
	mdl, err := m.MakeModel("AB:C", false)
	require.NoError(t, err)

	ddf, err := m.ComputeDDF(mdl)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ddf)

	m.SetDDFMethod(DDFMethodLegacy)
	mdl.ClearAttributes(model.AttrDDF)
	ddf, err = m.ComputeDDF(mdl)
	require.NoError(t, err)
	assert.Equal(t, 3.0, ddf)
}

func TestReferenceChangeInvalidatesDDF(t *testing.T) {
	m := withReferences(t, newABC(t, false))
	mdl, err := m.MakeModel("AB:C", false)
	require.NoError(t, err)

	ddf, err := m.ComputeDDF(mdl)
	require.NoError(t, err)
	assert.Equal(t, 2.0, ddf, "AB:C against A:B:C")

	_, err = m.SetRefModel("top")
	require.NoError(t, err)
	ddf, err = m.Attribute(mdl, model.AttrDDF)
	require.NoError(t, err)
	assert.Equal(t, 5.0, ddf)
}

func TestComputeL2Statistics(t *testing.T) {
	m := withReferences(t, newABC(t, false))
	n := m.SampleSize()
	hData := m.Data().Entropy()

	top := m.TopRefModel()
	require.NoError(t, m.ComputeL2Statistics(top))
	assert.InDelta(t, 0.0, attr(t, top, model.AttrLR), 1e-9)
	assert.InDelta(t, 0.0, attr(t, top, model.AttrT), 1e-9)

	bottom := m.BottomRefModel()
	require.NoError(t, m.ComputeL2Statistics(bottom))
	hBottom := m.Data().Project([]int{0}).Entropy() +
		m.Data().Project([]int{1}).Entropy() +
		m.Data().Project([]int{2}).Entropy()
	assert.InDelta(t, hBottom, attr(t, bottom, model.AttrH), 1e-6)
	assert.InDelta(t, 2*n*math.Ln2*(hBottom-hData), attr(t, bottom, model.AttrLR), 1e-4)
	assert.InDelta(t, 0.0, attr(t, bottom, model.AttrDAIC), 1e-9, "the reference is its own baseline")
	assert.InDelta(t, 0.0, attr(t, bottom, model.AttrDLR), 1e-9)
	assert.Equal(t, 1.0, attr(t, bottom, model.AttrAlpha))

	// top against bottom: dLR equals the bottom's lr, with 7 degrees of freedom
	assert.InDelta(t, attr(t, bottom, model.AttrLR), attr(t, top, model.AttrDLR), 1e-4)
	assert.Equal(t, 7.0, attr(t, top, model.AttrDDF))
	assert.InDelta(t, attr(t, bottom, model.AttrAIC)-attr(t, top, model.AttrAIC), attr(t, top, model.AttrDAIC), 1e-9)
	alpha := attr(t, top, model.AttrAlpha)
	assert.True(t, alpha >= 0 && alpha <= 1)
	assert.InDelta(t, attr(t, top, model.AttrLR)+2*11, attr(t, top, model.AttrAIC), 1e-9)
	assert.InDelta(t, attr(t, top, model.AttrLR)+math.Log(n)*11, attr(t, top, model.AttrBIC), 1e-9)
}

func TestComputePearsonStatistics(t *testing.T) {
	m := withReferences(t, newABC(t, false))

	top := m.TopRefModel()
	require.NoError(t, m.ComputePearsonStatistics(top))
	assert.InDelta(t, 0.0, attr(t, top, model.AttrP2), 1e-9)

	mdl := fitted(t, m, "AB:C")
	require.NoError(t, m.ComputePearsonStatistics(mdl))
	assert.Greater(t, attr(t, mdl, model.AttrP2), 0.0)
	p := attr(t, mdl, model.AttrP2Alpha)
	assert.True(t, p >= 0 && p <= 1)
}

func TestBPStatistics_MatchFitForLooplessModels(t *testing.T) {
	m := withReferences(t, newABC(t, false))
	for _, name := range []string{"AB:BC", "A:BC", "A:B:C", "ABC"} {
		mdl := fitted(t, m, name)
		h, err := m.ComputeH(mdl)
		require.NoError(t, err)
		require.NoError(t, m.ComputeBPStatistics(mdl))
		assert.InDelta(t, h, attr(t, mdl, model.AttrBPH), 1e-6, name)
	}

	top := m.TopRefModel()
	bpt, err := m.ComputeBPT(top)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, bpt, 1e-12)
	assert.InDelta(t, 1.0, attr(t, top, model.AttrBPInformation), 1e-9)

	bottom := m.BottomRefModel()
	require.NoError(t, m.ComputeBPStatistics(bottom))
	assert.InDelta(t, 0.0, attr(t, bottom, model.AttrBPDAIC), 1e-9)
	assert.InDelta(t, 0.0, attr(t, bottom, model.AttrBPInformation), 1e-9)
}

func TestBPBaselineIsFirstCome(t *testing.T) {
	m := withReferences(t, newABC(t, false))
	mdl, err := m.MakeModel("AB:C", false)
	require.NoError(t, err)
	require.NoError(t, m.CalculateBPAicBic(mdl))
	first := m.referBP

	// changing the data the baseline was taken from does not move it
	m.dataH[model.RelationKey([]int{0})] = 42
	require.NoError(t, m.CalculateBPAicBic(m.TopRefModel()))
	assert.Equal(t, first, m.referBP)

	require.NoError(t, m.MakeReferenceModels(nil))
	assert.False(t, m.referBP.set, "rebuilding the references starts a new baseline")
}

func TestDependentStatistics_NotApplicableWhenNeutral(t *testing.T) {
	m := withReferences(t, newABC(t, false))
	top := m.TopRefModel()
	assert.True(t, core.IsNotApplicable(m.ComputeDependentStatistics(top)))
	assert.True(t, core.IsNotApplicable(m.ComputePercentCorrect(top)))
}

func TestDependentStatistics_Directed(t *testing.T) {
	m := withReferences(t, newABC(t, true))
	data := m.Data()
	hC := data.Project([]int{2}).Entropy()
	hAB := data.Project([]int{0, 1}).Entropy()

	top := m.TopRefModel()
	require.NoError(t, m.ComputeDependentStatistics(top))
	assert.InDelta(t, data.Entropy()-hAB, attr(t, top, model.AttrCondH), 1e-9)
	assert.Greater(t, attr(t, top, model.AttrCondPctDH), 0.0)

	bottom := m.BottomRefModel()
	require.NoError(t, m.ComputeDependentStatistics(bottom))
	assert.InDelta(t, hC, attr(t, bottom, model.AttrCondH), 1e-6)
	assert.InDelta(t, 0.0, attr(t, bottom, model.AttrCondPctDH), 1e-4)
}

func TestPercentCorrect(t *testing.T) {
	m := withReferences(t, newABC(t, true))
	data := m.Data()
	vars := m.Vars()

	// the saturated model predicts the most frequent C for every (A, B)
	want := 0.0
	for a := 0; a < 2; a++ {
		for b := 0; b < 3; b++ {
			k0, err := vars.KeyOf([]int{a, b, 0})
			require.NoError(t, err)
			k1, err := vars.KeyOf([]int{a, b, 1})
			require.NoError(t, err)
			want += math.Max(data.Get(table.Key(k0)), data.Get(table.Key(k1)))
		}
	}
	top := m.TopRefModel()
	require.NoError(t, m.ComputePercentCorrect(top))
	assert.InDelta(t, 100*want, attr(t, top, model.AttrPctCorrectData), 1e-9)

	// the independence model always predicts the overall mode of C
	pc := data.Project([]int{2}).Values()
	bottom := m.BottomRefModel()
	require.NoError(t, m.ComputePercentCorrect(bottom))
	assert.InDelta(t, 100*math.Max(pc[0], pc[1]), attr(t, bottom, model.AttrPctCorrectData), 1e-6)
}

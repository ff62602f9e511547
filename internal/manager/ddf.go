package manager

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gora/domain/model"
)

// inclusionExclusion sums f over the intersections of every non-empty subfamily of
// sets with sign (-1)^(k+1) for a subfamily of k sets. Subfamilies with the same
// intersection are grouped: each distinct non-empty intersection T gets the Möbius
// coefficient c(T) = 1 - sum of c(S) over the closure sets S strictly containing T, so
// the work grows with the number of distinct intersections, not of subfamilies. Empty
// intersections never reach f.
func inclusionExclusion(sets [][]int, f func(indices []int) float64) float64 {
	closure := intersectionClosure(maximalSets(sets))
	coef := make([]float64, len(closure))
	total := 0.0
	for i, t := range closure {
		c := 1.0
		for j := 0; j < i; j++ {
			if coef[j] != 0 && len(closure[j]) > len(t) && containsSorted(closure[j], t) {
				c -= coef[j]
			}
		}
		coef[i] = c
		if c != 0 {
			total += c * f(t)
		}
	}
	return total
}

// intersectionClosure returns every distinct non-empty intersection of the generators,
// largest sets first.
func intersectionClosure(gens [][]int) [][]int {
	seen := make(map[string]bool, len(gens))
	var out [][]int
	queue := append([][]int(nil), gens...)
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		key := setKey(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		for _, g := range gens {
			if inter := intersectSorted(s, g); len(inter) > 0 && !seen[setKey(inter)] {
				queue = append(queue, inter)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

func setKey(s []int) string {
	var b strings.Builder
	for _, v := range s {
		b.WriteString(strconv.Itoa(v))
		b.WriteByte(',')
	}
	return b.String()
}

func intersectSorted(a, b []int) []int {
	var out []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

func containsSorted(outer, inner []int) bool {
	return len(intersectSorted(outer, inner)) == len(inner)
}

// maximalSets drops empty sets, duplicates and sets contained in another set.
func maximalSets(sets [][]int) [][]int {
	out := make([][]int, 0, len(sets))
	for i, s := range sets {
		if len(s) == 0 {
			continue
		}
		keep := true
		for j, o := range sets {
			if i == j || len(o) < len(s) || !containsSorted(o, s) {
				continue
			}
			// equal sets: keep the first only
			if len(o) > len(s) || j < i {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, s)
		}
	}
	return out
}

// effectDF is the number of free parameters of the saturated model over indices.
func (m *Manager) effectDF(indices []int) float64 {
	return m.vars.StateSpaceSize(indices) - 1
}

func relationSets(relations []*model.Relation) [][]int {
	sets := make([][]int, len(relations))
	for i, r := range relations {
		sets[i] = r.Indices()
	}
	return sets
}

// ComputeDF returns the degrees of freedom of the model: the number of interaction
// terms over variable subsets contained in one of its relations, each weighted by the
// product of (cardinality - 1).
func (m *Manager) ComputeDF(mdl *model.Model) float64 {
	if v, ok := mdl.Attribute(model.AttrDF); ok {
		return v
	}
	df := inclusionExclusion(relationSets(mdl.Relations()), m.effectDF)
	mdl.SetAttribute(model.AttrDF, df)
	return df
}

// BuildDDF returns the relations that appear in exactly one of the two models, those
// of a first.
func (m *Manager) BuildDDF(a, b *model.Model) []*model.Relation {
	var diff []*model.Relation
	for _, r := range a.Relations() {
		if !b.HasRelation(r) {
			diff = append(diff, r)
		}
	}
	for _, r := range b.Relations() {
		if !a.HasRelation(r) {
			diff = append(diff, r)
		}
	}
	return diff
}

// uncoveredDF counts the interaction terms of the diff relations that the other model
// does not have.
func (m *Manager) uncoveredDF(diff []*model.Relation, other *model.Model) float64 {
	if len(diff) == 0 {
		return 0
	}
	own := relationSets(diff)
	var shared [][]int
	for _, d := range own {
		for _, o := range other.Relations() {
			if inter := intersectSorted(d, o.Indices()); len(inter) > 0 {
				shared = append(shared, inter)
			}
		}
	}
	return inclusionExclusion(own, m.effectDF) - inclusionExclusion(shared, m.effectDF)
}

// ddfBetween counts the degrees of freedom separating two models with the configured
// method.
func (m *Manager) ddfBetween(a, b *model.Model) float64 {
	var onlyA, onlyB []*model.Relation
	for _, r := range m.BuildDDF(a, b) {
		if a.HasRelation(r) {
			onlyA = append(onlyA, r)
		} else {
			onlyB = append(onlyB, r)
		}
	}
	termsA := m.uncoveredDF(onlyA, b)
	termsB := m.uncoveredDF(onlyB, a)
	switch m.cfg.DDFMethod {
	case DDFMethodLegacy:
		return termsA + termsB
	default:
		return math.Abs(termsA - termsB)
	}
}

// ComputeDDF returns the degrees of freedom between the model and the reference model.
func (m *Manager) ComputeDDF(mdl *model.Model) (float64, error) {
	if err := m.requireReferences(); err != nil {
		return 0, err
	}
	m.syncEpoch(mdl)
	if v, ok := mdl.Attribute(model.AttrDDF); ok {
		return v, nil
	}
	ddf := m.ddfBetween(mdl, m.ref)
	mdl.SetAttribute(model.AttrDDF, ddf)
	return ddf, nil
}

// ComputeDFStatistics stores df and ddf. Neither needs a fit table.
func (m *Manager) ComputeDFStatistics(mdl *model.Model) error {
	m.ComputeDF(mdl)
	_, err := m.ComputeDDF(mdl)
	return err
}

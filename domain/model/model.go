package model

import (
	"sort"
	"strings"

	"gora/domain/table"
)

// Model is a canonical collection of relations plus its fit table and statistics.
type Model struct {
	relations []*Relation
	key       string
	fit       *table.Table
	attrs     map[string]float64
	refEpoch  int

	// Search bookkeeping, set by drivers.
	ID         int
	Level      int
	Progenitor *Model
}

// New builds a model from relations. Equal relations are merged, relations contained
// in another relation are dropped, and the rest are put in canonical order.
func New(relations []*Relation) *Model {
	rels := Canonicalize(relations)
	return &Model{
		relations: rels,
		key:       keyOf(rels),
		attrs:     make(map[string]float64),
	}
}

// Canonicalize deduplicates relations by identity, removes relations that are strict
// subsets of another relation, and sorts the result.
func Canonicalize(relations []*Relation) []*Relation {
	unique := make([]*Relation, 0, len(relations))
	seen := make(map[string]bool, len(relations))
	for _, r := range relations {
		if r == nil || seen[r.key] {
			continue
		}
		seen[r.key] = true
		unique = append(unique, r)
	}
	out := unique[:0:0]
	for i, r := range unique {
		subsumed := false
		for j, o := range unique {
			if i != j && o.Len() > r.Len() && o.Covers(r) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessRelations(out[i], out[j]) })
	return out
}

// CanonicalKey returns the order-independent identity of a relation set, after the
// same canonicalization New applies.
func CanonicalKey(relations []*Relation) string {
	return keyOf(Canonicalize(relations))
}

func keyOf(sorted []*Relation) string {
	parts := make([]string, len(sorted))
	for i, r := range sorted {
		parts[i] = r.key
	}
	return strings.Join(parts, "|")
}

// Key is the canonical identity of the model.
func (m *Model) Key() string { return m.key }

// Relations returns the relations in canonical order. The slice must not be modified.
func (m *Model) Relations() []*Relation { return m.relations }

// Len returns the number of relations.
func (m *Model) Len() int { return len(m.relations) }

// Relation returns relation i, or nil when out of range.
func (m *Model) Relation(i int) *Relation {
	if i < 0 || i >= len(m.relations) {
		return nil
	}
	return m.relations[i]
}

// HasRelation reports whether a relation with the same variables is in the model.
func (m *Model) HasRelation(r *Relation) bool {
	for _, o := range m.relations {
		if o.key == r.key {
			return true
		}
	}
	return false
}

// CoversRelation reports whether some relation of the model contains r.
func (m *Model) CoversRelation(r *Relation) bool {
	for _, o := range m.relations {
		if o.Covers(r) {
			return true
		}
	}
	return false
}

// CoversVariables reports whether some relation of the model contains all indices.
func (m *Model) CoversVariables(indices []int) bool {
	for _, o := range m.relations {
		ok := true
		for _, i := range indices {
			if !o.Contains(i) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// FitTable returns the fitted table, nil until one is made.
func (m *Model) FitTable() *table.Table { return m.fit }

// SetFitTable stores the fitted table.
func (m *Model) SetFitTable(t *table.Table) { m.fit = t }

// DeleteFitTable releases the fitted table; statistics already computed are kept.
func (m *Model) DeleteFitTable() { m.fit = nil }

// Attribute returns a computed statistic.
func (m *Model) Attribute(name string) (float64, bool) {
	v, ok := m.attrs[name]
	return v, ok
}

// SetAttribute stores a computed statistic.
func (m *Model) SetAttribute(name string, v float64) { m.attrs[name] = v }

// ClearAttributes drops the named statistics.
func (m *Model) ClearAttributes(names ...string) {
	for _, n := range names {
		delete(m.attrs, n)
	}
}

// Attributes returns a copy of the statistics bag.
func (m *Model) Attributes() map[string]float64 {
	out := make(map[string]float64, len(m.attrs))
	for k, v := range m.attrs {
		out[k] = v
	}
	return out
}

// RefEpoch is the reference generation the reference-dependent statistics belong to.
func (m *Model) RefEpoch() int { return m.refEpoch }

// SetRefEpoch records the reference generation.
func (m *Model) SetRefEpoch(epoch int) { m.refEpoch = epoch }

// PrintName renders the model as colon-separated relation names. The IV relation of a
// directed system prints as "IV"; inverse names each relation by what it omits.
func (m *Model) PrintName(inverse bool) string {
	parts := make([]string, 0, len(m.relations))
	var iv string
	for _, r := range m.relations {
		switch {
		case r.IsIVRelation():
			iv = "IV"
		case inverse:
			parts = append(parts, r.InverseName())
		default:
			parts = append(parts, r.Name())
		}
	}
	if iv != "" {
		parts = append([]string{iv}, parts...)
	}
	return strings.Join(parts, ":")
}

func (m *Model) String() string { return m.PrintName(false) }

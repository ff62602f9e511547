// Package model defines relations (variable subsets) and models (collections of
// relations) together with the statistics bag each model carries.
package model

import (
	"sort"
	"strconv"
	"strings"

	"gora/domain/table"
	"gora/domain/variable"
)

// Relation is an immutable, sorted set of variable indices. It may carry the
// projection of the input data onto its variables.
type Relation struct {
	vars    *variable.List
	indices []int
	key     string
	tbl     *table.Table
}

// NewRelation builds a relation over the given variable indices. Duplicates are
// dropped and the indices are sorted; the caller's slice is not retained.
func NewRelation(vars *variable.List, indices []int) *Relation {
	sorted := make([]int, 0, len(indices))
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if !seen[i] {
			seen[i] = true
			sorted = append(sorted, i)
		}
	}
	sort.Ints(sorted)
	return &Relation{vars: vars, indices: sorted, key: RelationKey(sorted)}
}

// RelationKey encodes sorted indices as the canonical relation identity.
func RelationKey(sorted []int) string {
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Indices returns the sorted variable indices. The slice must not be modified.
func (r *Relation) Indices() []int { return r.indices }

// Len returns the number of variables.
func (r *Relation) Len() int { return len(r.indices) }

// Key is the canonical identity of the relation.
func (r *Relation) Key() string { return r.key }

// Vars returns the variable list the relation indexes into.
func (r *Relation) Vars() *variable.List { return r.vars }

// Table returns the projected table, nil when none was made.
func (r *Relation) Table() *table.Table { return r.tbl }

// AttachTable records the projection of the data onto this relation. A relation gets
// at most one table; later calls are ignored.
func (r *Relation) AttachTable(t *table.Table) {
	if r.tbl == nil {
		r.tbl = t
	}
}

// Contains reports whether variable i is part of the relation.
func (r *Relation) Contains(i int) bool {
	pos := sort.SearchInts(r.indices, i)
	return pos < len(r.indices) && r.indices[pos] == i
}

// Covers reports whether every variable of o is in r (o ⊆ r).
func (r *Relation) Covers(o *Relation) bool {
	if o.Len() > r.Len() {
		return false
	}
	for _, i := range o.indices {
		if !r.Contains(i) {
			return false
		}
	}
	return true
}

// Equals compares variable sets.
func (r *Relation) Equals(o *Relation) bool { return r.key == o.key }

// Intersect returns the sorted indices shared by both relations.
func (r *Relation) Intersect(o *Relation) []int {
	var out []int
	for _, i := range r.indices {
		if o.Contains(i) {
			out = append(out, i)
		}
	}
	return out
}

// Without returns the indices of r with variable i removed.
func (r *Relation) Without(i int) []int {
	out := make([]int, 0, len(r.indices))
	for _, v := range r.indices {
		if v != i {
			out = append(out, v)
		}
	}
	return out
}

// ContainsDV reports whether the relation includes a dependent variable.
func (r *Relation) ContainsDV() bool {
	for _, i := range r.indices {
		if r.vars.At(i).Role == variable.RoleDV {
			return true
		}
	}
	return false
}

// IsIVRelation reports whether this is the relation of all independent variables of a
// directed system.
func (r *Relation) IsIVRelation() bool {
	if !r.vars.IsDirected() {
		return false
	}
	return RelationKey(r.vars.IVIndices()) == r.key
}

// Name concatenates the variable abbreviations.
func (r *Relation) Name() string { return r.vars.Abbrevs(r.indices) }

// InverseName names the relation by the variables it omits.
func (r *Relation) InverseName() string {
	var missing []int
	for i := 0; i < r.vars.Len(); i++ {
		if !r.Contains(i) {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return r.Name()
	}
	return "^" + r.vars.Abbrevs(missing)
}

// lessRelations orders relations by their indices, lexicographically.
func lessRelations(a, b *Relation) bool {
	for i := 0; i < len(a.indices) && i < len(b.indices); i++ {
		if a.indices[i] != b.indices[i] {
			return a.indices[i] < b.indices[i]
		}
	}
	return len(a.indices) < len(b.indices)
}

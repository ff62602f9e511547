// Package table implements sparse contingency tables over packed state keys.
//
// A key packs one state per variable (see variable.List). Projected tables keep only the
// bits of their relation's variables; the other bits are zero and carry no meaning.
package table

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"gora/domain/core"
	"gora/domain/variable"
	"gora/internal/stats"
)

// Key is a packed state vector.
type Key uint64

// Table maps state keys to frequencies or probabilities.
type Table struct {
	vars  *variable.List
	cells map[Key]float64
}

// New creates an empty table over vars.
func New(vars *variable.List) *Table {
	return &Table{vars: vars, cells: make(map[Key]float64)}
}

// Vars returns the variable list the keys are packed against.
func (t *Table) Vars() *variable.List { return t.vars }

// Len returns the number of stored cells.
func (t *Table) Len() int { return len(t.cells) }

// Get returns the value of a cell, zero when absent.
func (t *Table) Get(k Key) float64 { return t.cells[k] }

// Set stores a value; zero removes the cell.
func (t *Table) Set(k Key, v float64) {
	if v == 0 {
		delete(t.cells, k)
		return
	}
	t.cells[k] = v
}

// Add accumulates a value into a cell.
func (t *Table) Add(k Key, v float64) {
	t.Set(k, t.cells[k]+v)
}

// AddStates accumulates a frequency for a full state vector.
func (t *Table) AddStates(states []int, freq float64) error {
	k, err := t.vars.KeyOf(states)
	if err != nil {
		return err
	}
	t.Add(Key(k), freq)
	return nil
}

// Keys returns the stored keys in ascending order.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.cells))
	for k := range t.cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Each visits the cells in ascending key order.
func (t *Table) Each(fn func(k Key, v float64)) {
	for _, k := range t.Keys() {
		fn(k, t.cells[k])
	}
}

// Values returns the cell values in ascending key order.
func (t *Table) Values() []float64 {
	keys := t.Keys()
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = t.cells[k]
	}
	return out
}

// Fingerprint hashes the variable declarations and every cell, so equal inputs
// hash equally regardless of row order.
func (t *Table) Fingerprint() core.Hash {
	var b strings.Builder
	for i := 0; i < t.vars.Len(); i++ {
		v := t.vars.At(i)
		fmt.Fprintf(&b, "%s,%s,%s,%s;", v.Name, v.Abbrev, v.Role, strings.Join(v.States, "|"))
	}
	t.Each(func(k Key, v float64) {
		b.WriteString(strconv.FormatUint(uint64(k), 16))
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte(';')
	})
	return core.NewHash([]byte(b.String()))
}

// Sum returns the total of all cells.
func (t *Table) Sum() float64 {
	return floats.Sum(t.Values())
}

// Normalize rescales the table to sum to one and returns the previous total.
func (t *Table) Normalize() (float64, error) {
	total := t.Sum()
	if total <= 0 {
		return 0, core.NewDataError(0, "table has no positive frequencies")
	}
	for k, v := range t.cells {
		if v < 0 {
			return 0, core.NewDataError(0, fmt.Sprintf("negative frequency %g", v))
		}
		t.cells[k] = v / total
	}
	return total, nil
}

// Copy returns an independent copy.
func (t *Table) Copy() *Table {
	out := &Table{vars: t.vars, cells: make(map[Key]float64, len(t.cells))}
	for k, v := range t.cells {
		out.cells[k] = v
	}
	return out
}

// Scale multiplies every cell by c.
func (t *Table) Scale(c float64) {
	for k, v := range t.cells {
		t.cells[k] = v * c
	}
}

// Project marginalizes the table onto the given variables.
func (t *Table) Project(indices []int) *Table {
	mask := Key(t.vars.Mask(indices))
	out := New(t.vars)
	for k, v := range t.cells {
		out.cells[k&mask] += v
	}
	return out
}

// Entropy returns the Shannon entropy in bits of a probability table.
func (t *Table) Entropy() float64 {
	return stats.Entropy(t.Values())
}

// Value returns the state of variable i in key k.
func (t *Table) Value(k Key, i int) int {
	return t.vars.Value(uint64(k), i)
}

// MaxAbsDiff returns the largest absolute cell difference between two tables.
func MaxAbsDiff(a, b *Table) float64 {
	diff := 0.0
	for k, v := range a.cells {
		diff = math.Max(diff, math.Abs(v-b.cells[k]))
	}
	for k, v := range b.cells {
		if _, ok := a.cells[k]; !ok {
			diff = math.Max(diff, math.Abs(v))
		}
	}
	return diff
}

// EnumerateStates calls fn for every full state of the variables in indices, with the
// remaining key bits zero. It fails when the state space exceeds limit.
func EnumerateStates(vars *variable.List, indices []int, limit float64, fn func(k Key)) error {
	if size := vars.StateSpaceSize(indices); size > limit {
		return fmt.Errorf("%w: %.0f states exceeds limit %.0f", core.ErrStateSpaceTooLarge, size, limit)
	}
	var walk func(pos int, key uint64)
	walk = func(pos int, key uint64) {
		if pos == len(indices) {
			fn(Key(key))
			return
		}
		v := indices[pos]
		for s := 0; s < vars.At(v).Cardinality; s++ {
			walk(pos+1, vars.SetValue(key, v, s))
		}
	}
	walk(0, 0)
	return nil
}

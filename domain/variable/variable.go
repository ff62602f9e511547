// Package variable defines the variables of a reconstructability analysis and the
// packed-key layout that tables use to address their states.
package variable

import (
	"fmt"
	"math/bits"
	"strings"
	"unicode"

	"gora/domain/core"
)

// Role tells whether a variable is an input (independent) or an output (dependent).
// Neutral systems use RoleIV for every variable.
type Role int

const (
	RoleIV Role = iota
	RoleDV
)

func (r Role) String() string {
	if r == RoleDV {
		return "DV"
	}
	return "IV"
}

// Variable is one dimension of the data.
type Variable struct {
	Name        string
	Abbrev      string
	Cardinality int
	Role        Role
	States      []string

	offset uint
	width  uint
}

// StateIndex returns the index of a state label, or -1.
func (v *Variable) StateIndex(label string) int {
	for i, s := range v.States {
		if s == label {
			return i
		}
	}
	return -1
}

// List owns the variables of one analysis in declaration order.
type List struct {
	vars     []*Variable
	byAbbrev map[string]int
	usedBits uint
}

// NewList validates the variables and lays out their key bits.
func NewList(vars ...Variable) (*List, error) {
	if len(vars) == 0 {
		return nil, core.NewDataError(0, "no variables declared")
	}
	l := &List{
		vars:     make([]*Variable, 0, len(vars)),
		byAbbrev: make(map[string]int, len(vars)),
	}
	for i := range vars {
		v := vars[i]
		if v.Cardinality < 1 {
			return nil, core.NewDataError(0, fmt.Sprintf("variable %q has cardinality %d", v.Name, v.Cardinality))
		}
		abbrev, err := NormalizeAbbrev(v.Abbrev)
		if err != nil {
			return nil, err
		}
		if _, dup := l.byAbbrev[abbrev]; dup {
			return nil, core.NewDataError(0, fmt.Sprintf("duplicate abbreviation %q", abbrev))
		}
		v.Abbrev = abbrev
		v.width = widthFor(v.Cardinality)
		v.offset = l.usedBits
		l.usedBits += v.width
		if l.usedBits > 64 {
			return nil, fmt.Errorf("%w: %d variables need more than 64 key bits", core.ErrStateSpaceTooLarge, len(vars))
		}
		if v.States == nil {
			v.States = make([]string, 0, v.Cardinality)
		}
		l.byAbbrev[abbrev] = len(l.vars)
		l.vars = append(l.vars, &v)
	}
	return l, nil
}

func widthFor(cardinality int) uint {
	if cardinality <= 1 {
		return 1
	}
	return uint(bits.Len(uint(cardinality - 1)))
}

// NormalizeAbbrev upper-cases the first letter and lower-cases the rest, so that model
// names can be split at upper-case letters.
func NormalizeAbbrev(abbrev string) (string, error) {
	abbrev = strings.TrimSpace(abbrev)
	if abbrev == "" {
		return "", core.NewDataError(0, "empty variable abbreviation")
	}
	runes := []rune(strings.ToLower(abbrev))
	if !unicode.IsLetter(runes[0]) {
		return "", core.NewDataError(0, fmt.Sprintf("abbreviation %q must start with a letter", abbrev))
	}
	for _, r := range runes[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", core.NewDataError(0, fmt.Sprintf("abbreviation %q must be alphanumeric", abbrev))
		}
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes), nil
}

func (l *List) Len() int { return len(l.vars) }

func (l *List) At(i int) *Variable { return l.vars[i] }

// FindAbbrev looks a variable up by its (normalized) abbreviation.
func (l *List) FindAbbrev(abbrev string) (int, bool) {
	i, ok := l.byAbbrev[abbrev]
	return i, ok
}

// IsDirected reports whether any variable is dependent.
func (l *List) IsDirected() bool {
	for _, v := range l.vars {
		if v.Role == RoleDV {
			return true
		}
	}
	return false
}

// DVIndices returns the indices of the dependent variables.
func (l *List) DVIndices() []int { return l.indices(RoleDV) }

// IVIndices returns the indices of the independent variables.
func (l *List) IVIndices() []int { return l.indices(RoleIV) }

func (l *List) indices(role Role) []int {
	var out []int
	for i, v := range l.vars {
		if v.Role == role {
			out = append(out, i)
		}
	}
	return out
}

// AllIndices returns 0..Len()-1.
func (l *List) AllIndices() []int {
	out := make([]int, len(l.vars))
	for i := range out {
		out[i] = i
	}
	return out
}

// StateSpaceSize is the product of the cardinalities of the given variables (all when
// indices is nil). It is returned as float64 because it can exceed the int range.
func (l *List) StateSpaceSize(indices []int) float64 {
	if indices == nil {
		indices = l.AllIndices()
	}
	size := 1.0
	for _, i := range indices {
		size *= float64(l.vars[i].Cardinality)
	}
	return size
}

// Abbrevs concatenates the abbreviations of the given variables.
func (l *List) Abbrevs(indices []int) string {
	var b strings.Builder
	for _, i := range indices {
		b.WriteString(l.vars[i].Abbrev)
	}
	return b.String()
}

// Mask returns the key bits covering the given variables.
func (l *List) Mask(indices []int) uint64 {
	var mask uint64
	for _, i := range indices {
		v := l.vars[i]
		mask |= ((uint64(1) << v.width) - 1) << v.offset
	}
	return mask
}

// Value extracts the state of variable i from a packed key.
func (l *List) Value(key uint64, i int) int {
	v := l.vars[i]
	return int((key >> v.offset) & ((uint64(1) << v.width) - 1))
}

// SetValue stores state s of variable i into a packed key.
func (l *List) SetValue(key uint64, i, s int) uint64 {
	v := l.vars[i]
	field := ((uint64(1) << v.width) - 1) << v.offset
	return (key &^ field) | (uint64(s) << v.offset)
}

// KeyOf packs a full state vector, one state index per variable.
func (l *List) KeyOf(states []int) (uint64, error) {
	if len(states) != len(l.vars) {
		return 0, core.NewDataError(0, fmt.Sprintf("expected %d states, got %d", len(l.vars), len(states)))
	}
	var key uint64
	for i, s := range states {
		if s < 0 || s >= l.vars[i].Cardinality {
			return 0, core.NewDataError(0, fmt.Sprintf("state %d out of range for %s", s, l.vars[i].Abbrev))
		}
		key = l.SetValue(key, i, s)
	}
	return key, nil
}

// AddState maps a state label of variable i to its index, registering the label when
// it is new. It fails once the declared cardinality is exhausted.
func (l *List) AddState(i int, label string) (int, error) {
	v := l.vars[i]
	if idx := v.StateIndex(label); idx >= 0 {
		return idx, nil
	}
	if len(v.States) >= v.Cardinality {
		return -1, core.NewDataError(0, fmt.Sprintf("variable %s has more than %d states (saw %q)", v.Abbrev, v.Cardinality, label))
	}
	v.States = append(v.States, label)
	return len(v.States) - 1, nil
}

// StateLabel returns the label of state s of variable i, or its index when unlabeled.
func (l *List) StateLabel(i, s int) string {
	v := l.vars[i]
	if s < len(v.States) {
		return v.States[s]
	}
	return fmt.Sprint(s)
}

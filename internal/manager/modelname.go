package manager

import (
	"fmt"
	"strings"
	"unicode"

	"gora/domain/core"
	"gora/domain/model"
	"gora/domain/variable"
)

// ParseModelName turns a model name such as "AB:BC" into variable index sets.
//
// Components are separated by ":" and are concatenated abbreviations, split before
// each upper-case letter. "IV" in a directed system stands for the relation of all
// independent variables; "IVI" in a neutral system adds a singleton relation for each
// variable not otherwise mentioned. Every declared variable must be covered, and in a
// directed system every other component must include a dependent variable.
func (m *Manager) ParseModelName(name string) ([][]int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, core.NewModelNameError(name, "empty name")
	}
	var sets [][]int
	ivi := false
	for _, comp := range strings.Split(name, ":") {
		comp = strings.TrimSpace(comp)
		switch {
		case comp == "":
			return nil, core.NewModelNameError(name, "empty component")
		case m.IsDirected() && comp == "IV":
			sets = append(sets, m.vars.IVIndices())
			continue
		case !m.IsDirected() && comp == "IVI":
			ivi = true
			continue
		}
		abbrevs, err := splitAbbrevs(comp)
		if err != nil {
			return nil, core.NewModelNameError(name, err.Error())
		}
		set := make([]int, 0, len(abbrevs))
		hasDV := false
		for _, a := range abbrevs {
			i, ok := m.vars.FindAbbrev(a)
			if !ok {
				return nil, core.NewModelNameError(name, "undeclared variable "+a)
			}
			if m.vars.At(i).Role == variable.RoleDV {
				hasDV = true
			}
			set = append(set, i)
		}
		if m.IsDirected() && !hasDV {
			return nil, core.NewModelNameError(name, "component "+comp+" has no dependent variable")
		}
		sets = append(sets, set)
	}

	covered := make([]bool, m.vars.Len())
	for _, set := range sets {
		for _, i := range set {
			covered[i] = true
		}
	}
	for i, ok := range covered {
		if ok {
			continue
		}
		if !ivi {
			return nil, core.NewModelNameError(name, "variable "+m.vars.At(i).Abbrev+" is not in the model")
		}
		sets = append(sets, []int{i})
	}
	return sets, nil
}

func splitAbbrevs(comp string) ([]string, error) {
	var out []string
	var cur []rune
	for i, r := range comp {
		if i == 0 && !unicode.IsUpper(r) {
			return nil, fmt.Errorf("component %q must start with an upper-case letter", comp)
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return nil, fmt.Errorf("component %q contains %q", comp, r)
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out, nil
}

// MakeModel parses a model name and returns the matching cached model, building it
// when needed.
func (m *Manager) MakeModel(name string, makeProject bool) (*model.Model, error) {
	sets, err := m.ParseModelName(name)
	if err != nil {
		return nil, err
	}
	relations := make([]*model.Relation, len(sets))
	for i, set := range sets {
		relations[i] = m.MakeRelation(set, makeProject)
	}
	mdl, fromCache := m.cacheModel(relations)
	if !fromCache {
		m.logger.Debug("built model %s", mdl)
	}
	return mdl, nil
}

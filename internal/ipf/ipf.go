// Package ipf fits a model's expected table by iterative proportional fitting.
package ipf

import (
	"fmt"

	"gora/domain/table"
	"gora/domain/variable"
)

// Marginal is a relation's variables together with the data projected onto them.
type Marginal struct {
	Indices []int
	Table   *table.Table
}

// Options bound the fitting loop.
type Options struct {
	MaxIterations int
	Tolerance     float64
	MaxStateSpace float64
}

// DefaultOptions returns the standard limits.
func DefaultOptions() Options {
	return Options{
		MaxIterations: 1000,
		Tolerance:     1e-10,
		MaxStateSpace: 1e7,
	}
}

// Result describes how a fit ended.
type Result struct {
	Iterations int
	Converged  bool
}

// Fit starts from the uniform distribution over the full state space and rescales it
// against each marginal in turn until no cell moves by more than the tolerance.
// Marginals must be probability tables. With no marginals the uniform table is returned.
func Fit(vars *variable.List, marginals []Marginal, opts Options) (*table.Table, Result, error) {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultOptions().Tolerance
	}
	if opts.MaxStateSpace <= 0 {
		opts.MaxStateSpace = DefaultOptions().MaxStateSpace
	}

	fit, err := Uniform(vars, opts.MaxStateSpace)
	if err != nil {
		return nil, Result{}, err
	}
	if len(marginals) == 0 {
		return fit, Result{Converged: true}, nil
	}

	for iter := 1; iter <= opts.MaxIterations; iter++ {
		prev := fit.Copy()
		for _, m := range marginals {
			if m.Table == nil {
				return nil, Result{Iterations: iter}, fmt.Errorf("marginal over %v has no table", m.Indices)
			}
			adjust(fit, m)
		}
		if table.MaxAbsDiff(prev, fit) < opts.Tolerance {
			return fit, Result{Iterations: iter, Converged: true}, nil
		}
	}
	return fit, Result{Iterations: opts.MaxIterations, Converged: false}, nil
}

// Uniform builds the uniform probability table over every state of vars.
func Uniform(vars *variable.List, maxStateSpace float64) (*table.Table, error) {
	size := vars.StateSpaceSize(nil)
	out := table.New(vars)
	err := table.EnumerateStates(vars, vars.AllIndices(), maxStateSpace, func(k table.Key) {
		out.Set(k, 1/size)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func adjust(fit *table.Table, m Marginal) {
	mask := table.Key(fit.Vars().Mask(m.Indices))
	current := fit.Project(m.Indices)
	for _, k := range fit.Keys() {
		cur := current.Get(k & mask)
		if cur <= 0 {
			fit.Set(k, 0)
			continue
		}
		fit.Set(k, fit.Get(k)*m.Table.Get(k&mask)/cur)
	}
}

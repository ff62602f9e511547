// Package stats collects the distribution and information helpers used by the
// statistics engine.
package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquareSurvival computes P(X >= chiSquare) for a chi-square distribution with the
// given degrees of freedom. Zero or negative degrees of freedom yield 1.
func ChiSquareSurvival(chiSquare, degreesOfFreedom float64) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(chiSquare) {
		return 1.0
	}
	if chiSquare <= 0 {
		return 1.0
	}
	chiDist := distuv.ChiSquared{K: degreesOfFreedom}
	p := chiDist.Survival(chiSquare)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// ChiSquareCritical returns the statistic value whose upper tail has probability alpha.
func ChiSquareCritical(alpha, degreesOfFreedom float64) float64 {
	if degreesOfFreedom <= 0 || alpha <= 0 || alpha >= 1 {
		return math.NaN()
	}
	return distuv.ChiSquared{K: degreesOfFreedom}.Quantile(1 - alpha)
}

// Entropy returns the Shannon entropy in bits of a probability vector. The input is not
// modified. Zero cells contribute nothing; an empty or all-zero vector has entropy 0.
func Entropy(probabilities []float64) float64 {
	data := make(mstats.Float64Data, 0, len(probabilities))
	for _, p := range probabilities {
		if p > 0 {
			data = append(data, p)
		}
	}
	if len(data) == 0 {
		return 0
	}
	h, err := mstats.Entropy(data)
	if err != nil || math.IsNaN(h) {
		return 0
	}
	return h / math.Ln2
}

// ArgMax returns the index of the largest value, preferring the lowest index on ties.
// It returns -1 for an empty slice.
func ArgMax(values []float64) int {
	if len(values) == 0 {
		return -1
	}
	best, err := mstats.Max(values)
	if err != nil {
		return -1
	}
	for i, v := range values {
		if v == best {
			return i
		}
	}
	return -1
}

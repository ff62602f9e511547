package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntropy_Uniform(t *testing.T) {
	assert.InDelta(t, 1.0, Entropy([]float64{0.5, 0.5}), 1e-12)
	assert.InDelta(t, 2.0, Entropy([]float64{0.25, 0.25, 0.25, 0.25}), 1e-12)
}

func TestEntropy_IgnoresZeroCellsAndInput(t *testing.T) {
	in := []float64{0.5, 0, 0.5}
	assert.InDelta(t, 1.0, Entropy(in), 1e-12)
	assert.Equal(t, []float64{0.5, 0, 0.5}, in, "input must not be normalized in place")
}

func TestEntropy_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, Entropy(nil))
	assert.Equal(t, 0.0, Entropy([]float64{0, 0}))
	assert.InDelta(t, 0.0, Entropy([]float64{1}), 1e-12)
}

func TestChiSquareSurvival(t *testing.T) {
	// 3.841 is the 95th percentile of chi-square with one degree of freedom
	assert.InDelta(t, 0.05, ChiSquareSurvival(3.841458820694124, 1), 1e-6)
	assert.Equal(t, 1.0, ChiSquareSurvival(10, 0))
	assert.Equal(t, 1.0, ChiSquareSurvival(0, 4))
	assert.Equal(t, 1.0, ChiSquareSurvival(math.NaN(), 4))
}

func TestChiSquareCritical(t *testing.T) {
	assert.InDelta(t, 3.841458820694124, ChiSquareCritical(0.05, 1), 1e-6)
	assert.True(t, math.IsNaN(ChiSquareCritical(0.05, 0)))
}

func TestArgMax(t *testing.T) {
	assert.Equal(t, -1, ArgMax(nil))
	assert.Equal(t, 1, ArgMax([]float64{0.1, 0.7, 0.2}))
	assert.Equal(t, 0, ArgMax([]float64{0.4, 0.4, 0.2}), "ties resolve to the lowest index")
}

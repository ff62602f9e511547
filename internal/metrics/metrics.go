// Package metrics registers the prometheus collectors of the analysis engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChildRelations counts relations produced by single-variable removal
	ChildRelations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gora_child_relations_total",
		Help: "Child relations generated by the lattice generator",
	})

	// ChildModels counts child model requests by whether the cache served them
	ChildModels = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gora_child_models_total",
		Help: "Child model requests by cache result",
	}, []string{"result"})

	// FitDuration tracks IPF fits
	FitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gora_fit_duration_seconds",
		Help:    "Fit table construction time in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	// FitIterations tracks IPF iterations per fit
	FitIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gora_fit_iterations",
		Help:    "IPF iterations per fit",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 500, 1000},
	})

	// Runs counts completed fit and search runs by kind and outcome
	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gora_runs_total",
		Help: "Analysis runs by kind and outcome",
	}, []string{"kind", "outcome"})
)

// CacheResult labels a child model request.
func CacheResult(fromCache bool) string {
	if fromCache {
		return "hit"
	}
	return "miss"
}

// Package testkit holds in-memory adapters and small fixtures for tests and for running
// without a database.
package testkit

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gora/domain/core"
	"gora/domain/table"
	"gora/domain/variable"
	"gora/internal/errors"
	"gora/models"
	"gora/ports"
)

// InMemoryRunRepository implements ports.RunRepository with in-memory storage
type InMemoryRunRepository struct {
	runs map[core.RunID]*models.Run
	mu   sync.RWMutex
}

var _ ports.RunRepository = (*InMemoryRunRepository)(nil)

func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]*models.Run)}
}

func (s *InMemoryRunRepository) SaveRun(ctx context.Context, run *models.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return errors.InvalidInput(fmt.Sprintf("run %s already exists", run.ID), nil)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	for i := range run.Models {
		run.Models[i].RunID = run.ID
		run.Models[i].Position = i
	}
	stored := *run
	stored.Models = append([]models.ModelResult(nil), run.Models...)
	s.runs[run.ID] = &stored
	return nil
}

func (s *InMemoryRunRepository) GetRun(ctx context.Context, id core.RunID) (*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return nil, errors.NotFound("run " + id.String())
	}
	out := *run
	out.Models = append([]models.ModelResult(nil), run.Models...)
	return &out, nil
}

func (s *InMemoryRunRepository) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*models.Run, 0, len(s.runs))
	for _, run := range s.runs {
		out := *run
		out.Models = nil
		runs = append(runs, &out)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// ABCFrequency is the cell count used by the ABC fixture: A and B interact with C, and
// A disagrees with C more often than it agrees.
func ABCFrequency(a, b, c int) int {
	return 1 + a + 2*b + 3*c + 4*a*b*c + 5*(a^c)
}

// ABCTable builds A(2) B(3) C(2) data from ABCFrequency. When directed is set, C is the
// dependent variable.
func ABCTable(directed bool) (*table.Table, error) {
	c := variable.Variable{Name: "outcome", Abbrev: "C", Cardinality: 2}
	if directed {
		c.Role = variable.RoleDV
	}
	vars, err := variable.NewList(
		variable.Variable{Name: "alpha", Abbrev: "A", Cardinality: 2},
		variable.Variable{Name: "beta", Abbrev: "B", Cardinality: 3},
		c,
	)
	if err != nil {
		return nil, err
	}
	data := table.New(vars)
	for a := 0; a < 2; a++ {
		for b := 0; b < 3; b++ {
			for cc := 0; cc < 2; cc++ {
				if err := data.AddStates([]int{a, b, cc}, float64(ABCFrequency(a, b, cc))); err != nil {
					return nil, err
				}
			}
		}
	}
	return data, nil
}

// ABCInput renders the ABC fixture as an OCCAM input file with the given option lines
// placed before the variable declarations.
func ABCInput(directed bool, optionLines ...string) string {
	var b strings.Builder
	for _, line := range optionLines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	dvType := 1
	if directed {
		dvType = 2
	}
	fmt.Fprintf(&b, ":nominal\nalpha,2,1,a\nbeta,3,1,b\noutcome,2,%d,c\n:data\n", dvType)
	for a := 0; a < 2; a++ {
		for bb := 0; bb < 3; bb++ {
			for c := 0; c < 2; c++ {
				fmt.Fprintf(&b, "%d %d %d %d\n", a, bb, c, ABCFrequency(a, bb, c))
			}
		}
	}
	return b.String()
}

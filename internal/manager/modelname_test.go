package manager

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gora/domain/core"
)

func TestParseModelName(t *testing.T) {
	tests := []struct {
		name     string
		directed bool
		model    string
		want     [][]int
		wantErr  bool
	}{
		{name: "saturated", model: "ABC", want: [][]int{{0, 1, 2}}},
		{name: "pairs", model: "AB:BC", want: [][]int{{0, 1}, {1, 2}}},
		{name: "ivi fills singletons", model: "AB:IVI", want: [][]int{{0, 1}, {2}}},
		{name: "uncovered variable", model: "AB", wantErr: true},
		{name: "undeclared variable", model: "AB:CD", wantErr: true},
		{name: "lower-case start", model: "ab:C", wantErr: true},
		{name: "empty component", model: "AB::C", wantErr: true},
		{name: "empty", model: " ", wantErr: true},
		{name: "iv in neutral system", model: "IV:C", wantErr: true},
		{name: "directed iv", directed: true, model: "IV:AC", want: [][]int{{0, 1}, {0, 2}}},
		{name: "directed component without dv", directed: true, model: "IV:AB", wantErr: true},
		{name: "ivi in directed system", directed: true, model: "IVI:AC", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newABC(t, tt.directed)
			got, err := m.ParseModelName(tt.model)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, core.ErrInvalidModelName))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMakeModel_CachesByCanonicalForm(t *testing.T) {
	m := newABC(t, false)
	a, err := m.MakeModel("BC:AB", false)
	require.NoError(t, err)
	b, err := m.MakeModel("AB:BC:B", false)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, "AB:BC", a.PrintName(false))
	assert.Equal(t, 1, m.CachedModels())
}

func TestMakeModel_Directed(t *testing.T) {
	m := newABC(t, true)
	mdl, err := m.MakeModel("IV:AC:BC", true)
	require.NoError(t, err)
	assert.Equal(t, "IV:AC:BC", mdl.PrintName(false))
	for _, r := range mdl.Relations() {
		assert.NotNil(t, r.Table())
	}
}

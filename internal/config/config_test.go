package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gora/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "PORT", "DDF_METHOD", "SORT_DIRECTION", "REFERENCE_MODEL", "IPF_MAX_ITERATIONS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, 0, cfg.Analysis.DDFMethod)
	assert.Equal(t, "default", cfg.Analysis.ReferenceModel)
	assert.Equal(t, "descending", cfg.Analysis.SortDirection)
	assert.Equal(t, 1000, cfg.Analysis.IPFMaxIterations)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DDF_METHOD", "1")
	t.Setenv("INVERSE_NOTATION", "true")
	t.Setenv("SORT_DIRECTION", "Ascending")
	t.Setenv("FILTER", "alpha < 0.05")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Analysis.DDFMethod)
	assert.True(t, cfg.Analysis.InverseNotation)
	assert.Equal(t, "ascending", cfg.Analysis.SortDirection)
	assert.Equal(t, "alpha < 0.05", cfg.Analysis.Filter)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DDF_METHOD", "2")
	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

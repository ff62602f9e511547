package occam

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gora/domain/core"
	"gora/domain/variable"
	"gora/internal"
	"gora/internal/options"
)

const directedInput = `# smoking study
:action
search
:search-width 2
:nominal
age,2,1,a
weight,3,0,w
smoker,2,1,s
outcome,2,2,z
:data
young 1 no  sick 10
young 2 yes well 4
old   1 no  well 7
old   3 yes sick 9   # trailing comment
old   2 yes sick 1
:sort-by
bic
`

func quietReader() *Reader {
	return NewReader(internal.NewLogger(internal.LogLevelError))
}

func TestRead_DirectedFile(t *testing.T) {
	in, err := quietReader().Read(strings.NewReader(directedInput), nil)
	require.NoError(t, err)

	vars := in.Vars()
	require.Equal(t, 3, vars.Len(), "ignored variables are dropped")
	assert.Equal(t, "A", vars.At(0).Abbrev)
	assert.Equal(t, "S", vars.At(1).Abbrev)
	assert.Equal(t, "Z", vars.At(2).Abbrev)
	assert.Equal(t, variable.RoleDV, vars.At(2).Role)
	assert.True(t, vars.IsDirected())
	assert.Equal(t, []string{"young", "old"}, vars.At(0).States)
	assert.Equal(t, []string{"sick", "well"}, vars.At(2).States)

	assert.InDelta(t, 31.0, in.Data.Sum(), 1e-12)
	// old yes sick appears twice
	assert.Equal(t, 4, in.Data.Len())

	action, ok := in.Options.GetString(options.OptAction)
	require.True(t, ok)
	assert.Equal(t, "search", action)
	width, ok := in.Options.GetInt(options.OptSearchWidth)
	require.True(t, ok)
	assert.Equal(t, 2, width)
	sortBy, _ := in.Options.GetString(options.OptSortBy)
	assert.Equal(t, "bic", sortBy)
	assert.Len(t, in.Options.GetAll(options.OptNominal), 4)
}

func TestRead_NoFrequency(t *testing.T) {
	src := ":nominal\na,2,1,a\nb,2,1,b\n:no-frequency\n:data\n0 0\n0 1\n0 1\n1 1\n"
	in, err := quietReader().Read(strings.NewReader(src), nil)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, in.Data.Sum(), 1e-12)
	assert.Equal(t, 3, in.Data.Len())
	assert.False(t, in.Vars().IsDirected())
}

func TestRead_CommaSeparatedRows(t *testing.T) {
	src := ":nominal\na,2,1,a\nb,2,1,b\n:data\n0,0,3\n1,1,2.5\n"
	in, err := quietReader().Read(strings.NewReader(src), nil)
	require.NoError(t, err)
	assert.InDelta(t, 5.5, in.Data.Sum(), 1e-12)
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no variables", ":data\n0 1\n"},
		{"no data", ":nominal\na,2,1,a\n"},
		{"short declaration", ":nominal\na,2,1\n:data\n0 1\n"},
		{"bad cardinality", ":nominal\na,x,1,a\n:data\n0 1\n"},
		{"unknown type", ":nominal\na,2,7,a\n:data\n0 1\n"},
		{"wrong column count", ":nominal\na,2,1,a\nb,2,1,b\n:data\n0 1\n"},
		{"bad frequency", ":nominal\na,2,1,a\n:data\n0 x\n"},
		{"negative frequency", ":nominal\na,2,1,a\n:data\n0 -1\n"},
		{"too many states", ":nominal\na,2,1,a\n:data\n0 1\n1 1\n2 1\n"},
		{"duplicate abbreviation", ":nominal\na,2,1,a\nb,2,1,A\n:data\n0 0 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quietReader().Read(strings.NewReader(tt.src), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvalidData), "%v", err)
		})
	}
}

func TestRead_UnknownOption(t *testing.T) {
	_, err := quietReader().Read(strings.NewReader(":colour red\n:nominal\na,2,1,a\n:data\n0 1\n"), nil)
	assert.True(t, errors.Is(err, core.ErrUnknownOption))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.txt")
	require.NoError(t, os.WriteFile(path, []byte(directedInput), 0o644))

	in, err := quietReader().ReadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "study.txt", in.Name)

	_, err = quietReader().ReadFile(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Error(t, err)
}

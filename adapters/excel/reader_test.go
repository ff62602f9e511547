package excel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gora/domain/core"
	"gora/domain/variable"
	"gora/internal"
)

func quiet() *internal.Logger { return internal.NewLogger(internal.LogLevelError) }

func TestReadCSV_ToTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.csv")
	content := "id,sex,smoker,sick\n1,f,yes,y\n2,m,no,n\n3,f,no,n\n4,f,yes,y\n,,,\n5,m,yes,n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := Config{DV: "sick", Ignore: []string{"id"}}
	data, err := NewDataReader(path, cfg, quiet()).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "sex", "smoker", "sick"}, data.Headers)
	require.Len(t, data.Rows, 5, "blank rows are skipped")

	tbl, err := ToTable(data, cfg)
	require.NoError(t, err)
	vars := tbl.Vars()
	require.Equal(t, 3, vars.Len())
	assert.Equal(t, "sex", vars.At(0).Name)
	assert.Equal(t, "A", vars.At(0).Abbrev)
	assert.Equal(t, []string{"f", "m"}, vars.At(0).States)
	assert.Equal(t, variable.RoleDV, vars.At(2).Role)
	assert.InDelta(t, 5.0, tbl.Sum(), 1e-12)
	assert.Equal(t, 4, tbl.Len())
}

func TestReadXLSX_WithFrequencyColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"colour", "size", "count"},
		{"red", "big", 3},
		{"blue", "big", 2},
		{"red", "small", 5},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	cfg := Config{Frequency: "count"}
	data, err := NewDataReader(path, cfg, quiet()).ReadData()
	require.NoError(t, err)
	require.Len(t, data.Rows, 3)

	tbl, err := ToTable(data, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Vars().Len())
	assert.False(t, tbl.Vars().IsDirected())
	assert.InDelta(t, 10.0, tbl.Sum(), 1e-12)
}

func TestReadData_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := NewDataReader(filepath.Join(dir, "missing.csv"), DefaultConfig(), quiet()).ReadData()
	assert.Error(t, err)

	headerOnly := filepath.Join(dir, "header.csv")
	require.NoError(t, os.WriteFile(headerOnly, []byte("a,b\n"), 0o644))
	_, err = NewDataReader(headerOnly, DefaultConfig(), quiet()).ReadData()
	assert.Error(t, err)
}

func TestToTable_Errors(t *testing.T) {
	data := &CaseData{Headers: []string{"a", "n"}, Rows: [][]string{{"x", "1"}, {"y", "z"}}}

	_, err := ToTable(data, Config{Frequency: "n"})
	assert.True(t, errors.Is(err, core.ErrInvalidData))

	_, err = ToTable(data, Config{Frequency: "weight"})
	assert.True(t, errors.Is(err, core.ErrInvalidData))

	_, err = ToTable(data, Config{DV: "outcome"})
	assert.True(t, errors.Is(err, core.ErrInvalidData))

	_, err = ToTable(&CaseData{Headers: []string{"a"}}, DefaultConfig())
	assert.True(t, errors.Is(err, core.ErrInvalidData))
}

func TestAbbrev(t *testing.T) {
	assert.Equal(t, "A", Abbrev(0))
	assert.Equal(t, "Z", Abbrev(25))
	assert.Equal(t, "A1", Abbrev(26))
	assert.Equal(t, "C2", Abbrev(54))
}

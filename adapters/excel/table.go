package excel

import (
	"fmt"
	"strconv"

	"gora/domain/core"
	"gora/domain/table"
	"gora/domain/variable"
)

// Abbrev returns the generated abbreviation of the i-th variable: A..Z, then A1..Z1,
// A2..Z2 and so on.
func Abbrev(i int) string {
	first := string(rune('A' + i%26))
	if i < 26 {
		return first
	}
	return first + strconv.Itoa(i/26)
}

// ToTable turns case rows into a frequency table. Every column not ignored becomes a
// variable whose states are its distinct values in order of appearance.
func ToTable(data *CaseData, cfg Config) (*table.Table, error) {
	if data == nil || len(data.Rows) == 0 {
		return nil, core.NewDataError(0, "no cases")
	}
	freqCol := -1
	var columns []int
	for j, h := range data.Headers {
		switch {
		case cfg.Frequency != "" && h == cfg.Frequency:
			freqCol = j
		case cfg.ignored(h):
		default:
			columns = append(columns, j)
		}
	}
	if cfg.Frequency != "" && freqCol < 0 {
		return nil, core.NewDataError(0, fmt.Sprintf("frequency column %q not found", cfg.Frequency))
	}
	if len(columns) == 0 {
		return nil, core.NewDataError(0, "no variable columns")
	}

	labels := make([][]string, len(columns))
	seen := make([]map[string]bool, len(columns))
	for k, col := range columns {
		seen[k] = make(map[string]bool)
		for _, row := range data.Rows {
			if v := row[col]; !seen[k][v] {
				seen[k][v] = true
				labels[k] = append(labels[k], v)
			}
		}
	}

	decls := make([]variable.Variable, len(columns))
	foundDV := cfg.DV == ""
	for k, col := range columns {
		decls[k] = variable.Variable{
			Name:        data.Headers[col],
			Abbrev:      Abbrev(k),
			Cardinality: len(labels[k]),
			States:      labels[k],
		}
		if data.Headers[col] == cfg.DV {
			decls[k].Role = variable.RoleDV
			foundDV = true
		}
	}
	if !foundDV {
		return nil, core.NewDataError(0, fmt.Sprintf("dependent variable column %q not found", cfg.DV))
	}
	vars, err := variable.NewList(decls...)
	if err != nil {
		return nil, err
	}

	t := table.New(vars)
	states := make([]int, len(columns))
	for i, row := range data.Rows {
		for k, col := range columns {
			states[k] = vars.At(k).StateIndex(row[col])
		}
		freq := 1.0
		if freqCol >= 0 {
			f, err := strconv.ParseFloat(row[freqCol], 64)
			if err != nil || f < 0 {
				return nil, core.NewDataError(i+2, fmt.Sprintf("bad frequency %q", row[freqCol]))
			}
			freq = f
		}
		if err := t.AddStates(states, freq); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Package occam reads OCCAM input files: option blocks, the ":nominal" variable
// declarations and the ":data" rows of a contingency table.
package occam

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gora/domain/core"
	"gora/domain/table"
	"gora/domain/variable"
	"gora/internal"
	"gora/internal/options"
)

const (
	typeIgnore = 0
	typeIV     = 1
	typeDV     = 2
)

// Input is a parsed input file.
type Input struct {
	Name    string
	Options *options.Options
	Data    *table.Table
}

// Vars returns the declared variables that take part in the analysis.
func (in *Input) Vars() *variable.List { return in.Data.Vars() }

// Reader parses OCCAM input files into an option set and a frequency table.
type Reader struct {
	logger *internal.Logger
}

// NewReader creates a reader. A nil logger uses the default logger.
func NewReader(logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reader{logger: logger.Named("occam")}
}

// ReadFile opens and parses the file at path.
func (r *Reader) ReadFile(path string, opts *options.Options) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()
	in, err := r.Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	in.Name = filepath.Base(path)
	return in, nil
}

type dataLine struct {
	lineno int
	text   string
}

// Read parses an input file. Options found in the file are added to opts, which is
// created from the standard definitions when nil.
func (r *Reader) Read(src io.Reader, opts *options.Options) (*Input, error) {
	if opts == nil {
		opts = options.NewStandard()
	}

	// Option blocks go to the option reader with their line numbers kept intact; data
	// rows are held back until the variables are known.
	var optionText bytes.Buffer
	var rows []dataLine
	inData := false
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := options.StripComment(scanner.Text())
		if strings.HasPrefix(line, ":") {
			inData = strings.TrimSpace(line[1:]) == "data"
			if inData {
				optionText.WriteByte('\n')
				continue
			}
		}
		if inData {
			if line != "" {
				rows = append(rows, dataLine{lineno: lineno, text: line})
			}
			optionText.WriteByte('\n')
			continue
		}
		optionText.WriteString(line)
		optionText.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if err := opts.ReadOptions(&optionText); err != nil {
		return nil, err
	}

	decls := opts.GetAll(options.OptNominal)
	vars, columns, err := parseNominal(decls)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.NewDataError(0, "no data rows")
	}

	data := table.New(vars)
	withFreq := !opts.GetBool(options.OptNoFrequency)
	if err := readRows(data, rows, columns, len(decls), withFreq); err != nil {
		return nil, err
	}
	r.logger.Debug("read %d variables and %d data rows (%d cells)", vars.Len(), len(rows), data.Len())
	return &Input{Options: opts, Data: data}, nil
}

// parseNominal builds the variable list from "name,cardinality,type,abbrev" lines.
// columns maps each declared column to its variable index, or -1 when ignored.
func parseNominal(decls []string) (*variable.List, []int, error) {
	if len(decls) == 0 {
		return nil, nil, core.NewDataError(0, "no :nominal variables declared")
	}
	var vars []variable.Variable
	columns := make([]int, len(decls))
	for i, decl := range decls {
		fields := strings.Split(decl, ",")
		if len(fields) < 4 {
			return nil, nil, core.NewDataError(0, fmt.Sprintf("variable declaration %q needs name, cardinality, type and abbreviation", decl))
		}
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		card, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, nil, core.NewDataError(0, fmt.Sprintf("variable %s: bad cardinality %q", fields[0], fields[1]))
		}
		kind, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, nil, core.NewDataError(0, fmt.Sprintf("variable %s: bad type %q", fields[0], fields[2]))
		}
		v := variable.Variable{Name: fields[0], Abbrev: fields[3], Cardinality: card}
		switch kind {
		case typeIgnore:
			columns[i] = -1
			continue
		case typeIV:
			v.Role = variable.RoleIV
		case typeDV:
			v.Role = variable.RoleDV
		default:
			return nil, nil, core.NewDataError(0, fmt.Sprintf("variable %s: unknown type %d", fields[0], kind))
		}
		columns[i] = len(vars)
		vars = append(vars, v)
	}
	list, err := variable.NewList(vars...)
	if err != nil {
		return nil, nil, err
	}
	return list, columns, nil
}

func splitRow(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func readRows(data *table.Table, rows []dataLine, columns []int, ncols int, withFreq bool) error {
	vars := data.Vars()
	want := ncols
	if withFreq {
		want++
	}
	states := make([]int, vars.Len())
	for _, row := range rows {
		fields := splitRow(row.text)
		if len(fields) != want {
			return core.NewDataError(row.lineno, fmt.Sprintf("expected %d values, got %d", want, len(fields)))
		}
		for col, vi := range columns {
			if vi < 0 {
				continue
			}
			s, err := vars.AddState(vi, fields[col])
			if err != nil {
				return fmt.Errorf("line %d: %w", row.lineno, err)
			}
			states[vi] = s
		}
		freq := 1.0
		if withFreq {
			f, err := strconv.ParseFloat(fields[ncols], 64)
			if err != nil || f < 0 {
				return core.NewDataError(row.lineno, fmt.Sprintf("bad frequency %q", fields[ncols]))
			}
			freq = f
		}
		if err := data.AddStates(states, freq); err != nil {
			return fmt.Errorf("line %d: %w", row.lineno, err)
		}
	}
	return nil
}

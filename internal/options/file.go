package options

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"gora/domain/core"
)

// StripComment removes a trailing "#" comment and surrounding space.
func StripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// ReadOptions reads an option file: a ":name" line, optionally followed by a value on
// the same line, then value lines until the next ":name". Switches need no value.
func (o *Options) ReadOptions(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var current *Def
	gotValue := false
	flush := func() error {
		if current != nil && !gotValue && current.IsBool() {
			return o.set(current, "")
		}
		return nil
	}
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := StripComment(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if err := flush(); err != nil {
				return err
			}
			name, rest, _ := strings.Cut(line[1:], " ")
			d, err := o.lookup(strings.TrimSpace(name))
			if err != nil {
				return fmt.Errorf("line %d: %w", lineno, err)
			}
			current, gotValue = d, false
			if rest = strings.TrimSpace(rest); rest != "" {
				if err := o.set(d, rest); err != nil {
					return fmt.Errorf("line %d: %w", lineno, err)
				}
				gotValue = true
			}
			continue
		}
		if current == nil {
			return core.NewDataError(lineno, "value outside of an option block")
		}
		if gotValue && !current.Multi {
			return core.NewDataError(lineno, fmt.Sprintf("option %s takes one value", current.Name))
		}
		if err := o.set(current, line); err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
		gotValue = true
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}

// LoadYAML applies a YAML mapping of option names to scalars or lists of scalars.
func (o *Options) LoadYAML(r io.Reader) error {
	var doc map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil
		}
		return core.NewDataError(0, fmt.Sprintf("option YAML: %v", err))
	}
	for name, raw := range doc {
		values, ok := raw.([]interface{})
		if !ok {
			values = []interface{}{raw}
		}
		for _, v := range values {
			if err := o.SetString(name, yamlScalar(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

func yamlScalar(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "Y"
		}
		return "N"
	default:
		return fmt.Sprint(t)
	}
}

// Package options holds the option definitions of an analysis run and the values the
// user set for them, from command arguments, input files or YAML.
package options

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"gora/domain/core"
)

// NumericValue as the only legal value marks an option as numeric.
const NumericValue = "#"

// Value is one legal value of an option.
type Value struct {
	Value string
	Tip   string
}

// Def describes an option. A def with no legal values is a boolean switch.
type Def struct {
	Name   string
	Abbrev string
	Tip    string
	Multi  bool
	Values []Value
}

// AddValue registers a legal value.
func (d *Def) AddValue(value, tip string) *Def {
	d.Values = append(d.Values, Value{Value: value, Tip: tip})
	return d
}

// IsNumeric reports whether the option takes a number.
func (d *Def) IsNumeric() bool {
	return len(d.Values) == 1 && d.Values[0].Value == NumericValue
}

// IsBool reports whether the option is an on/off switch.
func (d *Def) IsBool() bool { return len(d.Values) == 0 }

// IsFree reports whether any string is accepted.
func (d *Def) IsFree() bool {
	return len(d.Values) == 1 && d.Values[0].Value == ""
}

func (d *Def) legal(value string) error {
	switch {
	case d.IsBool(), d.IsFree():
		return nil
	case d.IsNumeric():
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("option %s needs a number, got %q", d.Name, value)
		}
		return nil
	}
	for _, v := range d.Values {
		if v.Value == value {
			return nil
		}
	}
	return fmt.Errorf("option %s does not accept %q", d.Name, value)
}

// Option is one active setting.
type Option struct {
	Def   *Def
	Value string
}

// Options is the definition table plus the active settings, both in insertion order.
type Options struct {
	defs       []*Def
	options    []Option
	defaultDef *Def
}

// New returns an empty option table.
func New() *Options {
	return &Options{}
}

// AddDef registers an option definition.
func (o *Options) AddDef(name, abbrev, tip string, multi bool) *Def {
	d := &Def{Name: name, Abbrev: abbrev, Tip: tip, Multi: multi}
	o.defs = append(o.defs, d)
	return d
}

// SetDefaultDef names the option that bare command arguments are assigned to.
func (o *Options) SetDefaultDef(d *Def) { o.defaultDef = d }

// Defs returns the definitions in registration order.
func (o *Options) Defs() []*Def { return o.defs }

// FindByName looks up a definition by its full name.
func (o *Options) FindByName(name string) *Def {
	for _, d := range o.defs {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// FindByAbbrev looks up a definition by its short form.
func (o *Options) FindByAbbrev(abbrev string) *Def {
	for _, d := range o.defs {
		if d.Abbrev != "" && d.Abbrev == abbrev {
			return d
		}
	}
	return nil
}

func (o *Options) lookup(name string) (*Def, error) {
	if d := o.FindByName(name); d != nil {
		return d, nil
	}
	if d := o.FindByAbbrev(name); d != nil {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnknownOption, name)
}

// SetString sets an option by name or abbreviation. Single-valued options are
// replaced, multi-valued ones accumulate.
func (o *Options) SetString(name, value string) error {
	d, err := o.lookup(name)
	if err != nil {
		return err
	}
	return o.set(d, value)
}

// SetFloat sets a numeric option.
func (o *Options) SetFloat(name string, value float64) error {
	return o.SetString(name, strconv.FormatFloat(value, 'g', -1, 64))
}

func (o *Options) set(d *Def, value string) error {
	value = strings.TrimSpace(value)
	if d.IsBool() && value == "" {
		value = "Y"
	}
	if err := d.legal(value); err != nil {
		return fmt.Errorf("%w: %v", core.ErrUnknownOption, err)
	}
	if !d.Multi {
		for i := range o.options {
			if o.options[i].Def == d {
				o.options[i].Value = value
				return nil
			}
		}
	}
	o.options = append(o.options, Option{Def: d, Value: value})
	return nil
}

// GetString returns the first value of an option.
func (o *Options) GetString(name string) (string, bool) {
	for _, opt := range o.options {
		if opt.Def.Name == name {
			return opt.Value, true
		}
	}
	return "", false
}

// GetAll returns every value of an option.
func (o *Options) GetAll(name string) []string {
	var out []string
	for _, opt := range o.options {
		if opt.Def.Name == name {
			out = append(out, opt.Value)
		}
	}
	return out
}

// GetFloat returns the first value of a numeric option.
func (o *Options) GetFloat(name string) (float64, bool) {
	s, ok := o.GetString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GetInt returns the first value of a numeric option, truncated.
func (o *Options) GetInt(name string) (int, bool) {
	v, ok := o.GetFloat(name)
	return int(v), ok
}

// GetBool reports whether a switch is set and not turned off.
func (o *Options) GetBool(name string) bool {
	s, ok := o.GetString(name)
	if !ok {
		return false
	}
	switch strings.ToLower(s) {
	case "n", "no", "false", "0", "off":
		return false
	}
	return true
}

// All returns the active settings in the order they were set.
func (o *Options) All() []Option {
	out := make([]Option, len(o.options))
	copy(out, o.options)
	return out
}

// Len returns the number of active settings.
func (o *Options) Len() int { return len(o.options) }

// SetOptions applies command arguments: --name=value, --name value, -abbrev value and
// bare switches. Arguments that are not options go to the default option.
func (o *Options) SetOptions(args []string) error {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			if o.defaultDef == nil {
				return fmt.Errorf("%w: unexpected argument %q", core.ErrUnknownOption, arg)
			}
			if err := o.set(o.defaultDef, arg); err != nil {
				return err
			}
			continue
		}
		name := strings.TrimLeft(arg, "-")
		value, hasValue := "", false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value, hasValue = name[:eq], name[eq+1:], true
		}
		d, err := o.lookup(name)
		if err != nil {
			return err
		}
		if !hasValue && !d.IsBool() {
			if i+1 >= len(args) {
				return fmt.Errorf("%w: option %s needs a value", core.ErrUnknownOption, d.Name)
			}
			i++
			value = args[i]
		}
		if err := o.set(d, value); err != nil {
			return err
		}
	}
	return nil
}

// Write prints the active settings, as an HTML table when asHTML is set. The nominal
// declarations are left out when skipNominal is set.
func (o *Options) Write(w io.Writer, asHTML, skipNominal bool) error {
	if asHTML {
		if _, err := fmt.Fprintln(w, "<table>"); err != nil {
			return err
		}
	}
	for _, opt := range o.options {
		if skipNominal && opt.Def.Name == OptNominal {
			continue
		}
		var err error
		if asHTML {
			_, err = fmt.Fprintf(w, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>\n",
				html.EscapeString(opt.Def.Name), html.EscapeString(opt.Value), html.EscapeString(opt.Def.Tip))
		} else {
			_, err = fmt.Fprintf(w, "%s,%s,%s\n", opt.Def.Name, opt.Value, opt.Def.Tip)
		}
		if err != nil {
			return err
		}
	}
	if asHTML {
		_, err := fmt.Fprintln(w, "</table>")
		return err
	}
	return nil
}

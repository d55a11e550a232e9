// Package report declares report variants: the column schema, line grammars
// and field grammars of one revision of one report family. The parse engine
// is generic over these values.
package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
)

// Extraction modes.
const (
	ModeBucketed   = "bucketed"
	ModePositional = "positional"
)

// Field kinds (positional mode).
const (
	FieldSingle = "single"
	FieldRun    = "run"
	FieldRest   = "rest"
)

// Bucket names (bucketed mode).
const (
	BucketCurrency = "currency"
	BucketNumeric  = "numeric"
	BucketText     = "text"
)

// Cleanups applied to an extracted value.
const (
	CleanNone    = ""
	CleanMoney   = "money"
	CleanUnquote = "unquote"
)

// Group sources for context columns.
const (
	GroupKey   = "key"
	GroupLabel = "label"
	GroupAux   = "aux"
)

// Shape names, mirrored by parse.Shape.
const (
	ShapeCurrency   = "currency"
	ShapeDecimal    = "decimal"
	ShapeInteger    = "integer"
	ShapeQuotedCode = "quoted"
	ShapeText       = "text"
)

const defaultMaxCodeLen = 10

// Variant is one report layout.
type Variant struct {
	Name        string               `yaml:"name" json:"name"`
	Kind        constants.ReportKind `yaml:"kind" json:"kind"`
	Year        int                  `yaml:"year" json:"year"`
	Description string               `yaml:"description,omitempty" json:"description,omitempty"`

	GroupColumns []GroupColumn `yaml:"group_columns" json:"group_columns"`
	Record       RecordSpec    `yaml:"record" json:"record"`
	Noise        NoiseSpec     `yaml:"noise" json:"noise"`
	Headers      []HeaderSpec  `yaml:"headers" json:"headers"`
	Summary      *SideSpec     `yaml:"summary,omitempty" json:"summary,omitempty"`
	Adjustment   *SideSpec     `yaml:"adjustment,omitempty" json:"adjustment,omitempty"`

	Mode   string      `yaml:"mode" json:"mode"`
	Fields []FieldSpec `yaml:"fields" json:"fields"`

	compiled bool
}

// GroupColumn maps a context field onto an output column.
type GroupColumn struct {
	Name   string `yaml:"name" json:"name"`
	Source string `yaml:"source" json:"source"`
}

// RecordSpec recognizes data record lines.
type RecordSpec struct {
	// Prefix must match at the start of a data line.
	Prefix string `yaml:"prefix" json:"prefix"`
	// Identifier splits a data line into named groups "id" and "rest".
	Identifier string `yaml:"identifier" json:"identifier"`
	// Date locates the sale date in the remainder.
	Date string `yaml:"date,omitempty" json:"date,omitempty"`

	IdentifierColumn string `yaml:"identifier_column,omitempty" json:"identifier_column,omitempty"`
	AddressColumn    string `yaml:"address_column,omitempty" json:"address_column,omitempty"`
	DateColumn       string `yaml:"date_column,omitempty" json:"date_column,omitempty"`

	prefix     *regexp.Regexp
	identifier *regexp.Regexp
	date       *regexp.Regexp
}

// NoiseSpec lists boilerplate lines dropped before any other rule.
type NoiseSpec struct {
	Prefixes []string `yaml:"prefixes,omitempty" json:"prefixes,omitempty"`
	Contains []string `yaml:"contains,omitempty" json:"contains,omitempty"`
	Exact    []string `yaml:"exact,omitempty" json:"exact,omitempty"`
}

// HeaderSpec is one group-header grammar. Pattern uses the named groups
// "code", "label" and optionally "aux".
type HeaderSpec struct {
	Name       string   `yaml:"name" json:"name"`
	Pattern    string   `yaml:"pattern" json:"pattern"`
	MaxCodeLen int      `yaml:"max_code_len,omitempty" json:"max_code_len,omitempty"`
	Exclude    []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`

	re *regexp.Regexp
}

// SideSpec recognizes summary or adjustment lines. Pattern must contain a
// "factor" group. Marker (summary only) recognizes the line family;
// Average, when set, selects the lines that produce side records.
type SideSpec struct {
	Kind    string   `yaml:"kind" json:"kind"`
	Marker  string   `yaml:"marker,omitempty" json:"marker,omitempty"`
	Average string   `yaml:"average,omitempty" json:"average,omitempty"`
	Pattern string   `yaml:"pattern" json:"pattern"`
	Columns []string `yaml:"columns" json:"columns"`

	marker  *regexp.Regexp
	average *regexp.Regexp
	re      *regexp.Regexp
}

// FieldSpec is one output field of a data record.
type FieldSpec struct {
	Name  string `yaml:"name" json:"name"`
	Clean string `yaml:"clean,omitempty" json:"clean,omitempty"`

	// bucketed mode
	Bucket string `yaml:"bucket,omitempty" json:"bucket,omitempty"`
	Index  int    `yaml:"index,omitempty" json:"index,omitempty"`

	// positional mode
	Kind      string   `yaml:"kind,omitempty" json:"kind,omitempty"`
	Accept    []string `yaml:"accept,omitempty" json:"accept,omitempty"`
	Match     string   `yaml:"match,omitempty" json:"match,omitempty"`
	Enum      []string `yaml:"enum,omitempty" json:"enum,omitempty"`
	Continue  string   `yaml:"continue,omitempty" json:"continue,omitempty"`
	Stop      []string `yaml:"stop,omitempty" json:"stop,omitempty"`
	StopMatch string   `yaml:"stop_match,omitempty" json:"stop_match,omitempty"`

	match     *regexp.Regexp
	cont      *regexp.Regexp
	stopMatch *regexp.Regexp
	enum      map[string]struct{}
}

// DefaultDatePattern matches M/D/YY and M/D/YYYY.
const DefaultDatePattern = `\b\d{1,2}/\d{1,2}/(?:\d{4}|\d{2})\b`

// Compile validates the variant and compiles its patterns. It is idempotent.
func (v *Variant) Compile() error {
	if v.compiled {
		return nil
	}
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("variant: name is required")
	}
	wrap := func(what string, err error) error {
		return fmt.Errorf("variant %s: %s: %w", v.Name, what, err)
	}

	var err error
	if v.Record.prefix, err = compile(v.Record.Prefix, true); err != nil {
		return wrap("record.prefix", err)
	}
	if v.Record.identifier, err = compile(v.Record.Identifier, true); err != nil {
		return wrap("record.identifier", err)
	}
	if err := requireGroups(v.Record.identifier, "id", "rest"); err != nil {
		return wrap("record.identifier", err)
	}
	if v.Record.Date == "" {
		v.Record.Date = DefaultDatePattern
	}
	if v.Record.date, err = compile(v.Record.Date, true); err != nil {
		return wrap("record.date", err)
	}
	if v.Record.IdentifierColumn == "" {
		v.Record.IdentifierColumn = "Parcel_Number"
	}
	if v.Record.AddressColumn == "" {
		v.Record.AddressColumn = "Street_Address"
	}
	if v.Record.DateColumn == "" {
		v.Record.DateColumn = "Sale_Date"
	}

	for i := range v.GroupColumns {
		switch v.GroupColumns[i].Source {
		case GroupKey, GroupLabel, GroupAux:
		default:
			return wrap("group_columns", fmt.Errorf("unknown source %q", v.GroupColumns[i].Source))
		}
	}

	for i := range v.Headers {
		h := &v.Headers[i]
		if h.re, err = compile(h.Pattern, true); err != nil {
			return wrap("headers["+h.Name+"]", err)
		}
		if err := requireGroups(h.re, "label"); err != nil {
			return wrap("headers["+h.Name+"]", err)
		}
		if h.MaxCodeLen <= 0 {
			h.MaxCodeLen = defaultMaxCodeLen
		}
	}

	for _, s := range []*SideSpec{v.Summary, v.Adjustment} {
		if s == nil {
			continue
		}
		if s.Kind == "" {
			return wrap("side", fmt.Errorf("kind is required"))
		}
		if len(s.Columns) != 3 {
			return wrap("side "+s.Kind, fmt.Errorf("want 3 columns (key, label, factor), got %d", len(s.Columns)))
		}
		if s.re, err = compile(s.Pattern, true); err != nil {
			return wrap("side "+s.Kind, err)
		}
		if err := requireGroups(s.re, "factor"); err != nil {
			return wrap("side "+s.Kind, err)
		}
		if s.marker, err = compile(s.Marker, false); err != nil {
			return wrap("side "+s.Kind+" marker", err)
		}
		if s.average, err = compile(s.Average, false); err != nil {
			return wrap("side "+s.Kind+" average", err)
		}
	}
	if v.Summary != nil && v.Summary.marker == nil {
		return wrap("summary", fmt.Errorf("marker is required"))
	}
	if v.Summary != nil && v.Adjustment != nil && v.Summary.Kind == v.Adjustment.Kind {
		return wrap("side", fmt.Errorf("summary and adjustment share kind %q", v.Summary.Kind))
	}

	switch v.Mode {
	case ModeBucketed, ModePositional:
	default:
		return wrap("mode", fmt.Errorf("unknown mode %q", v.Mode))
	}
	seen := map[string]struct{}{}
	for i := range v.Fields {
		f := &v.Fields[i]
		if f.Name == "" {
			return wrap("fields", fmt.Errorf("field %d has no name", i))
		}
		if _, dup := seen[f.Name]; dup {
			return wrap("fields", fmt.Errorf("duplicate field %q", f.Name))
		}
		seen[f.Name] = struct{}{}
		switch f.Clean {
		case CleanNone, CleanMoney, CleanUnquote:
		default:
			return wrap("fields["+f.Name+"]", fmt.Errorf("unknown clean %q", f.Clean))
		}
		if err := f.compile(v.Mode); err != nil {
			return wrap("fields["+f.Name+"]", err)
		}
	}

	cols := map[string]struct{}{}
	for _, c := range v.Columns() {
		if _, dup := cols[c]; dup {
			return wrap("columns", fmt.Errorf("duplicate output column %q", c))
		}
		cols[c] = struct{}{}
	}

	v.compiled = true
	return nil
}

func (f *FieldSpec) compile(mode string) error {
	var err error
	if mode == ModeBucketed {
		switch f.Bucket {
		case BucketCurrency, BucketNumeric, BucketText:
		default:
			return fmt.Errorf("unknown bucket %q", f.Bucket)
		}
		return nil
	}
	switch f.Kind {
	case FieldSingle:
		if len(f.Accept) == 0 {
			return fmt.Errorf("single field needs accept shapes")
		}
	case FieldRun, FieldRest:
	default:
		return fmt.Errorf("unknown kind %q", f.Kind)
	}
	for _, s := range append(append([]string(nil), f.Accept...), f.Stop...) {
		if !validShape(s) {
			return fmt.Errorf("unknown shape %q", s)
		}
	}
	if f.match, err = compile(f.Match, false); err != nil {
		return err
	}
	if f.cont, err = compile(f.Continue, false); err != nil {
		return err
	}
	if f.stopMatch, err = compile(f.StopMatch, false); err != nil {
		return err
	}
	if len(f.Enum) > 0 {
		f.enum = make(map[string]struct{}, len(f.Enum))
		for _, e := range f.Enum {
			f.enum[e] = struct{}{}
		}
	}
	return nil
}

func validShape(s string) bool {
	switch s {
	case ShapeCurrency, ShapeDecimal, ShapeInteger, ShapeQuotedCode, ShapeText:
		return true
	}
	return false
}

func compile(pattern string, required bool) (*regexp.Regexp, error) {
	if pattern == "" {
		if required {
			return nil, fmt.Errorf("pattern is required")
		}
		return nil, nil
	}
	return regexp.Compile(pattern)
}

func requireGroups(re *regexp.Regexp, names ...string) error {
	for _, n := range names {
		if re.SubexpIndex(n) < 0 {
			return fmt.Errorf("pattern %q lacks group %q", re.String(), n)
		}
	}
	return nil
}

// Columns returns the primary table header: group columns, identifier,
// address, date, then fields.
func (v *Variant) Columns() []string {
	cols := make([]string, 0, len(v.GroupColumns)+3+len(v.Fields))
	for _, g := range v.GroupColumns {
		cols = append(cols, g.Name)
	}
	cols = append(cols, v.Record.IdentifierColumn, v.Record.AddressColumn, v.Record.DateColumn)
	for _, f := range v.Fields {
		cols = append(cols, f.Name)
	}
	return cols
}

// SideKinds lists the declared side tables in output order.
func (v *Variant) SideKinds() []*SideSpec {
	var out []*SideSpec
	if v.Summary != nil {
		out = append(out, v.Summary)
	}
	if v.Adjustment != nil {
		out = append(out, v.Adjustment)
	}
	return out
}

// Compiled accessors used by the parse engine.

func (r *RecordSpec) PrefixRe() *regexp.Regexp     { return r.prefix }
func (r *RecordSpec) IdentifierRe() *regexp.Regexp { return r.identifier }
func (r *RecordSpec) DateRe() *regexp.Regexp       { return r.date }

func (h *HeaderSpec) Re() *regexp.Regexp { return h.re }

func (s *SideSpec) MarkerRe() *regexp.Regexp  { return s.marker }
func (s *SideSpec) AverageRe() *regexp.Regexp { return s.average }
func (s *SideSpec) Re() *regexp.Regexp        { return s.re }

func (f *FieldSpec) MatchRe() *regexp.Regexp     { return f.match }
func (f *FieldSpec) ContinueRe() *regexp.Regexp  { return f.cont }
func (f *FieldSpec) StopMatchRe() *regexp.Regexp { return f.stopMatch }

// InEnum reports whether tok is allowed by the enum (always true without one).
func (f *FieldSpec) InEnum(tok string) bool {
	if f.enum == nil {
		return true
	}
	_, ok := f.enum[tok]
	return ok
}

// Accepts reports whether shape is one of the field's accepted shapes.
func (f *FieldSpec) Accepts(shape string) bool {
	for _, s := range f.Accept {
		if s == shape {
			return true
		}
	}
	return false
}

// Stops reports whether shape ends a run field.
func (f *FieldSpec) Stops(shape string) bool {
	for _, s := range f.Stop {
		if s == shape {
			return true
		}
	}
	return false
}

package structured

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/ajitpratap0/structcol/pkg/errors"
)

// Kind is the numeric storage kind of a record field
type Kind int

const (
	// Float64 is an IEEE-754 64-bit float field
	Float64 Kind = iota
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Size returns the number of bytes one value of the kind occupies
func (k Kind) Size() int {
	return 8
}

// Field is one named, typed slot of a record
type Field struct {
	Name string
	Kind Kind
}

// Record is one fixed-layout row of raw field values in field order
type Record []float64

// Clone returns a copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// IsMissing reports whether any field of the record is NaN
func (r Record) IsMissing() bool {
	for _, v := range r {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// NaNRecord returns a record of width w with every field set to NaN
func NaNRecord(w int) Record {
	r := make(Record, w)
	for i := range r {
		r[i] = math.NaN()
	}
	return r
}

// Scalar is a domain value that marshals to and from one record
type Scalar interface {
	// Layout returns the descriptor the scalar belongs to
	Layout() Layout
	// Tuple returns the field values in layout order. The returned record is
	// owned by the caller.
	Tuple() Record
}

// Layout describes the record layout of a structured column and the domain
// scalar it represents. Implementations are immutable.
type Layout interface {
	// Name returns the canonical dtype name
	Name() string
	// Fields returns the ordered field list
	Fields() []Field
	// MissingRecord returns the pattern stored for a nil scalar
	MissingRecord() Record
	// NewScalar builds the domain scalar for a record of the right width.
	// The record is a private copy the scalar may retain.
	NewScalar(rec Record) Scalar
	// Equal reports whether other describes the same layout
	Equal(other Layout) bool
}

// FieldNames returns the ordered field names of a layout
func FieldNames(l Layout) []string {
	fields := l.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Width returns the number of fields per record
func Width(l Layout) int {
	return len(l.Fields())
}

// FieldIndex returns the position of the named field
func FieldIndex(l Layout, name string) (int, bool) {
	for i, f := range l.Fields() {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// IsIdentifier reports whether s is a valid field identifier: a letter or
// underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// ValidateFields checks a field list for use in a layout: at least one
// field, identifier names, no duplicates, known kinds.
func ValidateFields(fields []Field) error {
	if len(fields) == 0 {
		return errors.New(errors.ErrorTypeConfig, "layout requires at least one field")
	}

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if !IsIdentifier(f.Name) {
			return errors.Newf(errors.ErrorTypeConfig, "field name %q is not a valid identifier", f.Name).
				WithDetail("field", f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return errors.Newf(errors.ErrorTypeConfig, "duplicate field name %q", f.Name).
				WithDetail("field", f.Name)
		}
		if f.Kind != Float64 {
			return errors.Newf(errors.ErrorTypeConfig, "field %q has unsupported kind %s", f.Name, f.Kind)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// Float64Fields builds a float64 field list from names
func Float64Fields(names ...string) []Field {
	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Name: name, Kind: Float64}
	}
	return fields
}

// Schema is a generic fixed layout whose scalar is the plain Row tuple.
// It is looked up by its exact name.
type Schema struct {
	name    string
	fields  []Field
	missing Record
}

// SchemaOption configures a Schema
type SchemaOption func(*Schema)

// WithMissing sets the record pattern written for nil scalars. The pattern
// must contain at least one NaN so that it reads back as missing.
func WithMissing(rec Record) SchemaOption {
	return func(s *Schema) {
		s.missing = rec.Clone()
	}
}

// NewSchema creates a generic layout. By default the missing pattern is
// all-NaN.
func NewSchema(name string, fields []Field, opts ...SchemaOption) (*Schema, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "schema name is required")
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}

	s := &Schema{
		name:   name,
		fields: append([]Field(nil), fields...),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.missing == nil {
		s.missing = NaNRecord(len(fields))
	}
	if len(s.missing) != len(fields) {
		return nil, errors.Newf(errors.ErrorTypeConfig,
			"missing pattern has %d fields, schema %q has %d", len(s.missing), name, len(fields))
	}
	if !s.missing.IsMissing() {
		return nil, errors.Newf(errors.ErrorTypeConfig,
			"missing pattern for schema %q contains no NaN field", name)
	}

	return s, nil
}

// Name returns the schema name
func (s *Schema) Name() string { return s.name }

// Fields returns a copy of the field list
func (s *Schema) Fields() []Field { return append([]Field(nil), s.fields...) }

// MissingRecord returns a copy of the missing pattern
func (s *Schema) MissingRecord() Record { return s.missing.Clone() }

// NewScalar wraps the record in a Row
func (s *Schema) NewScalar(rec Record) Scalar {
	return Row{schema: s, values: rec}
}

// Equal reports whether other is a schema with the same name and fields
func (s *Schema) Equal(other Layout) bool {
	o, ok := other.(*Schema)
	if !ok {
		return false
	}
	if s == o {
		return true
	}
	if s.name != o.name || len(s.fields) != len(o.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i] != o.fields[i] {
			return false
		}
	}
	return true
}

// NewRow builds a scalar of this schema from values in field order
func (s *Schema) NewRow(values ...float64) (Row, error) {
	if len(values) != len(s.fields) {
		return Row{}, errors.Newf(errors.ErrorTypeTypeMismatch,
			"schema %q expects %d values, got %d", s.name, len(s.fields), len(values))
	}
	return Row{schema: s, values: Record(values).Clone()}, nil
}

// Row is the scalar of a generic Schema
type Row struct {
	schema *Schema
	values Record
}

// Layout returns the owning schema
func (r Row) Layout() Layout { return r.schema }

// Tuple returns a copy of the values
func (r Row) Tuple() Record { return r.values.Clone() }

// Dict returns the values keyed by field name
func (r Row) Dict() map[string]float64 { return Dict(r) }

// MarshalJSON encodes the row as an object keyed by field name
func (r Row) MarshalJSON() ([]byte, error) { return MarshalScalar(r) }

// Get returns the named field value
func (r Row) Get(name string) (float64, bool) {
	i, ok := FieldIndex(r.schema, name)
	if !ok {
		return 0, false
	}
	return r.values[i], true
}

// Dict returns a scalar's values keyed by field name
func Dict(s Scalar) map[string]float64 {
	names := FieldNames(s.Layout())
	tuple := s.Tuple()
	out := make(map[string]float64, len(names))
	for i, name := range names {
		out[name] = tuple[i]
	}
	return out
}

package dist

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

// CategoricalPrefix starts every categorical canonical name
const CategoricalPrefix = namePrefix + "categorical"

// CategoricalDtype is a categorical layout with one probability field per
// category. Two dtypes are equal when their category names are equal and in
// the same order.
type CategoricalDtype struct {
	names []string
	name  string
}

// NewCategoricalDtype builds a categorical dtype over the given category
// names. Names must be unique identifiers and at least one is required.
func NewCategoricalDtype(names ...string) (*CategoricalDtype, error) {
	if err := structured.ValidateFields(structured.Float64Fields(names...)); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid categorical dtype")
	}
	names = slices.Clone(names)
	return &CategoricalDtype{
		names: names,
		name:  namePrefix + strings.Join(append([]string{"categorical"}, names...), ", ") + "]",
	}, nil
}

// MustCategoricalDtype is like NewCategoricalDtype but panics on error
func MustCategoricalDtype(names ...string) *CategoricalDtype {
	d, err := NewCategoricalDtype(names...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the canonical name, e.g. "dist[categorical, a, b]"
func (d *CategoricalDtype) Name() string {
	if d == nil {
		return "<nil>"
	}
	return d.name
}

// Names returns the category names in field order
func (d *CategoricalDtype) Names() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.names)
}

// Fields returns one float64 field per category
func (d *CategoricalDtype) Fields() []structured.Field {
	return structured.Float64Fields(d.names...)
}

// MissingRecord returns an all-NaN record
func (d *CategoricalDtype) MissingRecord() structured.Record {
	return structured.NaNRecord(len(d.names))
}

// NewScalar wraps rec as a Categorical of this dtype
func (d *CategoricalDtype) NewScalar(rec structured.Record) structured.Scalar {
	return Categorical{Theta: rec, Dtype: d}
}

// Equal reports whether other is a categorical dtype with the same names
func (d *CategoricalDtype) Equal(other structured.Layout) bool {
	o, ok := other.(*CategoricalDtype)
	if !ok || o == nil || d == nil {
		return false
	}
	return slices.Equal(d.names, o.names)
}

// ParseCategoricalDtype parses a canonical categorical name:
//
//	dist[categorical, name1, name2, ...]
//
// Whitespace around separators is ignored. Errors quote the offending
// character or token.
func ParseCategoricalDtype(name string) (*CategoricalDtype, error) {
	rest, ok := strings.CutPrefix(name, CategoricalPrefix)
	if !ok {
		return nil, parseErrorf(name, "expected prefix %q", CategoricalPrefix)
	}

	body := strings.TrimRightFunc(rest, unicode.IsSpace)
	if !strings.HasSuffix(body, "]") {
		if body == "" {
			return nil, parseErrorf(name, "unexpected end of input, expected ']'")
		}
		r, _ := utf8.DecodeLastRuneInString(body)
		return nil, parseErrorf(name, "unexpected character %q at end, expected ']'", r)
	}
	if len(body) != len(rest) {
		return nil, parseErrorf(name, "unexpected trailing whitespace after ']'")
	}
	body = strings.TrimRightFunc(strings.TrimSuffix(body, "]"), unicode.IsSpace)

	lead := strings.TrimLeftFunc(body, unicode.IsSpace)
	if lead == "" {
		return nil, parseErrorf(name, "categorical dtype needs at least one category")
	}
	if lead[0] != ',' {
		r, _ := utf8.DecodeRuneInString(lead)
		return nil, parseErrorf(name, "unexpected character %q after %q, expected ','", r, "categorical")
	}

	tokens := strings.Split(lead[1:], ",")
	names := make([]string, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, parseErrorf(name, "empty category name at position %d", i)
		}
		if r, bad := firstNonIdentRune(tok); bad {
			return nil, parseErrorf(name, "unexpected character %q in category name %q", r, tok).
				WithDetail("token", tok)
		}
		names[i] = tok
	}

	d, err := NewCategoricalDtype(names...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "cannot construct categorical dtype from "+name)
	}
	return d, nil
}

func parseErrorf(name, format string, args ...interface{}) *errors.Error {
	return errors.Newf(errors.ErrorTypeParse, format, args...).WithDetail("name", name)
}

// firstNonIdentRune returns the first rune that keeps tok from being an
// identifier.
func firstNonIdentRune(tok string) (rune, bool) {
	for i, r := range tok {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return r, true
	}
	return 0, false
}

func parseCategoricalLayout(name string) (structured.Layout, error) {
	d, err := ParseCategoricalDtype(name)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Categorical is a distribution over the categories of its dtype. Theta holds
// one probability per category in field order.
type Categorical struct {
	Theta []float64
	Dtype *CategoricalDtype
}

// NewCategorical builds a scalar of dtype d. The number of weights must match
// the number of categories.
func NewCategorical(d *CategoricalDtype, theta ...float64) (Categorical, error) {
	if len(theta) != len(d.names) {
		return Categorical{}, errors.Newf(errors.ErrorTypeTypeMismatch,
			"%s takes %d probabilities, got %d", d.Name(), len(d.names), len(theta))
	}
	return Categorical{Theta: slices.Clone(theta), Dtype: d}, nil
}

// Layout returns the scalar's dtype, or nil when the scalar has none
func (c Categorical) Layout() structured.Layout {
	if c.Dtype == nil {
		return nil
	}
	return c.Dtype
}

// Tuple returns the probabilities in category order
func (c Categorical) Tuple() structured.Record { return structured.Record(c.Theta).Clone() }

// Dict returns the probabilities keyed by category name
func (c Categorical) Dict() map[string]float64 { return structured.Dict(c) }

// Equal reports whether both scalars have equal dtypes and probabilities
func (c Categorical) Equal(other Categorical) bool {
	return c.Dtype.Equal(other.Dtype) && slices.Equal(c.Theta, other.Theta)
}

func (c Categorical) String() string {
	if c.Dtype == nil || len(c.Dtype.names) != len(c.Theta) {
		return fmt.Sprintf("Categorical(%v)", c.Theta)
	}
	return "Categorical(" + formatParams(c.Dtype.names, c.Theta) + ")"
}

// MarshalJSON encodes the scalar as an object keyed by category name
func (c Categorical) MarshalJSON() ([]byte, error) { return structured.MarshalScalar(c) }

// ToDistribution returns a gonum categorical over the category indices
// 0..N-1. Weights must be non-negative with a positive sum; they are
// normalized by gonum.
func (c Categorical) ToDistribution() (Distribution, error) {
	if err := checkWeights(c.Theta); err != nil {
		return nil, err
	}
	return distuv.NewCategorical(slices.Clone(c.Theta), nil), nil
}

func checkWeights(theta []float64) error {
	var sum float64
	for i, w := range theta {
		if !(w >= 0) {
			return errors.Newf(errors.ErrorTypeData, "categorical weight %d is %g, must be non-negative", i, w)
		}
		sum += w
	}
	if !(sum > 0) {
		return errors.New(errors.ErrorTypeData, "categorical weights must have a positive sum")
	}
	return nil
}

package structured

import (
	"bytes"
	"math"

	"github.com/goccy/go-json"

	"github.com/ajitpratap0/structcol/pkg/errors"
)

// ScalarFromRecord builds the domain scalar of layout l for rec. The scalar
// receives a copy of rec and never aliases the caller's storage.
func ScalarFromRecord(l Layout, rec Record) (Scalar, error) {
	if w := Width(l); len(rec) != w {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"record has %d fields, layout %s has %d", len(rec), l.Name(), w)
	}
	return l.NewScalar(rec.Clone()), nil
}

// RecordFromScalar returns the record to store for s. A nil scalar yields the
// layout's missing pattern. Scalars of another layout are rejected.
func RecordFromScalar(l Layout, s Scalar) (Record, error) {
	if s == nil {
		return l.MissingRecord(), nil
	}

	if sl := s.Layout(); sl == nil || !l.Equal(sl) {
		name := "<nil>"
		if sl != nil {
			name = sl.Name()
		}
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"cannot store %s scalar in %s column", name, l.Name()).
			WithDetail("expected", l.Name()).
			WithDetail("actual", name)
	}

	tuple := s.Tuple()
	if w := Width(l); len(tuple) != w {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"scalar has %d values, layout %s has %d", len(tuple), l.Name(), w)
	}
	return tuple, nil
}

// MarshalScalar encodes s as a JSON object keyed by field name, in field
// order. NaN fields encode as null; a nil scalar encodes as null.
func MarshalScalar(s Scalar) ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	l := s.Layout()
	if l == nil {
		return nil, errors.New(errors.ErrorTypeTypeMismatch, "cannot encode a scalar without a layout")
	}
	names := FieldNames(l)
	tuple := s.Tuple()
	if len(tuple) != len(names) {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"scalar has %d values, layout %s has %d", len(tuple), l.Name(), len(names))
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if math.IsNaN(tuple[i]) {
			buf.WriteString("null")
			continue
		}
		val, err := json.Marshal(tuple[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

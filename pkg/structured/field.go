package structured

import (
	"github.com/ajitpratap0/structcol/pkg/errors"
)

// FieldView is a zero-copy, strided projection of one field across every
// record of a buffer. Reads and writes go straight to the buffer's storage,
// so changes are visible through Get and Set and vice versa. The view stays
// valid for as long as the storage it was taken from.
type FieldView struct {
	name   string
	data   []float64
	offset int
	stride int
	n      int
}

// Field returns a view of the named field. Unknown names fail with a
// not_found error.
func (b *Buffer) Field(name string) (FieldView, error) {
	idx, ok := FieldIndex(b.layout, name)
	if !ok {
		return FieldView{}, errors.Newf(errors.ErrorTypeNotFound, "layout %s has no field %q", b.layout.Name(), name).
			WithDetail("field", name).
			WithDetail("fields", FieldNames(b.layout))
	}
	return FieldView{name: name, data: b.data, offset: idx, stride: b.width, n: b.Len()}, nil
}

// Unpack returns a view per field, keyed by field name
func (b *Buffer) Unpack() map[string]FieldView {
	names := FieldNames(b.layout)
	out := make(map[string]FieldView, len(names))
	for idx, name := range names {
		out[name] = FieldView{name: name, data: b.data, offset: idx, stride: b.width, n: b.Len()}
	}
	return out
}

// Name returns the projected field name
func (v FieldView) Name() string { return v.name }

// Len returns the number of records covered
func (v FieldView) Len() int { return v.n }

// At returns the field value of record i. It panics if i is out of range.
func (v FieldView) At(i int) float64 {
	if i < 0 || i >= v.n {
		panic(errors.Newf(errors.ErrorTypeIndex, "field index %d out of range [0, %d)", i, v.n))
	}
	return v.data[v.offset+i*v.stride]
}

// Set stores x as the field value of record i. It panics if i is out of range.
func (v FieldView) Set(i int, x float64) {
	if i < 0 || i >= v.n {
		panic(errors.Newf(errors.ErrorTypeIndex, "field index %d out of range [0, %d)", i, v.n))
	}
	v.data[v.offset+i*v.stride] = x
}

// Fill broadcasts x to every record
func (v FieldView) Fill(x float64) {
	for i, p := 0, v.offset; i < v.n; i, p = i+1, p+v.stride {
		v.data[p] = x
	}
}

// Assign writes values to the field in record order
func (v FieldView) Assign(values []float64) error {
	if len(values) != v.n {
		return errors.Newf(errors.ErrorTypeLength,
			"cannot assign %d values to field %q of length %d", len(values), v.name, v.n)
	}
	for i, p := 0, v.offset; i < v.n; i, p = i+1, p+v.stride {
		v.data[p] = values[i]
	}
	return nil
}

// Values copies the field out into a new contiguous slice
func (v FieldView) Values() []float64 {
	out := make([]float64, v.n)
	for i, p := 0, v.offset; i < v.n; i, p = i+1, p+v.stride {
		out[i] = v.data[p]
	}
	return out
}

// Apply replaces every value x of the field with fn(i, x)
func (v FieldView) Apply(fn func(i int, x float64) float64) {
	for i, p := 0, v.offset; i < v.n; i, p = i+1, p+v.stride {
		v.data[p] = fn(i, v.data[p])
	}
}

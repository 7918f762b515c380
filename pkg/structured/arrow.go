package structured

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/structcol/pkg/errors"
)

// ArrowType returns the Arrow struct type a layout converts to: one nullable
// float64 child per field, in field order.
func ArrowType(l Layout) *arrow.StructType {
	fields := l.Fields()
	arrowFields := make([]arrow.Field, len(fields))
	for i, f := range fields {
		arrowFields[i] = arrow.Field{Name: f.Name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}
	}
	return arrow.StructOf(arrowFields...)
}

// ToArrow converts a buffer to an Arrow struct array whose children are the
// layout's fields in order. Missing values stay NaN; no validity bitmap is
// written. The caller must Release the result.
func ToArrow(mem memory.Allocator, b *Buffer) (*array.Struct, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	names := FieldNames(b.layout)
	cols := make([]arrow.Array, len(names))
	defer func() {
		for _, col := range cols {
			if col != nil {
				col.Release()
			}
		}
	}()

	views := b.Unpack()
	for i, name := range names {
		bld := array.NewFloat64Builder(mem)
		bld.AppendValues(views[name].Values(), nil)
		cols[i] = bld.NewFloat64Array()
		bld.Release()
	}

	return array.NewStructArray(cols, names)
}

// FromArrow copies an Arrow struct array into a new buffer of layout l.
// Children are matched to layout fields by name and may be float64 or
// float32; extra children are ignored. Null child values and null struct
// slots are stored as NaN and as the missing pattern respectively.
func FromArrow(arr arrow.Array, l Layout) (*Buffer, error) {
	st, ok := arr.(*array.Struct)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"expected a struct array for %s, got %s", l.Name(), arr.DataType())
	}
	stType := st.DataType().(*arrow.StructType)

	b, err := Empty(st.Len(), l)
	if err != nil {
		return nil, err
	}

	for j, f := range l.Fields() {
		idx, found := stType.FieldIdx(f.Name)
		if !found {
			return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
				"struct array has no field %q required by %s", f.Name, l.Name()).
				WithDetail("field", f.Name)
		}
		if err := copyChild(b, j, st.Field(idx)); err != nil {
			return nil, err
		}
	}

	if st.NullN() > 0 {
		missing := l.MissingRecord()
		for i := 0; i < st.Len(); i++ {
			if st.IsNull(i) {
				copy(b.row(i), missing)
			}
		}
	}

	return b, nil
}

func copyChild(b *Buffer, j int, child arrow.Array) error {
	view := FieldView{data: b.data, offset: j, stride: b.width, n: b.Len()}

	switch c := child.(type) {
	case *array.Float64:
		if c.NullN() == 0 {
			return view.Assign(c.Float64Values())
		}
		view.Apply(func(i int, _ float64) float64 {
			if c.IsNull(i) {
				return math.NaN()
			}
			return c.Value(i)
		})
	case *array.Float32:
		view.Apply(func(i int, _ float64) float64 {
			if c.IsNull(i) {
				return math.NaN()
			}
			return float64(c.Value(i))
		})
	default:
		return errors.Newf(errors.ErrorTypeTypeMismatch,
			"struct field %d has type %s, expected a floating point array", j, child.DataType())
	}
	return nil
}

// FromChunked coalesces a chunked struct column into one contiguous chunk and
// converts it with FromArrow.
func FromChunked(chunked *arrow.Chunked, l Layout, mem memory.Allocator) (*Buffer, error) {
	chunks := chunked.Chunks()
	switch len(chunks) {
	case 0:
		return Empty(0, l)
	case 1:
		return FromArrow(chunks[0], l)
	}

	if mem == nil {
		mem = memory.DefaultAllocator
	}
	combined, err := array.Concatenate(chunks, mem)
	if err != nil {
		return nil, err
	}
	defer combined.Release()

	return FromArrow(combined, l)
}

// Package structured stores composite, fixed-layout values as a single
// contiguous columnar record buffer.
//
// # Overview
//
// A Layout declares an ordered list of named float64 fields and the domain
// scalar type those fields describe. A Buffer holds N records of one layout
// back to back in one []float64 (array-of-structs), so record i occupies
// data[i*w : (i+1)*w] where w is the number of fields.
//
// The package provides:
//   - Layout and Schema: record descriptors and the generic fixed layout
//   - ScalarFromRecord / RecordFromScalar: the scalar marshaller
//   - Buffer: element access, slicing, take, concat, equality, missingness
//   - FieldView: zero-copy strided projection of one field across all rows
//   - ToArrow / FromArrow / FromChunked: lossless Arrow struct-array bridge
//   - Registry: canonical dtype name to layout resolution
//
// # Missing values
//
// A record is missing when any of its fields is NaN. Writing a nil scalar
// stores the layout's MissingRecord pattern.
//
// # Aliasing
//
// Slicing a Buffer with a Range returns a view that shares storage with its
// source; writes through either are visible through both. Mask and Positions
// indexers, Take, Copy and Concat always allocate new storage. A FieldView
// aliases the storage of the buffer it was taken from and stays valid for the
// lifetime of that storage; a Buffer never reallocates its storage in place.
//
// Buffers carry no internal locking. Concurrent mutation must be serialized
// by the caller.
//
// # Usage Example
//
//	schema, _ := structured.NewSchema("point", []structured.Field{
//		{Name: "x", Kind: structured.Float64},
//		{Name: "y", Kind: structured.Float64},
//	})
//	buf, _ := structured.Empty(3, schema)
//	xs, _ := buf.Field("x")
//	_ = xs.Assign([]float64{1, 2, 3})
//	row, _ := buf.Get(1)
//	fmt.Println(row.Tuple()) // [2 0]
package structured

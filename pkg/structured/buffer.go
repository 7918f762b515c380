package structured

import (
	"github.com/ajitpratap0/structcol/pkg/errors"
)

// Buffer is a fixed-length column of records stored contiguously, record by
// record, in a single []float64.
type Buffer struct {
	layout Layout
	width  int
	data   []float64
}

func checkLayout(l Layout) (int, error) {
	if l == nil {
		return 0, errors.New(errors.ErrorTypeConfig, "layout is required")
	}
	w := Width(l)
	if w == 0 {
		return 0, errors.Newf(errors.ErrorTypeConfig, "layout %s has no fields", l.Name())
	}
	return w, nil
}

// Empty creates a zero-filled buffer of n records
func Empty(n int, l Layout) (*Buffer, error) {
	w, err := checkLayout(l)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.Newf(errors.ErrorTypeIndex, "negative buffer length %d", n)
	}
	return &Buffer{layout: l, width: w, data: make([]float64, n*w)}, nil
}

// NewBuffer adopts data as the storage of a buffer without copying. len(data)
// must be a multiple of the layout width; the caller gives up exclusive
// ownership of data.
func NewBuffer(data []float64, l Layout) (*Buffer, error) {
	w, err := checkLayout(l)
	if err != nil {
		return nil, err
	}
	if len(data)%w != 0 {
		return nil, errors.Newf(errors.ErrorTypeLength,
			"storage of %d values is not a whole number of %d-field records", len(data), w)
	}
	return &Buffer{layout: l, width: w, data: data}, nil
}

// FromScalars builds a buffer holding one record per scalar. Nil entries are
// stored as the missing pattern.
func FromScalars(scalars []Scalar, l Layout) (*Buffer, error) {
	b, err := Empty(len(scalars), l)
	if err != nil {
		return nil, err
	}
	for i, s := range scalars {
		if err := b.Set(i, s); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// FromRecords builds a buffer by copying raw records
func FromRecords(records []Record, l Layout) (*Buffer, error) {
	b, err := Empty(len(records), l)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		if len(rec) != b.width {
			return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
				"record %d has %d fields, layout %s has %d", i, len(rec), l.Name(), b.width)
		}
		copy(b.row(i), rec)
	}
	return b, nil
}

// Layout returns the buffer's layout
func (b *Buffer) Layout() Layout { return b.layout }

// Len returns the number of records
func (b *Buffer) Len() int { return len(b.data) / b.width }

// Width returns the number of fields per record
func (b *Buffer) Width() int { return b.width }

// ByteSize returns the storage footprint in bytes
func (b *Buffer) ByteSize() int { return len(b.data) * Float64.Size() }

// Data returns the backing storage. The slice aliases the buffer.
func (b *Buffer) Data() []float64 { return b.data }

func (b *Buffer) row(i int) []float64 {
	return b.data[i*b.width : (i+1)*b.width : (i+1)*b.width]
}

func (b *Buffer) checkIndex(i int) error {
	if n := b.Len(); i < 0 || i >= n {
		return errors.Newf(errors.ErrorTypeIndex, "index %d out of range [0, %d)", i, n).
			WithDetail("index", i)
	}
	return nil
}

// Get returns a freshly built scalar for record i
func (b *Buffer) Get(i int) (Scalar, error) {
	if err := b.checkIndex(i); err != nil {
		return nil, err
	}
	return b.layout.NewScalar(Record(b.row(i)).Clone()), nil
}

// Record returns a copy of the raw values of record i
func (b *Buffer) Record(i int) (Record, error) {
	if err := b.checkIndex(i); err != nil {
		return nil, err
	}
	return Record(b.row(i)).Clone(), nil
}

// Scalars materializes every record as a scalar. Missing records are nil.
func (b *Buffer) Scalars() []Scalar {
	out := make([]Scalar, b.Len())
	for i := range out {
		rec := Record(b.row(i))
		if rec.IsMissing() {
			continue
		}
		out[i] = b.layout.NewScalar(rec.Clone())
	}
	return out
}

// Set stores s at record i. A nil scalar writes the missing pattern.
func (b *Buffer) Set(i int, s Scalar) error {
	if err := b.checkIndex(i); err != nil {
		return err
	}
	rec, err := RecordFromScalar(b.layout, s)
	if err != nil {
		return err
	}
	copy(b.row(i), rec)
	return nil
}

// Slice returns the selected records as a new buffer. A Range yields a view
// sharing storage with b; other indexers copy.
func (b *Buffer) Slice(ix Indexer) (*Buffer, error) {
	if r, ok := ix.(Range); ok {
		if err := r.check(b.Len()); err != nil {
			return nil, err
		}
		start, stop := r.Start*b.width, r.Stop*b.width
		return &Buffer{layout: b.layout, width: b.width, data: b.data[start:stop:stop]}, nil
	}

	positions, err := ix.Resolve(b.Len())
	if err != nil {
		return nil, err
	}
	return b.gather(positions), nil
}

// Fill writes s to every selected record
func (b *Buffer) Fill(ix Indexer, s Scalar) error {
	positions, err := ix.Resolve(b.Len())
	if err != nil {
		return err
	}
	rec, err := RecordFromScalar(b.layout, s)
	if err != nil {
		return err
	}
	for _, p := range positions {
		copy(b.row(p), rec)
	}
	return nil
}

// SetSlice writes values to the selected records in order. The number of
// values must equal the number of selected records.
func (b *Buffer) SetSlice(ix Indexer, values []Scalar) error {
	positions, err := ix.Resolve(b.Len())
	if err != nil {
		return err
	}
	if len(values) != len(positions) {
		return errors.Newf(errors.ErrorTypeLength,
			"cannot assign %d values to %d positions", len(values), len(positions)).
			WithDetail("values", len(values)).
			WithDetail("positions", len(positions))
	}

	// Marshal everything first so a bad value leaves the buffer untouched.
	records := make([]Record, len(values))
	for i, s := range values {
		rec, err := RecordFromScalar(b.layout, s)
		if err != nil {
			return err
		}
		records[i] = rec
	}
	for i, p := range positions {
		copy(b.row(p), records[i])
	}
	return nil
}

// IsMissing reports, per record, whether any field is NaN
func (b *Buffer) IsMissing() []bool {
	out := make([]bool, b.Len())
	for i := range out {
		out[i] = Record(b.row(i)).IsMissing()
	}
	return out
}

// Compare returns elementwise record equality under IEEE float comparison:
// a record holding NaN never equals anything, itself included.
func (b *Buffer) Compare(other *Buffer) ([]bool, error) {
	if other == nil {
		return nil, errors.New(errors.ErrorTypeTypeMismatch, "cannot compare with a nil buffer")
	}
	if !b.layout.Equal(other.layout) {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"cannot compare %s with %s", b.layout.Name(), other.layout.Name())
	}
	if b.Len() != other.Len() {
		return nil, errors.Newf(errors.ErrorTypeLength,
			"cannot compare buffers of length %d and %d", b.Len(), other.Len())
	}

	out := make([]bool, b.Len())
	for i := range out {
		out[i] = recordsEqual(b.row(i), other.row(i))
	}
	return out, nil
}

// Equals reports whether both buffers have the same layout and length, the
// same records missing, and identical values in every other record.
func (b *Buffer) Equals(other *Buffer) bool {
	if other == nil || !b.layout.Equal(other.layout) || b.Len() != other.Len() {
		return false
	}
	for i := 0; i < b.Len(); i++ {
		left, right := Record(b.row(i)), Record(other.row(i))
		lm, rm := left.IsMissing(), right.IsMissing()
		if lm != rm {
			return false
		}
		if !lm && !recordsEqual(left, right) {
			return false
		}
	}
	return true
}

func recordsEqual(a, b []float64) bool {
	for j := range a {
		if a[j] != b[j] {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the buffer
func (b *Buffer) Copy() *Buffer {
	data := make([]float64, len(b.data))
	copy(data, b.data)
	return &Buffer{layout: b.layout, width: b.width, data: data}
}

// Take gathers records by position. Without allowFill negative positions
// count from the end. With allowFill, -1 marks a missing slot that receives
// fill (the layout's missing pattern when fill is nil) and other negative
// positions are rejected.
func (b *Buffer) Take(indices []int, allowFill bool, fill Scalar) (*Buffer, error) {
	n := b.Len()
	if !allowFill {
		positions, err := Positions(indices).Resolve(n)
		if err != nil {
			return nil, err
		}
		return b.gather(positions), nil
	}

	fillRec, err := RecordFromScalar(b.layout, fill)
	if err != nil {
		return nil, err
	}

	out := &Buffer{layout: b.layout, width: b.width, data: make([]float64, len(indices)*b.width)}
	for i, idx := range indices {
		switch {
		case idx == -1:
			copy(out.row(i), fillRec)
		case idx < -1:
			return nil, errors.Newf(errors.ErrorTypeIndex,
				"index %d invalid with fill enabled; only -1 marks a missing slot", idx).
				WithDetail("index", idx)
		case idx >= n:
			return nil, errors.Newf(errors.ErrorTypeIndex, "index %d out of range for length %d", idx, n).
				WithDetail("index", idx)
		default:
			copy(out.row(i), b.row(idx))
		}
	}
	return out, nil
}

func (b *Buffer) gather(positions []int) *Buffer {
	out := &Buffer{layout: b.layout, width: b.width, data: make([]float64, len(positions)*b.width)}
	for i, p := range positions {
		copy(out.row(i), b.row(p))
	}
	return out
}

// Concat joins buffers of one layout, first buffer first
func Concat(buffers ...*Buffer) (*Buffer, error) {
	if len(buffers) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "concat requires at least one buffer")
	}

	for i, b := range buffers {
		if b == nil {
			return nil, errors.Newf(errors.ErrorTypeConfig, "concat buffer at position %d is nil", i)
		}
	}

	first := buffers[0]
	total := 0
	for i, b := range buffers {
		if !first.layout.Equal(b.layout) {
			return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
				"cannot concat %s buffer at position %d onto %s", b.layout.Name(), i, first.layout.Name())
		}
		total += len(b.data)
	}

	data := make([]float64, 0, total)
	for _, b := range buffers {
		data = append(data, b.data...)
	}
	return &Buffer{layout: first.layout, width: first.width, data: data}, nil
}

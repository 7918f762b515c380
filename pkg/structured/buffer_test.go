package structured

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/structcol/pkg/errors"
)

func pointBuffer(t *testing.T, s *Schema, points ...[2]float64) *Buffer {
	t.Helper()
	records := make([]Record, len(points))
	for i, p := range points {
		records[i] = Record{p[0], p[1]}
	}
	b, err := FromRecords(records, s)
	require.NoError(t, err)
	return b
}

func TestEmptyIsZeroFilled(t *testing.T) {
	s := pointSchema(t)
	b, err := Empty(4, s)
	require.NoError(t, err)

	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 2, b.Width())
	assert.Equal(t, 4*2*8, b.ByteSize())
	rec, err := b.Record(3)
	require.NoError(t, err)
	assert.Equal(t, Record{0, 0}, rec)
}

func TestEmptyRejectsNegativeLength(t *testing.T) {
	_, err := Empty(-1, pointSchema(t))
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndex))
}

func TestNewBufferAdoptsStorage(t *testing.T) {
	s := pointSchema(t)
	data := []float64{0.5, 0.2, 1.5, 0.2, 2.5, 0.2}
	b, err := NewBuffer(data, s)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Len())

	data[4] = 7
	rec, err := b.Record(2)
	require.NoError(t, err)
	assert.Equal(t, Record{7, 0.2}, rec)

	_, err = NewBuffer([]float64{1, 2, 3}, s)
	assert.True(t, errors.IsType(err, errors.ErrorTypeLength))
}

func TestFromScalarsAndGet(t *testing.T) {
	s := pointSchema(t)
	a, _ := s.NewRow(1, 2)
	c, _ := s.NewRow(5, 6)

	b, err := FromScalars([]Scalar{a, nil, c}, s)
	require.NoError(t, err)
	require.Equal(t, 3, b.Len())

	got, err := b.Get(2)
	require.NoError(t, err)
	assert.Equal(t, Record{5, 6}, got.Tuple())
	assert.Equal(t, []bool{false, true, false}, b.IsMissing())

	_, err = b.Get(3)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndex))
	_, err = b.Get(-1)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndex))

	scalars := b.Scalars()
	assert.Nil(t, scalars[1])
	assert.Equal(t, Record{1, 2}, scalars[0].Tuple())
}

func TestSetCopiesScalarState(t *testing.T) {
	s := pointSchema(t)
	b, err := Empty(2, s)
	require.NoError(t, err)

	row, _ := s.NewRow(3, 4)
	require.NoError(t, b.Set(0, row))
	require.NoError(t, b.Set(1, nil))

	got, _ := b.Get(0)
	assert.Equal(t, Record{3, 4}, got.Tuple())
	assert.Equal(t, []bool{false, true}, b.IsMissing())
	assert.True(t, errors.IsType(b.Set(2, row), errors.ErrorTypeIndex))
}

func TestMissingIsAnyFieldNaN(t *testing.T) {
	s := pointSchema(t)
	b := pointBuffer(t, s, [2]float64{1, 2}, [2]float64{math.NaN(), 2}, [2]float64{1, math.NaN()})
	assert.Equal(t, []bool{false, true, true}, b.IsMissing())

	all, err := FromScalars([]Scalar{nil, nil}, s)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, all.IsMissing())
}

func TestSliceRangeAliases(t *testing.T) {
	s := pointSchema(t)
	b := pointBuffer(t, s, [2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 2}, [2]float64{3, 3})

	view, err := b.Slice(Range{Start: 1, Stop: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Len())

	row, _ := s.NewRow(9, 9)
	require.NoError(t, view.Set(0, row))
	got, _ := b.Get(1)
	assert.Equal(t, Record{9, 9}, got.Tuple(), "range slices share storage")

	_, err = b.Slice(Range{Start: 2, Stop: 5})
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndex))
}

func TestSliceMaskAndPositionsCopy(t *testing.T) {
	s := pointSchema(t)
	b := pointBuffer(t, s, [2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 2})

	masked, err := b.Slice(Mask{true, false, true})
	require.NoError(t, err)
	require.Equal(t, 2, masked.Len())
	rec, _ := masked.Record(1)
	assert.Equal(t, Record{2, 2}, rec)

	row, _ := s.NewRow(7, 7)
	require.NoError(t, masked.Set(0, row))
	orig, _ := b.Record(0)
	assert.Equal(t, Record{0, 0}, orig, "mask slices copy")

	picked, err := b.Slice(Positions{-1, 0})
	require.NoError(t, err)
	first, _ := picked.Record(0)
	assert.Equal(t, Record{2, 2}, first)

	_, err = b.Slice(Mask{true})
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndex))
	_, err = b.Slice(Positions{3})
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndex))
}

func TestFillBroadcasts(t *testing.T) {
	s := pointSchema(t)
	b, _ := Empty(4, s)
	row, _ := s.NewRow(1, 1)

	require.NoError(t, b.Fill(Mask{true, false, true, false}, row))
	assert.Equal(t, []bool{false, false, false, false}, b.IsMissing())
	rec, _ := b.Record(2)
	assert.Equal(t, Record{1, 1}, rec)
	rec, _ = b.Record(1)
	assert.Equal(t, Record{0, 0}, rec)

	require.NoError(t, b.Fill(All(b.Len()), nil))
	assert.Equal(t, []bool{true, true, true, true}, b.IsMissing())
}

func TestSetSliceLengthMismatch(t *testing.T) {
	s := pointSchema(t)
	b, _ := Empty(3, s)
	r1, _ := s.NewRow(1, 1)
	r2, _ := s.NewRow(2, 2)

	err := b.SetSlice(Range{Start: 0, Stop: 3}, []Scalar{r1, r2})
	assert.True(t, errors.IsType(err, errors.ErrorTypeLength))

	require.NoError(t, b.SetSlice(Positions{2, 0}, []Scalar{r1, r2}))
	rec, _ := b.Record(0)
	assert.Equal(t, Record{2, 2}, rec)
	rec, _ = b.Record(2)
	assert.Equal(t, Record{1, 1}, rec)
}

func TestSetSliceRejectsForeignScalarAtomically(t *testing.T) {
	s := pointSchema(t)
	other, _ := NewSchema("other", Float64Fields("x", "y"))
	b, _ := Empty(2, s)
	good, _ := s.NewRow(1, 1)
	bad, _ := other.NewRow(2, 2)

	err := b.SetSlice(All(2), []Scalar{good, bad})
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
	rec, _ := b.Record(0)
	assert.Equal(t, Record{0, 0}, rec)
}

func TestCompareKeepsNaNInequality(t *testing.T) {
	s := pointSchema(t)
	a := pointBuffer(t, s, [2]float64{1, 2}, [2]float64{math.NaN(), math.NaN()}, [2]float64{3, 4})
	b := pointBuffer(t, s, [2]float64{1, 2}, [2]float64{math.NaN(), math.NaN()}, [2]float64{3, 5})

	eq, err := a.Compare(b)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, eq)

	self, err := a.Compare(a)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, self, "an all-missing record is unequal to itself")

	other, _ := NewSchema("other", Float64Fields("x", "y"))
	c, _ := Empty(3, other)
	_, err = a.Compare(c)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
}

func TestEqualsTreatsMissingAsEqual(t *testing.T) {
	s := pointSchema(t)
	a := pointBuffer(t, s, [2]float64{1, 2}, [2]float64{math.NaN(), 0})
	b := pointBuffer(t, s, [2]float64{1, 2}, [2]float64{0, math.NaN()})
	c := pointBuffer(t, s, [2]float64{1, 3}, [2]float64{0, math.NaN()})

	assert.True(t, a.Equals(a))
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))
}

func TestCopyIsDeep(t *testing.T) {
	s := pointSchema(t)
	a := pointBuffer(t, s, [2]float64{1, 2})
	b := a.Copy()

	row, _ := s.NewRow(5, 5)
	require.NoError(t, b.Set(0, row))
	rec, _ := a.Record(0)
	assert.Equal(t, Record{1, 2}, rec)
}

func TestConcatPreservesOrder(t *testing.T) {
	s := pointSchema(t)
	b1 := pointBuffer(t, s, [2]float64{1, 1}, [2]float64{2, 2}, [2]float64{3, 3})
	b2 := pointBuffer(t, s, [2]float64{4, 4}, [2]float64{5, 5})

	out, err := Concat(b1, b2)
	require.NoError(t, err)
	require.Equal(t, 5, out.Len())
	for i := 0; i < 5; i++ {
		rec, _ := out.Record(i)
		assert.Equal(t, float64(i+1), rec[0])
	}
}

func TestConcatRejectsMixedLayouts(t *testing.T) {
	s := pointSchema(t)
	other, _ := NewSchema("other", Float64Fields("x", "y"))
	a, _ := Empty(1, s)
	b, _ := Empty(1, other)

	_, err := Concat(a, b)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))

	_, err = Concat()
	assert.Error(t, err)
}

func TestConcatRejectsNilBuffer(t *testing.T) {
	s := pointSchema(t)
	a := pointBuffer(t, s, [2]float64{1, 1})

	for _, args := range [][]*Buffer{{a, nil}, {nil, a}, {nil}} {
		out, err := Concat(args...)
		require.Error(t, err)
		assert.Nil(t, out)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	}
}

func TestTake(t *testing.T) {
	s := pointSchema(t)
	b := pointBuffer(t, s, [2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 2})

	t.Run("fill suppresses reverse indexing", func(t *testing.T) {
		out, err := b.Take([]int{-1}, true, nil)
		require.NoError(t, err)
		assert.Equal(t, []bool{true}, out.IsMissing())
	})

	t.Run("fill with explicit value", func(t *testing.T) {
		fill, _ := s.NewRow(8, 8)
		out, err := b.Take([]int{2, -1, 0}, true, fill)
		require.NoError(t, err)
		rec, _ := out.Record(1)
		assert.Equal(t, Record{8, 8}, rec)
		rec, _ = out.Record(0)
		assert.Equal(t, Record{2, 2}, rec)
	})

	t.Run("negative wraps without fill", func(t *testing.T) {
		out, err := b.Take([]int{-1, -3}, false, nil)
		require.NoError(t, err)
		rec, _ := out.Record(0)
		assert.Equal(t, Record{2, 2}, rec)
		rec, _ = out.Record(1)
		assert.Equal(t, Record{0, 0}, rec)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := b.Take([]int{3}, false, nil)
		assert.True(t, errors.IsType(err, errors.ErrorTypeIndex))
		_, err = b.Take([]int{-4}, false, nil)
		assert.True(t, errors.IsType(err, errors.ErrorTypeIndex))
		_, err = b.Take([]int{3}, true, nil)
		assert.True(t, errors.IsType(err, errors.ErrorTypeIndex))
		_, err = b.Take([]int{-2}, true, nil)
		assert.True(t, errors.IsType(err, errors.ErrorTypeIndex))
	})

	t.Run("take copies", func(t *testing.T) {
		out, err := b.Take([]int{0}, false, nil)
		require.NoError(t, err)
		row, _ := s.NewRow(4, 4)
		require.NoError(t, out.Set(0, row))
		rec, _ := b.Record(0)
		assert.Equal(t, Record{0, 0}, rec)
	})
}

package structured

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/structcol/pkg/errors"
)

func TestFieldViewAliasesStorage(t *testing.T) {
	s := pointSchema(t)
	b, err := Empty(3, s)
	require.NoError(t, err)

	xs, err := b.Field("x")
	require.NoError(t, err)
	require.NoError(t, xs.Assign([]float64{1, 2, 3}))

	ys, err := b.Field("y")
	require.NoError(t, err)
	ys.Fill(0.5)

	got, err := b.Get(1)
	require.NoError(t, err)
	assert.Equal(t, Record{2, 0.5}, got.Tuple())

	row, _ := s.NewRow(10, 20)
	require.NoError(t, b.Set(2, row))
	assert.Equal(t, 10.0, xs.At(2), "writes through Set are visible in the view")
	assert.Equal(t, []float64{0.5, 0.5, 20}, ys.Values())
}

func TestFieldViewOverRangeSlice(t *testing.T) {
	s := pointSchema(t)
	b, _ := Empty(5, s)
	view, err := b.Slice(Range{Start: 2, Stop: 4})
	require.NoError(t, err)

	xs, err := view.Field("x")
	require.NoError(t, err)
	assert.Equal(t, 2, xs.Len())
	xs.Set(1, 42)

	rec, _ := b.Record(3)
	assert.Equal(t, Record{42, 0}, rec)
}

func TestFieldUnknownName(t *testing.T) {
	b, _ := Empty(1, pointSchema(t))
	_, err := b.Field("z")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestFieldAssignLength(t *testing.T) {
	b, _ := Empty(2, pointSchema(t))
	xs, _ := b.Field("x")
	err := xs.Assign([]float64{1, 2, 3})
	assert.True(t, errors.IsType(err, errors.ErrorTypeLength))
}

func TestFieldAtOutOfRangePanics(t *testing.T) {
	b, _ := Empty(2, pointSchema(t))
	xs, _ := b.Field("x")
	assert.Panics(t, func() { xs.At(2) })
	assert.Panics(t, func() { xs.Set(-1, 0) })
}

func TestUnpack(t *testing.T) {
	s := pointSchema(t)
	b := pointBuffer(t, s, [2]float64{1, 2}, [2]float64{3, 4})

	cols := b.Unpack()
	require.Len(t, cols, 2)
	assert.Equal(t, []float64{1, 3}, cols["x"].Values())
	assert.Equal(t, []float64{2, 4}, cols["y"].Values())

	cols["y"].Apply(func(_ int, v float64) float64 { return v * 10 })
	rec, _ := b.Record(1)
	assert.Equal(t, Record{3, 40}, rec)
}

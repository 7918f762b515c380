package structured

import (
	"github.com/ajitpratap0/structcol/pkg/errors"
)

// Indexer selects rows of a buffer for slicing and slice assignment
type Indexer interface {
	// Resolve returns the selected positions, in order, for a buffer of n rows
	Resolve(n int) ([]int, error)
}

// Range selects the contiguous rows [Start, Stop). Slicing with a Range
// returns a view sharing storage with the source.
type Range struct {
	Start int
	Stop  int
}

// All returns the Range covering every row of a buffer of n rows
func All(n int) Range {
	return Range{Start: 0, Stop: n}
}

// Resolve implements Indexer
func (r Range) Resolve(n int) ([]int, error) {
	if err := r.check(n); err != nil {
		return nil, err
	}
	out := make([]int, r.Stop-r.Start)
	for i := range out {
		out[i] = r.Start + i
	}
	return out, nil
}

func (r Range) check(n int) error {
	if r.Start < 0 || r.Stop > n || r.Start > r.Stop {
		return errors.Newf(errors.ErrorTypeIndex, "range [%d, %d) out of bounds for length %d", r.Start, r.Stop, n).
			WithDetail("start", r.Start).
			WithDetail("stop", r.Stop)
	}
	return nil
}

// Mask selects the rows whose entry is true. Its length must equal the
// buffer length.
type Mask []bool

// Resolve implements Indexer
func (m Mask) Resolve(n int) ([]int, error) {
	if len(m) != n {
		return nil, errors.Newf(errors.ErrorTypeIndex, "boolean mask has length %d, buffer has %d", len(m), n)
	}
	out := make([]int, 0, n)
	for i, keep := range m {
		if keep {
			out = append(out, i)
		}
	}
	return out, nil
}

// Positions selects rows by explicit position. Negative positions count from
// the end; every position must lie in [-n, n).
type Positions []int

// Resolve implements Indexer
func (p Positions) Resolve(n int) ([]int, error) {
	out := make([]int, len(p))
	for i, pos := range p {
		norm, err := normalize(pos, n)
		if err != nil {
			return nil, err
		}
		out[i] = norm
	}
	return out, nil
}

// normalize maps a possibly negative position onto [0, n)
func normalize(pos, n int) (int, error) {
	if pos < -n || pos >= n {
		return 0, errors.Newf(errors.ErrorTypeIndex, "index %d out of range for length %d", pos, n).
			WithDetail("index", pos)
	}
	if pos < 0 {
		pos += n
	}
	return pos, nil
}

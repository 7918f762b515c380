package dist

import (
	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

// Distributions converts every row of a distribution buffer. Missing rows
// yield a nil entry. The first row that cannot be converted aborts with its
// index attached.
func Distributions(b *structured.Buffer) ([]Distribution, error) {
	out := make([]Distribution, b.Len())
	for i, s := range b.Scalars() {
		if s == nil {
			continue
		}
		ds, ok := s.(Scalar)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
				"dtype %s is not a distribution", b.Layout().Name())
		}
		d, err := ds.ToDistribution()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "cannot convert row").WithDetail("row", i)
		}
		out[i] = d
	}
	return out, nil
}

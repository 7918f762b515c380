package dist

import (
	"github.com/ajitpratap0/structcol/pkg/structured"
)

// RegisterBuiltins registers the Bernoulli and log-normal dtypes and the
// categorical name parser with reg. Calling it more than once is a no-op.
func RegisterBuiltins(reg *structured.Registry) error {
	for _, l := range []structured.Layout{BernoulliDtype, LogNormalDtype} {
		if err := reg.Register(l); err != nil {
			return err
		}
	}
	return reg.RegisterParser(CategoricalPrefix, parseCategoricalLayout)
}

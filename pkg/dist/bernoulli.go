package dist

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

type bernoulliDtype struct{}

// BernoulliDtype is the "dist[bernoulli]" layout with the single field p
var BernoulliDtype structured.Layout = bernoulliDtype{}

func (bernoulliDtype) Name() string { return namePrefix + "bernoulli]" }

func (bernoulliDtype) Fields() []structured.Field { return structured.Float64Fields("p") }

func (bernoulliDtype) MissingRecord() structured.Record { return structured.NaNRecord(1) }

func (bernoulliDtype) NewScalar(rec structured.Record) structured.Scalar {
	return Bernoulli{P: rec[0]}
}

func (bernoulliDtype) Equal(other structured.Layout) bool {
	_, ok := other.(bernoulliDtype)
	return ok
}

// Bernoulli is a distribution over {0, 1} with success probability P
type Bernoulli struct {
	P float64
}

// Layout returns BernoulliDtype
func (Bernoulli) Layout() structured.Layout { return BernoulliDtype }

// Tuple returns (p)
func (b Bernoulli) Tuple() structured.Record { return structured.Record{b.P} }

// Dict returns {"p": P}
func (b Bernoulli) Dict() map[string]float64 { return structured.Dict(b) }

func (b Bernoulli) String() string {
	return "Bernoulli(" + formatParams([]string{"p"}, b.Tuple()) + ")"
}

// MarshalJSON encodes the scalar as {"p": ...}
func (b Bernoulli) MarshalJSON() ([]byte, error) { return structured.MarshalScalar(b) }

// ToDistribution returns the gonum Bernoulli distribution. P must lie in [0, 1].
func (b Bernoulli) ToDistribution() (Distribution, error) {
	if !(b.P >= 0 && b.P <= 1) {
		return nil, errors.Newf(errors.ErrorTypeData, "bernoulli p=%g is outside [0, 1]", b.P)
	}
	return distuv.Bernoulli{P: b.P}, nil
}

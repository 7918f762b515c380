package dist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

type logNormalDtype struct{}

// LogNormalDtype is the "dist[lognorm]" layout with fields mu and sigma, the
// location and scale of the underlying normal distribution.
var LogNormalDtype structured.Layout = logNormalDtype{}

func (logNormalDtype) Name() string { return namePrefix + "lognorm]" }

func (logNormalDtype) Fields() []structured.Field {
	return structured.Float64Fields("mu", "sigma")
}

func (logNormalDtype) MissingRecord() structured.Record { return structured.NaNRecord(2) }

func (logNormalDtype) NewScalar(rec structured.Record) structured.Scalar {
	return LogNormal{Mu: rec[0], Sigma: rec[1]}
}

func (logNormalDtype) Equal(other structured.Layout) bool {
	_, ok := other.(logNormalDtype)
	return ok
}

// LogNormal is a distribution whose logarithm is normal with mean Mu and
// standard deviation Sigma.
type LogNormal struct {
	Mu    float64
	Sigma float64
}

// Layout returns LogNormalDtype
func (LogNormal) Layout() structured.Layout { return LogNormalDtype }

// Tuple returns (mu, sigma)
func (l LogNormal) Tuple() structured.Record { return structured.Record{l.Mu, l.Sigma} }

// Dict returns {"mu": Mu, "sigma": Sigma}
func (l LogNormal) Dict() map[string]float64 { return structured.Dict(l) }

func (l LogNormal) String() string {
	return "LogNormal(" + formatParams([]string{"mu", "sigma"}, l.Tuple()) + ")"
}

// MarshalJSON encodes the scalar as {"mu": ..., "sigma": ...}
func (l LogNormal) MarshalJSON() ([]byte, error) { return structured.MarshalScalar(l) }

// ToDistribution returns the gonum log-normal distribution. Sigma must be
// positive and Mu finite.
func (l LogNormal) ToDistribution() (Distribution, error) {
	if !(l.Sigma > 0) || math.IsInf(l.Sigma, 0) {
		return nil, errors.Newf(errors.ErrorTypeData, "lognorm sigma=%g must be positive and finite", l.Sigma)
	}
	if math.IsNaN(l.Mu) || math.IsInf(l.Mu, 0) {
		return nil, errors.Newf(errors.ErrorTypeData, "lognorm mu=%g must be finite", l.Mu)
	}
	return distuv.LogNormal{Mu: l.Mu, Sigma: l.Sigma}, nil
}

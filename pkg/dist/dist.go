// Package dist provides probability distribution dtypes stored as structured
// columns: Bernoulli, log-normal and categorical. Each dtype is a
// structured.Layout and each scalar a structured.Scalar, so buffers of
// distributions get slicing, projection and Arrow interchange for free.
//
// Storage is a marshalling concern only. Parameters are never validated when
// written; validation happens when a scalar or buffer is converted to a
// gonum distribution with ToDistribution or Distributions.
package dist

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/structcol/pkg/structured"
)

// Family prefix shared by every canonical dtype name in this package
const namePrefix = "dist["

// Distribution is the subset of gonum's univariate distributions the
// conversions return.
type Distribution interface {
	Prob(x float64) float64
	Mean() float64
	Rand() float64
}

// Scalar is a structured scalar that can be turned into a distribution
type Scalar interface {
	structured.Scalar
	ToDistribution() (Distribution, error)
}

// formatParams renders name=value pairs in field order, e.g. "p=0.5"
func formatParams(names []string, values []float64) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, values[i])
	}
	return strings.Join(parts, ", ")
}

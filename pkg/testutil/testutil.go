// Package testutil provides testing utilities for structcol
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/structcol/pkg/columnar"
	"github.com/ajitpratap0/structcol/pkg/dist"
	"github.com/ajitpratap0/structcol/pkg/logger"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

// TestLogger installs a logger that writes to the test output as the global
// logger. The previous logger is restored when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	prev := logger.Get()
	l := zaptest.NewLogger(t)
	logger.Set(l)
	t.Cleanup(func() { logger.Set(prev) })
	return l
}

// TestContext creates a test context with a 30-second timeout that is
// cancelled when the test completes.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// Registry returns a fresh registry with the distribution dtypes registered
func Registry(t *testing.T) *structured.Registry {
	t.Helper()
	reg := structured.NewRegistry()
	require.NoError(t, dist.RegisterBuiltins(reg))
	return reg
}

// SampleTable returns a three-row table with a categorical column "x" over
// alpha/beta/gamma and a log-normal column "y" whose row 1 is missing.
func SampleTable(t *testing.T) *columnar.Table {
	t.Helper()

	cat := dist.MustCategoricalDtype("alpha", "beta", "gamma")
	x, err := structured.Empty(3, cat)
	require.NoError(t, err)
	cols := x.Unpack()
	require.NoError(t, cols["alpha"].Assign([]float64{0.1, 0.2, 0.3}))
	require.NoError(t, cols["beta"].Assign([]float64{0.4, 0.2, 0.0}))
	require.NoError(t, cols["gamma"].Assign([]float64{0.5, 0.6, 0.7}))

	y, err := structured.FromScalars([]structured.Scalar{
		dist.LogNormal{Mu: 0, Sigma: 1},
		nil,
		dist.LogNormal{Mu: 2, Sigma: 0.25},
	}, dist.LogNormalDtype)
	require.NoError(t, err)

	table, err := columnar.NewTable(
		columnar.Column{Name: "x", Buffer: x},
		columnar.Column{Name: "y", Buffer: y},
	)
	require.NoError(t, err)
	return table
}

// SPDX-License-Identifier: MIT
// Package fit_test contains shared fixtures: five templates around a top-quark
// mass of 172.5 over five bins, a Poisson-like statistical covariance and a
// correlated experimental covariance.

package fit_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/litefit/fit"
)

var (
	refs  = []float64{169.5, 171.5, 172.5, 173.5, 175.5}
	base  = []float64{400, 300, 200, 150, 100}
	slope = []float64{-2, -1, 0.5, 1.5, 2}
	curv  = []float64{0.3, 0.2, 0.1, 0.2, 0.3}
	qslp  = []float64{-4, -3, 2, 3, 4}
	noise = []float64{1, -2, 0.5, 3, -1}
)

// linear is the template response base + slope·(m - 172.5).
func linear(m float64) []float64 {
	out := make([]float64, len(base))
	for i := range base {
		out[i] = base[i] + slope[i]*(m-172.5)
	}

	return out
}

// quadratic is base + qslp·Δ + curv·Δ² with Δ = m - 172.5.
func quadratic(m float64) []float64 {
	d := m - 172.5
	out := make([]float64, len(base))
	for i := range base {
		out[i] = base[i] + qslp[i]*d + curv[i]*d*d
	}

	return out
}

func plus(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}

	return out
}

// statRows is diag(base).
func statRows() [][]float64 {
	rows := make([][]float64, len(base))
	for i := range rows {
		rows[i] = make([]float64, len(base))
		rows[i][i] = base[i]
	}

	return rows
}

// expRows is a shift of 2% per bin with bin-to-bin correlation 0.3.
func expRows() [][]float64 {
	n := len(base)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			c := 0.3
			if i == j {
				c = 1
			}
			rows[i][j] = c * 0.02 * base[i] * 0.02 * base[j]
		}
	}

	return rows
}

// newConfig registers the templates of response, data and the stat and exp
// covariances.
func newConfig(t testing.TB, response func(float64) []float64, data []float64, opts ...fit.Option) *fit.Configuration {
	t.Helper()
	cfg := fit.NewConfiguration(opts...)
	for _, r := range refs {
		require.NoError(t, cfg.AddTemplate(r, response(r)))
	}
	require.NoError(t, cfg.SetData(data))
	require.NoError(t, cfg.AddError("stat", statRows()))
	require.NoError(t, cfg.AddError("exp", expRows()))

	return cfg
}

// solve freezes cfg and solves it.
func solve(t testing.TB, cfg *fit.Configuration) (*fit.FrozenFit, *fit.Result) {
	t.Helper()
	frozen, err := cfg.Freeze()
	require.NoError(t, err)
	res, err := frozen.Solve()
	require.NoError(t, err)

	return frozen, res
}

// sumSquares returns Σ σ_k² over the decomposition.
func sumSquares(res *fit.Result) float64 {
	var s float64
	for _, src := range res.Sources {
		s += src.Sigma * src.Sigma
	}

	return s
}

func nan() float64 { return math.NaN() }

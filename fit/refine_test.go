// SPDX-License-Identifier: MIT

package fit_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/litefit/fit"
	"github.com/katalvlaran/litefit/templates"
)

func TestNewtonOnLinearConvergesInOneIteration(t *testing.T) {
	t.Parallel()
	frozen, res := solve(t, newConfig(t, linear, plus(linear(172.8), noise)))

	var steps []fit.Iteration
	refined, err := frozen.Refine(res, fit.OnIteration(func(it fit.Iteration) { steps = append(steps, it) }))
	require.NoError(t, err)
	assert.Equal(t, 1, refined.Iterations)
	assert.True(t, refined.Converged)
	assert.Equal(t, "newton", refined.Method)
	assert.InDelta(t, res.Estimate, refined.Estimate, 1e-9)
	assert.InDelta(t, res.Uncertainty, refined.Uncertainty, 1e-9)
	assert.InDelta(t, res.ChiSquare, refined.ChiSquare, 1e-9)
	require.Len(t, steps, 1)
	assert.Equal(t, fit.Newton, steps[0].Method)
	assert.Less(t, math.Abs(steps[0].Delta), 1e-6)
}

func TestNewtonThreePointStencil(t *testing.T) {
	t.Parallel()
	frozen, res := solve(t, newConfig(t, linear, linear(171.1)))
	refined, err := frozen.Refine(res, fit.WithPoints(1), fit.WithStep(0.3))
	require.NoError(t, err)
	assert.InDelta(t, 171.1, refined.Estimate, 1e-8)
}

func TestRefineQuadraticTruth(t *testing.T) {
	t.Parallel()
	const truth = 172.9
	frozen, res := solve(t, newConfig(t, quadratic, quadratic(truth), fit.WithStrategy(templates.Quadratic)))
	assert.False(t, res.Converged)
	initial := math.Abs(res.Estimate - truth)
	require.Greater(t, initial, 1e-5)

	t.Run("taylor", func(t *testing.T) {
		t.Parallel()
		refined, err := frozen.Refine(res, fit.WithMethod(fit.Taylor))
		require.NoError(t, err)
		assert.Less(t, math.Abs(refined.Estimate-truth), 0.1*initial)
		assert.Equal(t, "taylor", refined.Method)
		assert.Equal(t, 1, refined.Iterations)
	})

	t.Run("newton", func(t *testing.T) {
		t.Parallel()
		refined, err := frozen.Refine(res)
		require.NoError(t, err)
		assert.True(t, refined.Converged)
		assert.InDelta(t, truth, refined.Estimate, 1e-6)
		assert.Less(t, refined.ChiSquare, 1e-9)
		assert.LessOrEqual(t, refined.Iterations, 6)
	})

	t.Run("minimize", func(t *testing.T) {
		t.Parallel()
		var calls int
		refined, err := frozen.Refine(res, fit.WithMethod(fit.Minimize), fit.OnIteration(func(fit.Iteration) { calls++ }))
		if err != nil {
			require.ErrorIs(t, err, fit.ErrMaxIterationsExceeded)
		}
		require.NotNil(t, refined)
		assert.InDelta(t, truth, refined.Estimate, 1e-3)
		assert.Equal(t, "minimize", refined.Method)
		assert.Positive(t, calls)
	})

	t.Run("iteration cap", func(t *testing.T) {
		t.Parallel()
		refined, err := frozen.Refine(res, fit.WithMaxIterations(1), fit.WithTolerance(1e-12))
		assert.ErrorIs(t, err, fit.ErrMaxIterationsExceeded)
		require.NotNil(t, refined)
		assert.False(t, refined.Converged)
		assert.Equal(t, 1, refined.Iterations)
		assert.Less(t, math.Abs(refined.Estimate-truth), initial)
	})
}

func TestRefineOptions(t *testing.T) {
	t.Parallel()
	frozen, res := solve(t, newConfig(t, linear, linear(172.5)))

	tests := []struct {
		name string
		opt  fit.RefineOption
	}{
		{name: "method", opt: fit.WithMethod(fit.Method(9))},
		{name: "iterations", opt: fit.WithMaxIterations(0)},
		{name: "tolerance", opt: fit.WithTolerance(-1)},
		{name: "step", opt: fit.WithStep(math.Inf(1))},
		{name: "points", opt: fit.WithPoints(3)},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := frozen.Refine(res, tc.opt)
			assert.ErrorIs(t, err, fit.ErrOptionViolation)
		})
	}

	_, err := frozen.Refine(nil)
	assert.ErrorIs(t, err, fit.ErrNotInitialized)

	m, err := fit.ParseMethod("Taylor")
	require.NoError(t, err)
	assert.Equal(t, fit.Taylor, m)
	_, err = fit.ParseMethod("simplex")
	assert.ErrorIs(t, err, fit.ErrOptionViolation)
}

func TestRefineOutOfRange(t *testing.T) {
	t.Parallel()
	// the closed form runs with extrapolation, refinement without
	_, res := solve(t, newConfig(t, linear, linear(177), fit.WithExtrapolation(true)))
	frozen, err := newConfig(t, linear, linear(177)).Freeze()
	require.NoError(t, err)

	_, err = frozen.Refine(res, fit.WithMethod(fit.Taylor))
	assert.ErrorIs(t, err, fit.ErrOutOfRange)
	_, err = frozen.Refine(res)
	assert.ErrorIs(t, err, fit.ErrOutOfRange)
}

// SPDX-License-Identifier: MIT

package templates_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/litefit/templates"
)

const tol = 1e-9

func TestNewBasisErrors(t *testing.T) {
	t.Parallel()
	one := templates.NewSet()
	require.NoError(t, one.Add(172.5, []float64{1, 2}))
	two := templates.NewSet()
	require.NoError(t, two.Add(171.5, []float64{1, 2}))
	require.NoError(t, two.Add(173.5, []float64{2, 3}))
	negative := templates.NewSet()
	require.NoError(t, negative.Add(-1, []float64{1, 2}))
	require.NoError(t, negative.Add(1, []float64{2, 3}))

	tests := []struct {
		name    string
		set     *templates.Set
		opts    []templates.Option
		wantErr error
	}{
		{name: "nil set", set: nil, wantErr: templates.ErrInsufficientTemplates},
		{name: "single template", set: one, wantErr: templates.ErrInsufficientTemplates},
		{name: "quadratic needs three", set: two, opts: []templates.Option{templates.WithStrategy(templates.Quadratic)}, wantErr: templates.ErrInsufficientTemplates},
		{name: "zero gamma", set: two, opts: []templates.Option{templates.WithGamma(0)}, wantErr: templates.ErrOptionViolation},
		{name: "nan gamma", set: two, opts: []templates.Option{templates.WithGamma(nan())}, wantErr: templates.ErrOptionViolation},
		{name: "unknown strategy", set: two, opts: []templates.Option{templates.WithStrategy(templates.Strategy(9))}, wantErr: templates.ErrOptionViolation},
		{name: "gamma with negative reference", set: negative, opts: []templates.Option{templates.WithGamma(2)}, wantErr: templates.ErrNonPositive},
		{name: "two templates linear", set: two},
		{name: "negative reference identity gamma", set: negative},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			b, err := templates.NewBasis(tc.set, tc.opts...)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, b)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2, b.Len())
		})
	}
}

func TestInterpolateRecoversLinearTruth(t *testing.T) {
	t.Parallel()
	set := newSet(t, 0)
	for _, s := range []templates.Strategy{templates.Regression, templates.PiecewiseLinear, templates.Quadratic} {
		s := s
		t.Run(s.String(), func(t *testing.T) {
			t.Parallel()
			b, err := templates.NewBasis(set, templates.WithStrategy(s))
			require.NoError(t, err)
			for _, m := range []float64{169.5, 170.2, 172.5, 174.9, 175.5} {
				got, err := b.Interpolate(m)
				require.NoError(t, err)
				assert.InDeltaSlice(t, truth(m, 0), got, tol, "m=%v", m)

				slope, err := b.Derivative(m, 1)
				require.NoError(t, err)
				assert.InDeltaSlice(t, []float64{-0.5, 0.1, 0.4}, slope, 1e-8)
			}
		})
	}
}

func TestExactTemplateAtReference(t *testing.T) {
	t.Parallel()
	set := templates.NewSet()
	// non-linear per-bin values: only the piecewise basis hits them exactly
	require.NoError(t, set.Add(1, []float64{1, 0}))
	require.NoError(t, set.Add(2, []float64{5, 3}))
	require.NoError(t, set.Add(3, []float64{2, 1}))

	b, err := templates.NewBasis(set, templates.WithStrategy(templates.PiecewiseLinear))
	require.NoError(t, err)
	w, err := b.Weights(2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1, 0}, w, tol)

	q, err := templates.NewBasis(set, templates.WithStrategy(templates.Quadratic))
	require.NoError(t, err)
	got, err := q.Interpolate(3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 1}, got, tol)
}

func TestDefaultBasisHitsEveryTemplate(t *testing.T) {
	t.Parallel()
	set := newSet(t, 0.01)
	b, err := templates.NewBasis(set)
	require.NoError(t, err)
	assert.Equal(t, templates.PiecewiseLinear, b.Strategy())
	for j, r := range refs {
		got, err := b.Interpolate(r)
		require.NoError(t, err)
		assert.InDeltaSlice(t, b.Template(j), got, tol, "m=%v", r)
	}
}

func TestRegressionWeights(t *testing.T) {
	t.Parallel()
	b, err := templates.NewBasis(newSet(t, 0), templates.WithStrategy(templates.Regression))
	require.NoError(t, err)

	w, err := b.Weights(172.1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, floats.Sum(w), tol)
	assert.InDelta(t, 172.1, floats.Dot(w, b.References()), 1e-8)

	d2, err := b.WeightDerivative(172.1, 2)
	require.NoError(t, err)
	for _, v := range d2 {
		assert.InDelta(t, 0, v, tol)
	}

	_, err = b.WeightDerivative(172.1, 3)
	assert.ErrorIs(t, err, templates.ErrOptionViolation)
}

func TestOutOfRange(t *testing.T) {
	t.Parallel()
	set := newSet(t, 0)
	strict, err := templates.NewBasis(set)
	require.NoError(t, err)
	_, err = strict.Interpolate(168)
	assert.ErrorIs(t, err, templates.ErrOutOfRange)
	_, err = strict.Interpolate(math.Inf(1))
	assert.ErrorIs(t, err, templates.ErrNaNInf)
	// edge within rounding is accepted
	assert.NoError(t, strict.CheckDomain(175.5+1e-12))

	for _, s := range []templates.Strategy{templates.Regression, templates.PiecewiseLinear} {
		loose, err := templates.NewBasis(set, templates.WithStrategy(s), templates.WithExtrapolation())
		require.NoError(t, err)
		got, err := loose.Interpolate(168)
		require.NoError(t, err)
		assert.InDeltaSlice(t, truth(168, 0), got, 1e-8, s.String())
	}
}

func TestSegments(t *testing.T) {
	t.Parallel()
	set := newSet(t, 0)

	reg, err := templates.NewBasis(set, templates.WithStrategy(templates.Regression))
	require.NoError(t, err)
	segs := reg.Segments()
	require.Len(t, segs, 1)
	assert.Equal(t, 169.5, segs[0].Lo)
	assert.Equal(t, 175.5, segs[0].Hi)
	assertSegmentMatches(t, reg, segs[0], 172.0)

	pw, err := templates.NewBasis(set, templates.WithStrategy(templates.PiecewiseLinear), templates.WithExtrapolation())
	require.NoError(t, err)
	segs = pw.Segments()
	require.Len(t, segs, len(refs)-1)
	assert.True(t, math.IsInf(segs[0].Lo, -1))
	assert.True(t, math.IsInf(segs[len(segs)-1].Hi, 1))
	for k, seg := range segs[1 : len(segs)-1] {
		assertSegmentMatches(t, pw, seg, 0.5*(refs[k+1]+refs[k+2]))
	}

	quad, err := templates.NewBasis(set, templates.WithStrategy(templates.Quadratic))
	require.NoError(t, err)
	assert.Nil(t, quad.Segments())
	assert.False(t, quad.Linear())
}

func TestLinearizeQuadratic(t *testing.T) {
	t.Parallel()
	b, err := templates.NewBasis(newSet(t, 0.01), templates.WithStrategy(templates.Quadratic))
	require.NoError(t, err)

	seg, err := b.Linearize(173)
	require.NoError(t, err)
	assertSegmentMatches(t, b, seg, 173)

	curv, err := b.Derivative(173, 2)
	require.NoError(t, err)
	for _, v := range curv {
		assert.InDelta(t, 0.02, v, 1e-8)
	}

	_, err = b.Linearize(180)
	assert.ErrorIs(t, err, templates.ErrOutOfRange)
}

func TestGamma(t *testing.T) {
	t.Parallel()
	b, err := templates.NewBasis(newSet(t, 0), templates.WithGamma(2))
	require.NoError(t, err)
	assert.Equal(t, 2.0, b.Gamma())

	x, err := b.ToX(172.5)
	require.NoError(t, err)
	assert.InDelta(t, 172.5*172.5, x, tol)
	m, err := b.FromX(x)
	require.NoError(t, err)
	assert.InDelta(t, 172.5, m, tol)

	_, err = b.FromX(-1)
	assert.ErrorIs(t, err, templates.ErrNonPositive)

	// weights reproduce the coordinate itself
	w, err := b.Weights(172.1)
	require.NoError(t, err)
	xs := make([]float64, len(refs))
	for j, r := range refs {
		xs[j] = r * r
	}
	assert.InDelta(t, 172.1*172.1, floats.Dot(w, xs), 1e-6)

	d1, _ := b.Jacobian(3)
	assert.Equal(t, 6.0, d1)
}

func TestCombine(t *testing.T) {
	t.Parallel()
	b, err := templates.NewBasis(newSet(t, 0))
	require.NoError(t, err)
	_, err = b.Combine([]float64{1})
	assert.ErrorIs(t, err, templates.ErrDimensionMismatch)

	got, err := b.Combine([]float64{0, 0, 1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, b.Template(2), got)
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()
	s, err := templates.ParseStrategy("Piecewise")
	require.NoError(t, err)
	assert.Equal(t, templates.PiecewiseLinear, s)
	assert.Equal(t, "quadratic", templates.Quadratic.String())
	assert.Equal(t, "Strategy(7)", templates.Strategy(7).String())

	_, err = templates.ParseStrategy("spline")
	assert.ErrorIs(t, err, templates.ErrOptionViolation)
}

// assertSegmentMatches checks W0 + W1·x against the basis weights at m.
func assertSegmentMatches(t *testing.T, b *templates.Basis, seg templates.Segment, m float64) {
	t.Helper()
	x, err := b.ToX(m)
	require.NoError(t, err)
	want, err := b.Weights(m)
	require.NoError(t, err)

	got := make([]float64, len(seg.W0))
	floats.AddScaledTo(got, seg.W0, x, seg.W1)
	assert.InDeltaSlice(t, want, got, 1e-8, "m=%v", m)
}

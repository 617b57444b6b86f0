// SPDX-License-Identifier: MIT

package templates

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// domainTol is the relative slack (of the reference span) tolerated at the
// range edges, so that a solution clamped to an edge and mapped through m^γ
// and back still counts as inside.
const domainTol = 1e-9

// Basis is an immutable interpolation model built from a Set.
//
// Weights are computed in the coordinate x = m^γ. Polynomial strategies
// (Regression, Quadratic) store the pseudo-inverse of the Vandermonde matrix
// of the centred, scaled coordinate t = (x - center)/scale, so that
//
//	w_j(x) = Σ_q coef[q][j] · t^q.
type Basis struct {
	strategy    Strategy
	gamma       float64
	extrapolate bool

	refs   []float64   // ascending reference values
	xs     []float64   // refs in the basis coordinate
	values [][]float64 // template vectors, same order as refs
	bins   int

	coef          [][]float64 // polynomial strategies only
	center, scale float64
}

// NewBasis builds the interpolation basis of set.
//
// Errors:
//   - ErrOptionViolation for invalid options.
//   - ErrInsufficientTemplates when set has fewer templates than the strategy needs.
//   - ErrNonPositive when γ ≠ 1 and a reference value is ≤ 0.
//
// Complexity: O(M³ + M·N) for M templates of N bins.
func NewBasis(set *Set, opts ...Option) (*Basis, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.err != nil {
		return nil, fmt.Errorf("NewBasis: %w", o.err)
	}
	if set == nil || set.Len() < o.strategy.minTemplates() {
		have := 0
		if set != nil {
			have = set.Len()
		}

		return nil, fmt.Errorf("NewBasis: %s needs %d templates, have %d: %w",
			o.strategy, o.strategy.minTemplates(), have, ErrInsufficientTemplates)
	}

	tpls := set.Templates()
	b := &Basis{
		strategy:    o.strategy,
		gamma:       o.gamma,
		extrapolate: o.extrapolate,
		refs:        make([]float64, len(tpls)),
		xs:          make([]float64, len(tpls)),
		values:      make([][]float64, len(tpls)),
		bins:        set.Bins(),
	}
	var err error
	for j, t := range tpls {
		b.refs[j] = t.Reference
		b.values[j] = t.Values
		if b.xs[j], err = b.ToX(t.Reference); err != nil {
			return nil, fmt.Errorf("NewBasis: %w", err)
		}
	}

	switch b.strategy {
	case Regression:
		err = b.fitPolynomial(1)
	case Quadratic:
		err = b.fitPolynomial(2)
	}
	if err != nil {
		return nil, fmt.Errorf("NewBasis: %w", err)
	}

	return b, nil
}

// fitPolynomial stores coef = X⁺ for the Vandermonde matrix X (M × degree+1).
func (b *Basis) fitPolynomial(degree int) error {
	m := len(b.xs)
	p := degree + 1

	b.center = floats.Sum(b.xs) / float64(m)
	b.scale = (b.xs[m-1] - b.xs[0]) / 2
	if b.scale == 0 {
		b.scale = 1
	}

	x := mat.NewDense(m, p, nil)
	var j, q int
	for j = 0; j < m; j++ {
		t, v := (b.xs[j]-b.center)/b.scale, 1.0
		for q = 0; q < p; q++ {
			x.Set(j, q, v)
			v *= t
		}
	}
	eye := mat.NewDense(m, m, nil)
	for j = 0; j < m; j++ {
		eye.Set(j, j, 1)
	}

	var c mat.Dense
	if err := c.Solve(x, eye); err != nil {
		return fmt.Errorf("degree-%d regression: %v: %w", degree, err, ErrInsufficientTemplates)
	}
	b.coef = make([][]float64, p)
	for q = 0; q < p; q++ {
		b.coef[q] = mat.Row(nil, q, &c)
	}

	return nil
}

// Strategy returns the interpolation strategy.
func (b *Basis) Strategy() Strategy { return b.strategy }

// Gamma returns the exponent of the basis coordinate x = m^γ.
func (b *Basis) Gamma() float64 { return b.gamma }

// Extrapolates reports whether values outside the reference range are allowed.
func (b *Basis) Extrapolates() bool { return b.extrapolate }

// Len returns the number of templates M.
func (b *Basis) Len() int { return len(b.refs) }

// Bins returns the template length N.
func (b *Basis) Bins() int { return b.bins }

// Linear reports whether T(x) is exactly linear on every Segment.
func (b *Basis) Linear() bool { return b.strategy != Quadratic }

// References returns a copy of the ascending reference values.
func (b *Basis) References() []float64 {
	out := make([]float64, len(b.refs))
	copy(out, b.refs)

	return out
}

// Template returns a copy of the j-th template (ascending reference order).
func (b *Basis) Template(j int) []float64 {
	out := make([]float64, b.bins)
	copy(out, b.values[j])

	return out
}

// Domain returns the reference range [min m_j, max m_j].
func (b *Basis) Domain() (lo, hi float64) { return b.refs[0], b.refs[len(b.refs)-1] }

// DomainX returns the reference range in the basis coordinate.
func (b *Basis) DomainX() (lo, hi float64) { return b.xs[0], b.xs[len(b.xs)-1] }

// Center returns the midpoint of the reference range.
func (b *Basis) Center() float64 {
	lo, hi := b.Domain()

	return 0.5 * (lo + hi)
}

// Spacing returns the mean distance between neighbouring reference values.
func (b *Basis) Spacing() float64 {
	lo, hi := b.Domain()

	return (hi - lo) / float64(len(b.refs)-1)
}

// ToX maps m to the basis coordinate x = m^γ.
func (b *Basis) ToX(m float64) (float64, error) {
	if b.gamma == 1 {
		return m, nil
	}
	if !(m > 0) {
		return math.NaN(), fmt.Errorf("ToX(%v): %w", m, ErrNonPositive)
	}

	return math.Pow(m, b.gamma), nil
}

// FromX maps the basis coordinate back to m = x^(1/γ).
func (b *Basis) FromX(x float64) (float64, error) {
	if b.gamma == 1 {
		return x, nil
	}
	if !(x > 0) {
		return math.NaN(), fmt.Errorf("FromX(%v): %w", x, ErrNonPositive)
	}

	return math.Pow(x, 1/b.gamma), nil
}

// Jacobian returns dx/dm and d²x/dm² at m.
func (b *Basis) Jacobian(m float64) (d1, d2 float64) {
	if b.gamma == 1 {
		return 1, 0
	}

	return b.gamma * math.Pow(m, b.gamma-1), b.gamma * (b.gamma - 1) * math.Pow(m, b.gamma-2)
}

// CheckDomain returns ErrOutOfRange when m lies outside the reference range
// and extrapolation is disabled, ErrNaNInf when m is not finite.
func (b *Basis) CheckDomain(m float64) error {
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return fmt.Errorf("CheckDomain(%v): %w", m, ErrNaNInf)
	}
	if b.extrapolate {
		return nil
	}
	lo, hi := b.Domain()
	tol := domainTol * (hi - lo)
	if m < lo-tol || m > hi+tol {
		return fmt.Errorf("CheckDomain(%v): range [%v, %v]: %w", m, lo, hi, ErrOutOfRange)
	}

	return nil
}

// Weights returns the template weights w_j(m) such that T(m) = Σ_j w_j·T_j.
func (b *Basis) Weights(m float64) ([]float64, error) {
	return b.WeightDerivative(m, 0)
}

// WeightDerivative returns d^order w_j / dm^order for order 0, 1 or 2.
func (b *Basis) WeightDerivative(m float64, order int) ([]float64, error) {
	if order < 0 || order > 2 {
		return nil, fmt.Errorf("WeightDerivative: order %d: %w", order, ErrOptionViolation)
	}
	if err := b.CheckDomain(m); err != nil {
		return nil, err
	}
	x, err := b.ToX(m)
	if err != nil {
		return nil, err
	}

	if order == 0 {
		return b.weightsX(x, 0), nil
	}
	j1, j2 := b.Jacobian(m)
	w1 := b.weightsX(x, 1)
	if order == 1 {
		floats.Scale(j1, w1)

		return w1, nil
	}
	// d²w/dm² = w''(x)·x'² + w'(x)·x''
	w2 := b.weightsX(x, 2)
	floats.Scale(j1*j1, w2)
	floats.AddScaled(w2, j2, w1)

	return w2, nil
}

// weightsX returns d^order w / dx^order at x (no domain check).
func (b *Basis) weightsX(x float64, order int) []float64 {
	m := len(b.xs)
	w := make([]float64, m)

	if b.strategy == PiecewiseLinear {
		k := b.segmentIndex(x)
		dx := b.xs[k+1] - b.xs[k]
		switch order {
		case 0:
			f := (x - b.xs[k]) / dx
			w[k], w[k+1] = 1-f, f
		case 1:
			w[k], w[k+1] = -1/dx, 1/dx
		}

		return w
	}

	t := (x - b.center) / b.scale
	var q, j int
	for q = order; q < len(b.coef); q++ {
		// d^order/dx^order t^q = q!/(q-order)! · t^(q-order) / scale^order
		f := math.Pow(t, float64(q-order)) / math.Pow(b.scale, float64(order))
		for r := 0; r < order; r++ {
			f *= float64(q - r)
		}
		for j = 0; j < m; j++ {
			w[j] += f * b.coef[q][j]
		}
	}

	return w
}

// segmentIndex returns k such that x lies in [xs[k], xs[k+1]]; ends clamp to
// the first or last segment.
func (b *Basis) segmentIndex(x float64) int {
	last := len(b.xs) - 2
	for k := 0; k < last; k++ {
		if x < b.xs[k+1] {
			return k
		}
	}

	return last
}

// Combine returns Σ_j w_j·T_j over all bins.
func (b *Basis) Combine(w []float64) ([]float64, error) {
	if len(w) != len(b.values) {
		return nil, fmt.Errorf("Combine: %d weights for %d templates: %w", len(w), len(b.values), ErrDimensionMismatch)
	}
	out := make([]float64, b.bins)
	for j, wj := range w {
		if wj != 0 {
			floats.AddScaled(out, wj, b.values[j])
		}
	}

	return out, nil
}

// Interpolate returns the template response T(m).
func (b *Basis) Interpolate(m float64) ([]float64, error) {
	return b.Derivative(m, 0)
}

// Derivative returns d^order T / dm^order at m for order 0, 1 or 2.
func (b *Basis) Derivative(m float64, order int) ([]float64, error) {
	w, err := b.WeightDerivative(m, order)
	if err != nil {
		return nil, err
	}

	return b.Combine(w)
}

// Segments returns the exactly linear pieces of the basis in x, ordered by x.
// Regression yields one segment, PiecewiseLinear one per neighbouring pair.
// Quadratic is not piecewise linear and yields nil; use Linearize instead.
func (b *Basis) Segments() []Segment {
	lo, hi := math.Inf(-1), math.Inf(1)
	m := len(b.xs)

	switch b.strategy {
	case Regression:
		seg := Segment{Lo: b.xs[0], Hi: b.xs[m-1], W0: make([]float64, m), W1: make([]float64, m)}
		for j := 0; j < m; j++ {
			seg.W1[j] = b.coef[1][j] / b.scale
			seg.W0[j] = b.coef[0][j] - seg.W1[j]*b.center
		}
		if b.extrapolate {
			seg.Lo, seg.Hi = lo, hi
		}

		return []Segment{seg}

	case PiecewiseLinear:
		segs := make([]Segment, m-1)
		for k := 0; k < m-1; k++ {
			dx := b.xs[k+1] - b.xs[k]
			seg := Segment{Lo: b.xs[k], Hi: b.xs[k+1], W0: make([]float64, m), W1: make([]float64, m)}
			// w_k = (x_{k+1} - x)/dx, w_{k+1} = (x - x_k)/dx
			seg.W0[k], seg.W1[k] = b.xs[k+1]/dx, -1/dx
			seg.W0[k+1], seg.W1[k+1] = -b.xs[k]/dx, 1/dx
			segs[k] = seg
		}
		if b.extrapolate {
			segs[0].Lo, segs[m-2].Hi = lo, hi
		}

		return segs
	}

	return nil
}

// Linearize returns the tangent of the basis at m0 as a Segment spanning the
// whole reference range (or the real line when extrapolating).
func (b *Basis) Linearize(m0 float64) (Segment, error) {
	if err := b.CheckDomain(m0); err != nil {
		return Segment{}, fmt.Errorf("Linearize: %w", err)
	}
	x0, err := b.ToX(m0)
	if err != nil {
		return Segment{}, fmt.Errorf("Linearize: %w", err)
	}

	w0 := b.weightsX(x0, 0)
	w1 := b.weightsX(x0, 1)
	// w(x) ≈ w(x0) + w'(x0)(x - x0)
	floats.AddScaled(w0, -x0, w1)

	seg := Segment{W0: w0, W1: w1}
	seg.Lo, seg.Hi = b.DomainX()
	if b.extrapolate {
		seg.Lo, seg.Hi = math.Inf(-1), math.Inf(1)
	}

	return seg, nil
}

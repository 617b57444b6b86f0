// SPDX-License-Identifier: MIT

package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/litefit/matrix"
	"github.com/katalvlaran/litefit/templates"
	"github.com/katalvlaran/litefit/uncertainty"
)

// linearModel is T(u) ≈ t0 + s·u over the active bins, valid on [lo, hi].
// u is x = m^γ for the closed-form solve and m itself when refining.
type linearModel struct {
	s, t0  []float64
	lo, hi float64
}

// state is the aggregated covariance of one pass with its inverse.
type state struct {
	agg  *uncertainty.Aggregation
	w    *mat.SymDense
	nuis []int // contributions fitted as nuisance parameters, in column order
}

// solution of one linear model.
type solution struct {
	u       float64
	raw     float64 // û before clamping
	clamped bool
	theta   []float64
	chi2    float64
	hinv    *mat.SymDense // inverse Hessian of (u, θ)
	d       []float64     // ∂û/∂data over the active bins
}

// closed is the outcome of the closed-form solve in the parameter m.
type closed struct {
	sol  *solution
	m    float64
	dmdu float64
}

// Solve runs the closed-form linear template fit.
//
// Implementation:
//   - Stage 1: Aggregate the covariance over the fit range and invert it.
//     Template-indexed and log-normal sources use the centre of the
//     reference range.
//   - Stage 2: On every exactly linear segment of the basis solve
//     x̂ = sᵀW r0 / sᵀWs (extended by nuisance parameters when enabled),
//     clamp to the segment and keep the lowest χ².
//   - Stage 3: When the covariance depends on the estimate, aggregate again
//     at the Stage 2 estimate and repeat Stage 2.
//   - Stage 4: Map x̂ to m̂ = x̂^(1/γ) and decompose the variance by source.
//
// Behavior highlights:
//   - Quadratic bases are linearized at the centre of the reference range;
//     the Result is flagged unconverged and Refine is expected to follow.
//
// Errors:
//   - ErrSingularCovariance, ErrNoSensitivity, ErrOutOfRange, ErrNonPositive.
func (f *FrozenFit) Solve() (*Result, error) {
	if f.flat {
		return nil, fmt.Errorf("Solve: identical templates over the fit range: %w", ErrNoSensitivity)
	}
	st, err := f.aggregate(f.basis.Center(), false)
	if err != nil {
		return nil, fmt.Errorf("Solve: %w", err)
	}
	c, err := f.solveClosed(st)
	if err != nil && (c == nil || !f.dependent || !errors.Is(err, ErrOutOfRange)) {
		return nil, fmt.Errorf("Solve: %w", err)
	}

	if f.dependent {
		if st, err = f.aggregate(c.m, true); err != nil {
			return nil, fmt.Errorf("Solve: %w", err)
		}
		if c, err = f.solveClosed(st); err != nil {
			return nil, fmt.Errorf("Solve: %w", err)
		}
	}

	res, err := f.assemble(st, c.sol, c.m, c.dmdu)
	if err != nil {
		return nil, fmt.Errorf("Solve: %w", err)
	}
	res.Method = "linear"
	res.Converged = f.basis.Linear()

	return res, nil
}

// aggregate builds the covariance state with template weights and
// prediction taken at m. Without a point the prediction defaults to the data.
func (f *FrozenFit) aggregate(m float64, atPoint bool) (*state, error) {
	req := uncertainty.Request{
		Bins:      f.bins,
		LogNormal: f.opts.logNormal,
		Data:      f.data,
		Nuisance:  f.opts.nuisance,
	}

	w, err := f.eval.Weights(m)
	if err != nil {
		return nil, err
	}
	req.TemplateWeights = make(map[float64]float64, len(w))
	for j, ref := range f.eval.References() {
		req.TemplateWeights[ref] = w[j]
	}
	if atPoint && f.opts.logNormal {
		if req.Prediction, err = f.eval.Combine(w); err != nil {
			return nil, err
		}
	}

	agg, err := uncertainty.Aggregate(f.sources, req)
	if err != nil {
		return nil, err
	}
	inv, err := uncertainty.Invert(agg.Total, f.opts.condLimit)
	if err != nil {
		return nil, err
	}

	st := &state{agg: agg, w: inv}
	for i, c := range agg.Contributions {
		if c.Nuisance {
			st.nuis = append(st.nuis, i)
		}
	}

	return st, nil
}

// solveClosed solves every linear segment of the basis in x and keeps the
// lowest χ². On ErrOutOfRange the clamped result is returned with the error.
func (f *FrozenFit) solveClosed(st *state) (*closed, error) {
	segs := f.basis.Segments()
	if segs == nil {
		lin, err := f.basis.Linearize(f.basis.Center())
		if err != nil {
			return nil, err
		}
		segs = []templates.Segment{lin}
	}

	var best *solution
	for _, seg := range segs {
		lm, err := f.segmentModel(seg)
		if err != nil {
			return nil, err
		}
		sol, err := f.solveModel(lm, st, nil)
		if err != nil {
			return nil, err
		}
		if best == nil || sol.chi2 < best.chi2 {
			best = sol
		}
	}

	m, err := f.basis.FromX(best.u)
	if err != nil {
		return nil, err
	}
	d1, _ := f.basis.Jacobian(m)
	c := &closed{sol: best, m: m, dmdu: 1 / d1}

	lo, hi := f.basis.DomainX()
	if !f.opts.extrapolate && (best.u == lo || best.u == hi) && best.beyond() {
		return c, fmt.Errorf("optimum beyond reference value %v: %w", m, ErrOutOfRange)
	}

	return c, nil
}

// beyond reports whether û was clamped by more than rounding, so an
// optimum sitting on a reference edge is not mistaken for one past it.
func (s *solution) beyond() bool {
	if !s.clamped {
		return false
	}

	return math.Abs(s.raw-s.u) > edgeTolerance*math.Max(1, math.Abs(s.u))
}

// edgeTolerance is the relative slack of beyond.
const edgeTolerance = 1e-9

// segmentModel evaluates w(x) = W0 + W1·x on the templates.
func (f *FrozenFit) segmentModel(seg templates.Segment) (linearModel, error) {
	t0, err := f.basis.Combine(seg.W0)
	if err != nil {
		return linearModel{}, err
	}
	s, err := f.basis.Combine(seg.W1)
	if err != nil {
		return linearModel{}, err
	}

	return linearModel{s: f.restrict(s), t0: f.restrict(t0), lo: seg.Lo, hi: seg.Hi}, nil
}

// solveModel minimizes
//
//	χ²(u, θ) = (r0 - s·u - Sθ)ᵀ W (r0 - s·u - Sθ) + θᵀθ,   r0 = d - t0,
//
// with A = [s | S], H = AᵀWA + diag(0, I), (û, θ̂) = H⁻¹AᵀW r0.
// û is clamped to [lo, hi] (or pinned to *fixed) and θ re-profiled at û.
func (f *FrozenFit) solveModel(lm linearModel, st *state, fixed *float64) (*solution, error) {
	k := len(lm.s)
	p := 1 + len(st.nuis)

	a := mat.NewDense(k, p, nil)
	a.SetCol(0, lm.s)
	for q, ci := range st.nuis {
		a.SetCol(q+1, st.agg.Contributions[ci].Shifts)
	}
	var wa, h mat.Dense
	wa.Mul(st.w, a)
	h.Mul(a.T(), &wa)
	if h00 := h.At(0, 0); !(h00 > 0) || math.IsInf(h00, 0) {
		return nil, fmt.Errorf("sᵀWs = %v: %w", h00, ErrNoSensitivity)
	}

	hs := mat.NewSymDense(p, nil)
	var i, j int
	for i = 0; i < p; i++ {
		for j = i; j < p; j++ {
			hs.SetSym(i, j, 0.5*(h.At(i, j)+h.At(j, i)))
		}
		if i > 0 {
			hs.SetSym(i, i, hs.At(i, i)+1)
		}
	}
	hinv, _, err := matrix.InverseSPD(hs, 0)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrNoSensitivity)
	}

	r0 := f.restrict(f.data)
	floats.Sub(r0, lm.t0)

	var g, par mat.VecDense
	g.MulVec(wa.T(), mat.NewVecDense(k, r0))
	par.MulVec(hinv, &g)

	var dm mat.Dense
	dm.Mul(hinv, wa.T())

	sol := &solution{u: par.AtVec(0), raw: par.AtVec(0), hinv: hinv, d: mat.Row(nil, 0, &dm)}
	switch {
	case fixed != nil:
		sol.u = *fixed
	case sol.u < lm.lo:
		sol.u, sol.clamped = lm.lo, true
	case sol.u > lm.hi:
		sol.u, sol.clamped = lm.hi, true
	}

	// residual after the parameter, then θ profiled at u
	r := make([]float64, k)
	floats.AddScaledTo(r, r0, -sol.u, lm.s)
	if p > 1 {
		if sol.theta, err = f.profile(hs, &wa, r); err != nil {
			return nil, err
		}
		for q := range sol.theta {
			floats.AddScaled(r, -sol.theta[q], st.agg.Contributions[st.nuis[q]].Shifts)
		}
	}
	sol.chi2, err = chiSquare(r, st.w, sol.theta)
	if err != nil {
		return nil, err
	}

	return sol, nil
}

// profile returns θ̂ = (SᵀWS + I)⁻¹ SᵀW r for the nuisance block of hs.
func (f *FrozenFit) profile(hs *mat.SymDense, wa *mat.Dense, r []float64) ([]float64, error) {
	p, _ := hs.Dims()
	idx := make([]int, p-1)
	for q := range idx {
		idx[q] = q + 1
	}
	htt, err := matrix.Restrict(hs, idx)
	if err != nil {
		return nil, err
	}
	inv, _, err := matrix.InverseSPD(htt, 0)
	if err != nil {
		return nil, fmt.Errorf("nuisance block: %v: %w", err, ErrNoSensitivity)
	}

	k := len(r)
	var g mat.VecDense
	g.MulVec(wa.Slice(0, k, 1, p).T(), mat.NewVecDense(k, r))
	var theta mat.VecDense
	theta.MulVec(inv, &g)

	return mat.Col(nil, 0, &theta), nil
}

// chiSquare returns rᵀWr + θᵀθ.
func chiSquare(r []float64, w *mat.SymDense, theta []float64) (float64, error) {
	q, err := matrix.Quadratic(r, w, r)
	if err != nil {
		return math.NaN(), err
	}

	return q + floats.Dot(theta, theta), nil
}

// assemble builds the Result at m from a solution in the coordinate u,
// with dm/du for the variance transform.
func (f *FrozenFit) assemble(st *state, sol *solution, m, dmdu float64) (*Result, error) {
	full, err := f.eval.Interpolate(m)
	if err != nil {
		return nil, err
	}
	data := f.restrict(f.data)
	fitted := f.restrict(full)
	for q, th := range sol.theta {
		floats.AddScaled(fitted, th, st.agg.Contributions[st.nuis[q]].Shifts)
	}
	resid := make([]float64, len(data))
	floats.SubTo(resid, data, fitted)
	chi2, err := chiSquare(resid, st.w, sol.theta)
	if err != nil {
		return nil, err
	}

	k := len(f.bins)
	res := &Result{
		Estimate:    m,
		ChiSquare:   chi2,
		NDF:         k - 1,
		Bins:        make([]int, k),
		TotalBins:   len(f.data),
		Data:        data,
		DataErrors:  make([]float64, k),
		Fitted:      fitted,
		Residuals:   resid,
		References:  f.basis.References(),
		Strategy:    f.basis.Strategy().String(),
		Fingerprint: f.fingerprint,
	}
	res.PValue = distuv.ChiSquared{K: float64(res.NDF)}.Survival(chi2)
	for i, b := range f.bins {
		res.Bins[i] = b + 1
		res.DataErrors[i] = math.Sqrt(st.agg.Total.At(i, i))
	}
	if res.TemplateWeights, err = f.eval.Weights(m); err != nil {
		return nil, err
	}
	res.Templates = make([][]float64, f.basis.Len())
	for j := range res.Templates {
		res.Templates[j] = f.restrict(f.basis.Template(j))
	}

	// decomposition: D V_k Dᵀ per covariance source, (H⁻¹)_{0q}² per nuisance
	scale := dmdu * dmdu
	variance := sol.hinv.At(0, 0) * scale
	column := make(map[int]int, len(st.nuis))
	for q, ci := range st.nuis {
		column[ci] = q + 1
	}
	for i, c := range st.agg.Contributions {
		var v float64
		if q, ok := column[i]; ok {
			v = sol.hinv.At(0, q) * sol.hinv.At(0, q) * scale
		} else {
			if v, err = matrix.Quadratic(sol.d, c.Cov, sol.d); err != nil {
				return nil, err
			}
			v *= scale
		}
		if c.Mode == uncertainty.External {
			variance += v
		}
		res.Sources = append(res.Sources, SourceUncertainty{Name: c.Name, Mode: c.Mode, Nuisance: c.Nuisance, Sigma: math.Sqrt(math.Max(v, 0))})
	}
	res.Uncertainty = math.Sqrt(variance)

	res.Parameters = []Parameter{{Name: "m", Value: m, Uncertainty: math.Sqrt(sol.hinv.At(0, 0) * scale)}}
	for q, ci := range st.nuis {
		p := Parameter{Name: st.agg.Contributions[ci].Name, Value: sol.theta[q], Uncertainty: math.Sqrt(sol.hinv.At(q+1, q+1))}
		res.Parameters = append(res.Parameters, p)
		res.Pulls = append(res.Pulls, p)
	}
	if res.Correlation, err = matrix.Correlation(sol.hinv); err != nil {
		return nil, err
	}

	return res, nil
}

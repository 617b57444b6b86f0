// SPDX-License-Identifier: MIT

package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/katalvlaran/litefit/matrix"
)

// minimizeIterations is the Minimize iteration cap unless WithMaxIterations is given.
const minimizeIterations = 200

// Refine improves a Result for template responses that are not exactly
// linear in the parameter, starting from res.Estimate.
//
// Newton stops when |Δm| < tolerance. When the cap is reached first the last
// Result is returned together with ErrMaxIterationsExceeded and
// Converged=false. Taylor never iterates.
//
// Errors: ErrOptionViolation, ErrNotInitialized (nil res), ErrOutOfRange,
// ErrNoSensitivity, ErrSingularCovariance, ErrMaxIterationsExceeded.
func (f *FrozenFit) Refine(res *Result, opts ...RefineOption) (*Result, error) {
	o := defaultRefineOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.err != nil {
		return nil, fmt.Errorf("Refine: %w", o.err)
	}
	if res == nil {
		return nil, fmt.Errorf("Refine: nil result: %w", ErrNotInitialized)
	}
	if f.flat {
		return nil, fmt.Errorf("Refine: identical templates over the fit range: %w", ErrNoSensitivity)
	}

	var (
		out *Result
		err error
	)
	switch o.method {
	case Taylor:
		out, err = f.taylor(res, o)
	case Minimize:
		out, err = f.minimize(res.Estimate, o)
	default:
		out, err = f.newton(res.Estimate, o)
	}
	if err != nil {
		return out, fmt.Errorf("Refine(%s): %w", o.method, err)
	}

	return out, nil
}

func (f *FrozenFit) newton(m float64, o refineOptions) (*Result, error) {
	var (
		st  *state
		sol *solution
	)
	for it := 1; it <= o.maxIter; it++ {
		var err error
		if st, err = f.aggregate(m, true); err != nil {
			return nil, err
		}
		lm, err := f.tangent(m, o)
		if err != nil {
			return nil, err
		}
		if sol, err = f.solveModel(lm, st, nil); err != nil {
			return nil, err
		}
		delta := sol.u - m
		m = sol.u
		if o.hook != nil {
			o.hook(Iteration{Method: Newton, Index: it, Estimate: m, Delta: delta, ChiSquare: sol.chi2})
		}
		if math.Abs(delta) < o.tolerance {
			if !f.opts.extrapolate && sol.beyond() {
				return nil, fmt.Errorf("optimum beyond reference value %v: %w", m, ErrOutOfRange)
			}

			return f.finish(st, sol, m, Newton, it, true)
		}
	}

	res, err := f.finish(st, sol, m, Newton, o.maxIter, false)
	if err != nil {
		return nil, err
	}

	return res, fmt.Errorf("%d iterations, estimate %v: %w", o.maxIter, m, ErrMaxIterationsExceeded)
}

func (f *FrozenFit) taylor(res *Result, o refineOptions) (*Result, error) {
	m0 := res.Estimate
	st, err := f.aggregate(m0, true)
	if err != nil {
		return nil, err
	}
	t0, err := f.eval.Interpolate(m0)
	if err != nil {
		return nil, err
	}
	d1, err := f.eval.Derivative(m0, 1)
	if err != nil {
		return nil, err
	}
	d2, err := f.eval.Derivative(m0, 2)
	if err != nil {
		return nil, err
	}

	r := f.restrict(f.data)
	floats.Sub(r, f.restrict(t0))
	pulls := make(map[string]float64, len(res.Pulls))
	for _, p := range res.Pulls {
		pulls[p.Name] = p.Value
	}
	for _, ci := range st.nuis {
		c := st.agg.Contributions[ci]
		floats.AddScaled(r, -pulls[c.Name], c.Shifts)
	}
	s, c := f.restrict(d1), f.restrict(d2)

	// δ = sᵀW r / (sᵀW s - cᵀW r)
	num, err := matrix.Quadratic(s, st.w, r)
	if err != nil {
		return nil, err
	}
	hss, err := matrix.Quadratic(s, st.w, s)
	if err != nil {
		return nil, err
	}
	hcr, err := matrix.Quadratic(c, st.w, r)
	if err != nil {
		return nil, err
	}
	den := hss - hcr
	if !(den > 0) {
		return nil, fmt.Errorf("second-order denominator %v: %w", den, ErrNoSensitivity)
	}
	delta := num / den
	m1 := m0 + delta
	if err = f.basis.CheckDomain(m1); err != nil {
		return nil, err
	}

	out, sol, err := f.pinned(m1)
	if err != nil {
		return nil, err
	}
	if o.hook != nil {
		o.hook(Iteration{Method: Taylor, Index: 1, Estimate: m1, Delta: delta, ChiSquare: sol.chi2})
	}

	return out, nil
}

func (f *FrozenFit) minimize(m0 float64, o refineOptions) (*Result, error) {
	st, err := f.aggregate(m0, true)
	if err != nil {
		return nil, err
	}
	maxIter := minimizeIterations
	if o.maxSet {
		maxIter = o.maxIter
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			m := x[0]
			lm, err := f.analyticTangent(m)
			if err != nil {
				return math.Inf(1)
			}
			sol, err := f.solveModel(lm, st, &m)
			if err != nil {
				return math.Inf(1)
			}

			return sol.chi2
		},
	}
	settings := &optimize.Settings{
		MajorIterations: maxIter,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-12, Relative: 1e-12, Iterations: 20},
	}
	if o.hook != nil {
		settings.Recorder = &hookRecorder{hook: o.hook, last: m0}
	}
	method := &optimize.NelderMead{SimplexSize: o.step * f.basis.Spacing()}

	r, err := optimize.Minimize(problem, []float64{m0}, settings, method)
	if r == nil {
		return nil, err
	}
	limited := r.Status == optimize.IterationLimit
	if err != nil && !limited {
		return nil, err
	}

	m := r.X[0]
	if err = f.basis.CheckDomain(m); err != nil {
		return nil, err
	}
	out, _, err := f.pinned(m)
	if err != nil {
		return nil, err
	}
	out.Method = Minimize.String()
	out.Iterations = r.MajorIterations
	out.Converged = !limited
	if limited {
		return out, fmt.Errorf("%d iterations, estimate %v: %w", maxIter, m, ErrMaxIterationsExceeded)
	}

	return out, nil
}

// pinned builds a Result at a fixed estimate m with covariance and
// linearization taken at m.
func (f *FrozenFit) pinned(m float64) (*Result, *solution, error) {
	st, err := f.aggregate(m, true)
	if err != nil {
		return nil, nil, err
	}
	lm, err := f.analyticTangent(m)
	if err != nil {
		return nil, nil, err
	}
	sol, err := f.solveModel(lm, st, &m)
	if err != nil {
		return nil, nil, err
	}
	res, err := f.finish(st, sol, m, Taylor, 1, true)

	return res, sol, err
}

func (f *FrozenFit) finish(st *state, sol *solution, m float64, method Method, iterations int, converged bool) (*Result, error) {
	res, err := f.assemble(st, sol, m, 1)
	if err != nil {
		return nil, err
	}
	res.Method = method.String()
	res.Iterations = iterations
	res.Converged = converged

	return res, nil
}

// mDomain returns the parameter interval a refined estimate may occupy.
func (f *FrozenFit) mDomain() (lo, hi float64) {
	if f.opts.extrapolate {
		return math.Inf(-1), math.Inf(1)
	}

	return f.basis.Domain()
}

// tangent linearizes T at m with central finite differences of step
// o.step × mean reference spacing (three- or five-point stencil).
func (f *FrozenFit) tangent(m float64, o refineOptions) (linearModel, error) {
	h := o.step * f.basis.Spacing()
	at := func(dm float64) ([]float64, error) {
		v, err := f.eval.Interpolate(m + dm)
		if err != nil {
			return nil, err
		}

		return f.restrict(v), nil
	}

	center, err := at(0)
	if err != nil {
		return linearModel{}, err
	}
	p1, err := at(h)
	if err != nil {
		return linearModel{}, err
	}
	m1, err := at(-h)
	if err != nil {
		return linearModel{}, err
	}

	s := make([]float64, len(center))
	if o.points == 1 {
		// (T(m+h) - T(m-h)) / 2h
		floats.SubTo(s, p1, m1)
		floats.Scale(1/(2*h), s)
	} else {
		p2, err := at(2 * h)
		if err != nil {
			return linearModel{}, err
		}
		m2, err := at(-2 * h)
		if err != nil {
			return linearModel{}, err
		}
		// (-T(m+2h) + 8T(m+h) - 8T(m-h) + T(m-2h)) / 12h
		for i := range s {
			s[i] = (-p2[i] + 8*p1[i] - 8*m1[i] + m2[i]) / (12 * h)
		}
	}

	return f.linearAt(m, center, s), nil
}

// analyticTangent linearizes T at m with the basis derivative.
func (f *FrozenFit) analyticTangent(m float64) (linearModel, error) {
	t, err := f.eval.Interpolate(m)
	if err != nil {
		return linearModel{}, err
	}
	s, err := f.eval.Derivative(m, 1)
	if err != nil {
		return linearModel{}, err
	}

	return f.linearAt(m, f.restrict(t), f.restrict(s)), nil
}

// linearAt returns t0 = T(m) - s·m over the refinement domain.
func (f *FrozenFit) linearAt(m float64, t, s []float64) linearModel {
	t0 := make([]float64, len(t))
	floats.AddScaledTo(t0, t, -m, s)
	lo, hi := f.mDomain()

	return linearModel{s: s, t0: t0, lo: lo, hi: hi}
}

// hookRecorder forwards Minimize major iterations to an OnIteration hook.
type hookRecorder struct {
	hook func(Iteration)
	last float64
	n    int
}

func (r *hookRecorder) Init() error { return nil }

func (r *hookRecorder) Record(loc *optimize.Location, op optimize.Operation, _ *optimize.Stats) error {
	if op&optimize.MajorIteration == 0 || loc == nil || len(loc.X) == 0 {
		return nil
	}
	r.n++
	r.hook(Iteration{Method: Minimize, Index: r.n, Estimate: loc.X[0], Delta: loc.X[0] - r.last, ChiSquare: loc.F})
	r.last = loc.X[0]

	return nil
}

var _ optimize.Recorder = (*hookRecorder)(nil)

// SPDX-License-Identifier: MIT

package fit

import (
	"fmt"
	"math"
	"strings"
)

// Method selects the refinement procedure.
type Method int

const (
	// Newton re-linearizes the templates at the current estimate with
	// finite-difference derivatives and re-solves until the step is small.
	Newton Method = iota
	// Taylor applies one second-order correction from the analytic first and
	// second template derivatives.
	Taylor
	// Minimize minimizes the profiled χ²(m) numerically (Nelder-Mead).
	Minimize
)

var methodNames = [...]string{
	Newton:   "newton",
	Taylor:   "taylor",
	Minimize: "minimize",
}

// String returns the lower-case method name.
func (m Method) String() string {
	if m < Newton || m > Minimize {
		return fmt.Sprintf("Method(%d)", int(m))
	}

	return methodNames[m]
}

// ParseMethod maps a method name (case-insensitive) to its Method.
func ParseMethod(name string) (Method, error) {
	for i, n := range methodNames {
		if strings.EqualFold(name, n) {
			return Method(i), nil
		}
	}

	return 0, fmt.Errorf("%w: unknown refinement method %q", ErrOptionViolation, name)
}

// Iteration describes one refinement step for OnIteration hooks.
type Iteration struct {
	Method    Method
	Index     int // 1-based
	Estimate  float64
	Delta     float64
	ChiSquare float64
}

// RefineOption configures Refine. Invalid values surface as ErrOptionViolation.
type RefineOption func(*refineOptions)

type refineOptions struct {
	method    Method
	maxIter   int
	maxSet    bool
	tolerance float64
	step      float64
	points    int
	hook      func(Iteration)

	err error
}

// Defaults: Newton, 6 iterations (200 for Minimize), step 0.6 of the mean
// reference spacing, five-point stencil, tolerance 1e-6.
func defaultRefineOptions() refineOptions {
	return refineOptions{
		method:    Newton,
		maxIter:   6,
		tolerance: 1e-6,
		step:      0.6,
		points:    2,
	}
}

// WithMethod selects the refinement method.
func WithMethod(m Method) RefineOption {
	return func(o *refineOptions) {
		if m < Newton || m > Minimize {
			o.err = fmt.Errorf("%w: unknown refinement method %d", ErrOptionViolation, int(m))

			return
		}
		o.method = m
	}
}

// WithMaxIterations caps Newton and Minimize iterations (n ≥ 1).
func WithMaxIterations(n int) RefineOption {
	return func(o *refineOptions) {
		if n < 1 {
			o.err = fmt.Errorf("%w: max iterations must be ≥ 1 (%d)", ErrOptionViolation, n)

			return
		}
		o.maxIter, o.maxSet = n, true
	}
}

// WithTolerance sets the convergence threshold on |Δm| (> 0).
func WithTolerance(tol float64) RefineOption {
	return func(o *refineOptions) {
		if math.IsNaN(tol) || tol <= 0 {
			o.err = fmt.Errorf("%w: tolerance must be > 0 (%v)", ErrOptionViolation, tol)

			return
		}
		o.tolerance = tol
	}
}

// WithStep sets the finite-difference step as a fraction of the mean
// reference spacing (> 0).
func WithStep(step float64) RefineOption {
	return func(o *refineOptions) {
		if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
			o.err = fmt.Errorf("%w: step must be finite and > 0 (%v)", ErrOptionViolation, step)

			return
		}
		o.step = step
	}
}

// WithPoints selects the stencil: 1 for three points, 2 for five points.
func WithPoints(points int) RefineOption {
	return func(o *refineOptions) {
		if points != 1 && points != 2 {
			o.err = fmt.Errorf("%w: points must be 1 or 2 (%d)", ErrOptionViolation, points)

			return
		}
		o.points = points
	}
}

// OnIteration registers a hook observing each Newton or Minimize step.
func OnIteration(fn func(Iteration)) RefineOption {
	return func(o *refineOptions) { o.hook = fn }
}

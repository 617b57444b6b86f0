// SPDX-License-Identifier: MIT

package fit

import (
	"fmt"
	"math"

	"github.com/katalvlaran/litefit/templates"
)

// Option configures a Configuration. Invalid values are recorded and
// surfaced as ErrOptionViolation by Freeze.
type Option func(*options)

// options holds the effective fit configuration.
type options struct {
	strategy    templates.Strategy
	gamma       float64
	extrapolate bool
	nuisance    bool
	logNormal   bool
	condLimit   float64

	err error
}

// defaultOptions mirror the usual analysis setup: piecewise-linear basis, γ = 1,
// no nuisance parameters, Gaussian uncertainties.
func defaultOptions() options {
	return options{
		strategy: templates.PiecewiseLinear,
		gamma:    1,
	}
}

// basisOptions translates the fit options into templates options.
func (o options) basisOptions() []templates.Option {
	return []templates.Option{
		templates.WithStrategy(o.strategy),
		templates.WithGamma(o.gamma),
		templates.WithExtrapolationEnabled(o.extrapolate),
	}
}

// WithStrategy selects the template interpolation strategy.
func WithStrategy(s templates.Strategy) Option {
	return func(o *options) {
		if s < templates.Regression || s > templates.Quadratic {
			o.err = fmt.Errorf("%w: unknown strategy %d", ErrOptionViolation, int(s))

			return
		}
		o.strategy = s
	}
}

// WithGamma fits in the coordinate x = m^γ (γ > 0).
func WithGamma(gamma float64) Option {
	return func(o *options) {
		if math.IsNaN(gamma) || math.IsInf(gamma, 0) || gamma <= 0 {
			o.err = fmt.Errorf("%w: gamma must be finite and > 0 (%v)", ErrOptionViolation, gamma)

			return
		}
		o.gamma = gamma
	}
}

// WithExtrapolation allows estimates outside the reference range.
func WithExtrapolation(on bool) Option {
	return func(o *options) { o.extrapolate = on }
}

// WithNuisanceParameters fits every fully correlated Statistical shift as a
// nuisance parameter with a unit Gaussian constraint instead of a covariance.
func WithNuisanceParameters(on bool) Option {
	return func(o *options) { o.nuisance = on }
}

// WithLogNormal enables log-normal treatment of LogNormal-mode sources.
func WithLogNormal(on bool) Option {
	return func(o *options) { o.logNormal = on }
}

// WithConditionLimit sets the largest accepted condition number of the total
// covariance. Must be > 1.
func WithConditionLimit(limit float64) Option {
	return func(o *options) {
		if math.IsNaN(limit) || limit <= 1 {
			o.err = fmt.Errorf("%w: condition limit must be > 1 (%v)", ErrOptionViolation, limit)

			return
		}
		o.condLimit = limit
	}
}

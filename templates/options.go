// SPDX-License-Identifier: MIT

package templates

import (
	"fmt"
	"math"
)

// Option configures a Basis. An invalid Option is recorded and surfaced as
// ErrOptionViolation by NewBasis.
type Option func(*basisOptions)

// basisOptions holds the effective Basis configuration.
type basisOptions struct {
	strategy    Strategy
	gamma       float64
	extrapolate bool

	// internal error recorded during option parsing
	err error
}

// defaultOptions: PiecewiseLinear strategy, γ = 1, strict reference range.
func defaultOptions() basisOptions {
	return basisOptions{
		strategy: PiecewiseLinear,
		gamma:    1,
	}
}

// WithStrategy selects the interpolation strategy.
func WithStrategy(s Strategy) Option {
	return func(o *basisOptions) {
		if s < Regression || s > Quadratic {
			o.err = fmt.Errorf("%w: unknown strategy %d", ErrOptionViolation, int(s))

			return
		}
		o.strategy = s
	}
}

// WithGamma interpolates in the coordinate x = m^γ instead of m.
// γ must be finite and > 0; γ = 1 is the identity.
func WithGamma(gamma float64) Option {
	return func(o *basisOptions) {
		if math.IsNaN(gamma) || math.IsInf(gamma, 0) || gamma <= 0 {
			o.err = fmt.Errorf("%w: gamma must be finite and > 0 (%v)", ErrOptionViolation, gamma)

			return
		}
		o.gamma = gamma
	}
}

// WithExtrapolation lets the basis extend beyond the outermost reference
// values instead of failing with ErrOutOfRange.
func WithExtrapolation() Option {
	return func(o *basisOptions) { o.extrapolate = true }
}

// WithExtrapolationEnabled is WithExtrapolation driven by a flag, convenient
// when the choice comes from a settings file.
func WithExtrapolationEnabled(on bool) Option {
	return func(o *basisOptions) { o.extrapolate = on }
}

// SPDX-License-Identifier: MIT
// Package templates defines sentinel errors, the interpolation strategy enum
// and the template value type.

package templates

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/litefit/matrix"
)

// Sentinel errors for template registration and interpolation.
var (
	// ErrDimensionMismatch is returned when a template length disagrees with
	// the templates registered before it. Shared with package matrix so one
	// errors.Is check covers every length disagreement.
	ErrDimensionMismatch = matrix.ErrDimensionMismatch

	// ErrNaNInf is returned when a template carries a non-finite value.
	ErrNaNInf = matrix.ErrNaNInf

	// ErrInsufficientTemplates is returned when the basis has fewer templates
	// than the strategy needs (2, or 3 for Quadratic).
	ErrInsufficientTemplates = errors.New("templates: insufficient templates")

	// ErrDuplicateReference is returned when two templates share a reference value.
	ErrDuplicateReference = errors.New("templates: duplicate reference value")

	// ErrOutOfRange is returned when a parameter value lies outside the
	// reference range and extrapolation is disabled.
	ErrOutOfRange = errors.New("templates: parameter outside reference range")

	// ErrNonPositive is returned when γ ≠ 1 meets a non-positive parameter value.
	ErrNonPositive = matrix.ErrNonPositive

	// ErrOptionViolation is returned when an invalid Option was supplied.
	ErrOptionViolation = errors.New("templates: invalid option supplied")
)

// Strategy selects how the basis interpolates between reference points.
type Strategy int

const (
	// Regression fits a straight line in x = m^γ through all reference points, bin by bin.
	Regression Strategy = iota

	// PiecewiseLinear interpolates linearly between the two bracketing reference points.
	PiecewiseLinear

	// Quadratic fits a parabola in x = m^γ through all reference points, bin by bin.
	Quadratic
)

var strategyNames = [...]string{
	Regression:      "regression",
	PiecewiseLinear: "piecewise",
	Quadratic:       "quadratic",
}

// String returns the lower-case strategy name used in settings files.
func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}

	return strategyNames[s]
}

// ParseStrategy maps a strategy name (case-insensitive) to its Strategy.
func ParseStrategy(name string) (Strategy, error) {
	for i, n := range strategyNames {
		if strings.EqualFold(name, n) {
			return Strategy(i), nil
		}
	}

	return 0, fmt.Errorf("%w: unknown strategy %q", ErrOptionViolation, name)
}

// minTemplates is the smallest template count the strategy can work with.
func (s Strategy) minTemplates() int {
	if s == Quadratic {
		return 3
	}

	return 2
}

// Template is one reference vector with the parameter value it was simulated at.
type Template struct {
	Reference float64
	Values    []float64
}

// Segment is an exactly linear piece of the basis in the coordinate x = m^γ:
//
//	w(x) = W0 + W1·x   for Lo ≤ x ≤ Hi
//
// Lo and Hi are ±Inf on ends that extend beyond the references.
type Segment struct {
	Lo, Hi float64
	W0, W1 []float64
}

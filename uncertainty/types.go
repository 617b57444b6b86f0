// SPDX-License-Identifier: MIT
// Package uncertainty: sentinel errors and the closed enums of the Source variant.

package uncertainty

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/litefit/matrix"
)

var (
	// ErrDimensionMismatch is returned when a source disagrees with the bin
	// count of the sources registered before it.
	ErrDimensionMismatch = matrix.ErrDimensionMismatch

	// ErrNaNInf is returned for non-finite payload values.
	ErrNaNInf = matrix.ErrNaNInf

	// ErrAsymmetry is returned when a full covariance matrix is not symmetric.
	ErrAsymmetry = matrix.ErrAsymmetry

	// ErrDuplicateSource is returned when a source name (or, for
	// template-indexed sources, a name and reference pair) repeats.
	ErrDuplicateSource = errors.New("uncertainty: duplicate source")

	// ErrSingularCovariance is returned when the aggregated covariance cannot
	// be inverted stably.
	ErrSingularCovariance = errors.New("uncertainty: singular covariance")

	// ErrNonPositive is returned when log-normal treatment meets a value ≤ 0.
	ErrNonPositive = matrix.ErrNonPositive

	// ErrNegativeVariance is returned when a diagonal source carries a variance < 0.
	ErrNegativeVariance = errors.New("uncertainty: negative variance")

	// ErrInvalidSource is returned for an empty name, an unknown mode or a nil source.
	ErrInvalidSource = errors.New("uncertainty: invalid source")
)

// Scope tells whether a source describes the data or one template.
type Scope int

const (
	// ScopeData sources are bin-by-bin covariances of the data vector.
	ScopeData Scope = iota
	// ScopeTemplate sources belong to one reference template and are
	// broadcast through the template weights.
	ScopeTemplate
)

// String returns "data" or "template".
func (s Scope) String() string {
	if s == ScopeTemplate {
		return "template"
	}

	return "data"
}

// Kind is the representation of the source payload.
type Kind int

const (
	// KindMatrix is a full N×N covariance.
	KindMatrix Kind = iota
	// KindDiagonal is a vector of uncorrelated variances.
	KindDiagonal
	// KindShift is a shift vector with one bin-to-bin correlation coefficient.
	KindShift
	// KindTemplateDiagonal is a diagonal variance attached to one template.
	KindTemplateDiagonal
)

var kindNames = [...]string{
	KindMatrix:           "matrix",
	KindDiagonal:         "diagonal",
	KindShift:            "shift",
	KindTemplateDiagonal: "template-diagonal",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// Mode is the statistical treatment of a source.
type Mode int

const (
	// Statistical sources are additive Gaussian and enter the fit weight.
	Statistical Mode = iota
	// External sources are fixed: excluded from the fit weight and
	// propagated into the result afterwards.
	External
	// LogNormal sources are multiplicative; see Request.LogNormal.
	LogNormal
)

var modeNames = [...]string{
	Statistical: "statistical",
	External:    "external",
	LogNormal:   "lognormal",
}

// String returns the lower-case mode name.
func (m Mode) String() string {
	if !m.valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}

	return modeNames[m]
}

func (m Mode) valid() bool { return m >= Statistical && m <= LogNormal }

// ParseMode maps a mode name (case-insensitive) to its Mode.
func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(name, n) {
			return Mode(i), nil
		}
	}

	return 0, fmt.Errorf("ParseMode(%q): %w", name, ErrInvalidSource)
}

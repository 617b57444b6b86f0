// SPDX-License-Identifier: MIT
// Package fit: sentinel error set.
// Errors of the lower packages are re-exported so callers only need to
// import fit to match them with errors.Is.

package fit

import (
	"errors"

	"github.com/katalvlaran/litefit/matrix"
	"github.com/katalvlaran/litefit/templates"
	"github.com/katalvlaran/litefit/uncertainty"
)

var (
	// ErrDimensionMismatch is returned when templates, data and sources
	// disagree on the number of bins.
	ErrDimensionMismatch = matrix.ErrDimensionMismatch

	// ErrNaNInf is returned for non-finite input values.
	ErrNaNInf = matrix.ErrNaNInf

	// ErrAsymmetry is returned for a covariance matrix that is not symmetric.
	ErrAsymmetry = matrix.ErrAsymmetry

	// ErrNonPositive is returned when γ ≠ 1 or log-normal treatment meets a value ≤ 0.
	ErrNonPositive = matrix.ErrNonPositive

	// ErrInsufficientTemplates is returned when the strategy needs more templates.
	ErrInsufficientTemplates = templates.ErrInsufficientTemplates

	// ErrDuplicateReference is returned when a template reference value repeats.
	ErrDuplicateReference = templates.ErrDuplicateReference

	// ErrOutOfRange is returned when the optimum lies outside the reference
	// range and extrapolation is disabled.
	ErrOutOfRange = templates.ErrOutOfRange

	// ErrOptionViolation is returned when an invalid Option, RefineOption or
	// setting was supplied.
	ErrOptionViolation = templates.ErrOptionViolation

	// ErrDuplicateSource is returned when an uncertainty source name repeats.
	ErrDuplicateSource = uncertainty.ErrDuplicateSource

	// ErrSingularCovariance is returned when the total covariance over the
	// fit range cannot be inverted stably.
	ErrSingularCovariance = uncertainty.ErrSingularCovariance

	// ErrNegativeVariance is returned for a diagonal source with a variance < 0.
	ErrNegativeVariance = uncertainty.ErrNegativeVariance

	// ErrInvalidSource is returned for an unnamed source or an unknown mode.
	ErrInvalidSource = uncertainty.ErrInvalidSource

	// ErrInsufficientDegreesOfFreedom is returned when fewer than two bins are active.
	ErrInsufficientDegreesOfFreedom = errors.New("fit: insufficient degrees of freedom")

	// ErrInvalidRange is returned for a fit range outside 1 ≤ first ≤ last ≤ N.
	ErrInvalidRange = errors.New("fit: invalid fit range")

	// ErrNotInitialized is returned by Freeze when data or templates are missing.
	ErrNotInitialized = errors.New("fit: configuration not initialized")

	// ErrFrozen is returned when a Configuration is mutated after Freeze.
	ErrFrozen = errors.New("fit: configuration is frozen")

	// ErrNoSensitivity is returned when the templates do not depend on the
	// parameter over the fit range (sᵀWs ≤ 0).
	ErrNoSensitivity = errors.New("fit: templates insensitive to the parameter")

	// ErrMaxIterationsExceeded is returned together with a valid, unconverged
	// Result when refinement hits its iteration cap.
	ErrMaxIterationsExceeded = errors.New("fit: maximum iterations exceeded")
)

// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All kernels return these sentinels (optionally wrapped with an operation tag
// via matrixErrorf); tests check them with errors.Is. No kernel panics on
// user-supplied data.

package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrBadShape is returned when a matrix or vector is empty where at least
	// one element is required.
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrDimensionMismatch indicates incompatible lengths between operands,
	// e.g. a ragged row, a non-square input or a vector of the wrong length.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrAsymmetry signals that a matrix expected to be symmetric violated
	// symmetry beyond the relative tolerance.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil matrix argument was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrOutOfRange indicates that an index lies outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrNonPositive signals a value ≤ 0 where a strictly positive one is
	// required (power transforms, logarithms).
	ErrNonPositive = errors.New("matrix: non-positive value")

	// ErrSingular is returned when a matrix is not positive definite or its
	// condition number exceeds the configured limit.
	ErrSingular = errors.New("matrix: singular matrix")
)

// Operation tags for error wrapping.
const (
	opFromRows    = "FromRows"
	opDiagonal    = "Diagonal"
	opShift       = "Shift"
	opRestrict    = "Restrict"
	opInverseSPD  = "InverseSPD"
	opCorrelation = "Correlation"
	opQuadratic   = "Quadratic"
)

// matrixErrorf wraps err with an operation tag, preserving it for errors.Is.
// Callers must only pass a non-nil err.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Single source of truth for the shape and numeric checks shared by the
//    kernels and by the fit configuration layer.
//  - Return plain sentinels wrapped with the validator tag so call sites can
//    wrap again with their own operation name.
//
// Determinism & Performance:
//  - All checks are pure and allocate nothing.
//  - Symmetry is checked on the strict upper triangle only.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// isNonFinite reports whether v is NaN or ±Inf.
func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// ValidateFinite ensures every element of x is finite.
// Returns ErrNaNInf (wrapped with the offending index) otherwise.
// Complexity: O(n).
func ValidateFinite(x []float64) error {
	for i, v := range x {
		if isNonFinite(v) {
			return validatorErrorf("ValidateFinite", fmt.Errorf("element %d=%v: %w", i, v, ErrNaNInf))
		}
	}

	return nil
}

// ValidateVecLen ensures the vector is non-nil and has exactly n elements.
// Complexity: O(1).
func ValidateVecLen(x []float64, n int) error {
	if x == nil {
		return validatorErrorf("ValidateVecLen", ErrNilMatrix)
	}
	if len(x) != n {
		return validatorErrorf("ValidateVecLen", fmt.Errorf("len %d, want %d: %w", len(x), n, ErrDimensionMismatch))
	}

	return nil
}

// ValidateSquareRows checks that rows describe a non-empty square matrix and
// returns its order n.
//
// Errors: ErrBadShape (no rows), ErrDimensionMismatch (ragged or non-square).
// Complexity: O(n).
func ValidateSquareRows(rows [][]float64) (int, error) {
	n := len(rows)
	if n == 0 {
		return 0, validatorErrorf("ValidateSquareRows", ErrBadShape)
	}
	for i, row := range rows {
		if len(row) != n {
			return 0, validatorErrorf("ValidateSquareRows",
				fmt.Errorf("row %d has %d entries, want %d: %w", i, len(row), n, ErrDimensionMismatch))
		}
	}

	return n, nil
}

// ValidateSymmetric checks |A[i,j] - A[j,i]| ≤ eps·max(|A[i,j]|, |A[j,i]|)
// for all i<j. The tolerance is relative so that covariance matrices of any
// scale are judged alike; exact zeros on both sides always pass.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch (non-square), ErrNaNInf (bad eps),
// ErrAsymmetry on violation.
// Complexity: O(n²).
func ValidateSymmetric(a mat.Matrix, eps float64) error {
	if a == nil {
		return validatorErrorf("ValidateSymmetric", ErrNilMatrix)
	}
	r, c := a.Dims()
	if r != c {
		return validatorErrorf("ValidateSymmetric", ErrDimensionMismatch)
	}
	if isNonFinite(eps) {
		return validatorErrorf("ValidateSymmetric", ErrNaNInf)
	}
	eps = math.Abs(eps)

	var (
		i, j     int
		aij, aji float64
	)
	for i = 0; i < r; i++ {
		for j = i + 1; j < r; j++ {
			aij, aji = a.At(i, j), a.At(j, i)
			if math.Abs(aij-aji) > eps*math.Max(math.Abs(aij), math.Abs(aji)) {
				return validatorErrorf("ValidateSymmetric",
					fmt.Errorf("(%d,%d)=%g vs (%d,%d)=%g: %w", i, j, aij, j, i, aji, ErrAsymmetry))
			}
		}
	}

	return nil
}

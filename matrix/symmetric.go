// SPDX-License-Identifier: MIT

// Package matrix - construction and restriction of symmetric matrices.
//
// Purpose:
//   - Ingest caller rows into *mat.SymDense after validation (FromRows).
//   - Build the structured covariance shapes used by uncertainty sources:
//     diagonal variances and shift outer products with a bin-to-bin correlation.
//   - Materialize the sub-block selected by an index set (Restrict).
//
// Complexity quicksheet:
//   - FromRows/Diagonal/Shift: O(n²); Restrict: O(k²) for k indices.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultEpsilon is the relative tolerance used by symmetry checks on ingestion.
const DefaultEpsilon = 1e-9

// FromRows validates rows (square, finite, symmetric within eps) and returns
// them as a symmetric matrix. The two triangles are averaged so that the
// result is exactly symmetric even when the input carries rounding noise.
//
// Errors:
//   - ErrBadShape, ErrDimensionMismatch (shape).
//   - ErrNaNInf (non-finite element).
//   - ErrAsymmetry (triangles disagree beyond eps).
//
// Complexity: O(n²) time and memory.
func FromRows(rows [][]float64, eps float64) (*mat.SymDense, error) {
	n, err := ValidateSquareRows(rows)
	if err != nil {
		return nil, matrixErrorf(opFromRows, err)
	}

	var i, j int
	for i = 0; i < n; i++ {
		if err = ValidateFinite(rows[i]); err != nil {
			return nil, matrixErrorf(opFromRows, fmt.Errorf("row %d: %w", i, err))
		}
	}

	dense := mat.NewDense(n, n, nil)
	for i = 0; i < n; i++ {
		dense.SetRow(i, rows[i])
	}
	if err = ValidateSymmetric(dense, eps); err != nil {
		return nil, matrixErrorf(opFromRows, err)
	}

	sym := mat.NewSymDense(n, nil)
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(rows[i][j]+rows[j][i]))
		}
	}

	return sym, nil
}

// Diagonal returns diag(v) as a symmetric matrix.
// Errors: ErrBadShape (empty), ErrNaNInf.
func Diagonal(v []float64) (*mat.SymDense, error) {
	if len(v) == 0 {
		return nil, matrixErrorf(opDiagonal, ErrBadShape)
	}
	if err := ValidateFinite(v); err != nil {
		return nil, matrixErrorf(opDiagonal, err)
	}

	sym := mat.NewSymDense(len(v), nil)
	for i, x := range v {
		sym.SetSym(i, i, x)
	}

	return sym, nil
}

// Shift builds the covariance of a systematic shift vector s whose bins are
// correlated with coefficient rho:
//
//	V[i,j] = s[i]·s[j]·(rho + (1-rho)·δ[i,j])
//
// rho=0 gives diag(s²), rho=1 the fully correlated outer product s·sᵀ.
//
// Errors: ErrBadShape (empty), ErrNaNInf (non-finite s or rho outside [0,1]).
func Shift(s []float64, rho float64) (*mat.SymDense, error) {
	if len(s) == 0 {
		return nil, matrixErrorf(opShift, ErrBadShape)
	}
	if err := ValidateFinite(s); err != nil {
		return nil, matrixErrorf(opShift, err)
	}
	if isNonFinite(rho) || rho < 0 || rho > 1 {
		return nil, matrixErrorf(opShift, fmt.Errorf("correlation %v outside [0,1]: %w", rho, ErrNaNInf))
	}

	n := len(s)
	sym := mat.NewSymDense(n, nil)
	var i, j int
	for i = 0; i < n; i++ {
		sym.SetSym(i, i, s[i]*s[i])
		for j = i + 1; j < n; j++ {
			sym.SetSym(i, j, rho*s[i]*s[j])
		}
	}

	return sym, nil
}

// Restrict copies the block a[idx, idx] into a new symmetric matrix.
// Indices keep their given order; duplicates are not allowed by callers.
//
// Errors: ErrNilMatrix, ErrBadShape (empty idx), ErrOutOfRange.
// Complexity: O(k²) for k = len(idx).
func Restrict(a mat.Symmetric, idx []int) (*mat.SymDense, error) {
	if a == nil {
		return nil, matrixErrorf(opRestrict, ErrNilMatrix)
	}
	if len(idx) == 0 {
		return nil, matrixErrorf(opRestrict, ErrBadShape)
	}
	n := a.SymmetricDim()
	for _, k := range idx {
		if k < 0 || k >= n {
			return nil, matrixErrorf(opRestrict, fmt.Errorf("index %d of %d: %w", k, n, ErrOutOfRange))
		}
	}

	var out mat.SymDense
	out.SubsetSym(a, idx)

	return &out, nil
}

// Quadratic returns xᵀ·A·y.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
func Quadratic(x []float64, a mat.Symmetric, y []float64) (float64, error) {
	if a == nil {
		return math.NaN(), matrixErrorf(opQuadratic, ErrNilMatrix)
	}
	n := a.SymmetricDim()
	if err := ValidateVecLen(x, n); err != nil {
		return math.NaN(), matrixErrorf(opQuadratic, err)
	}
	if err := ValidateVecLen(y, n); err != nil {
		return math.NaN(), matrixErrorf(opQuadratic, err)
	}

	return mat.Inner(mat.NewVecDense(n, x), a, mat.NewVecDense(n, y)), nil
}

// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultConditionLimit is the largest accepted condition number of a
// covariance matrix before it is treated as singular.
const DefaultConditionLimit = 1e12

// InverseSPD computes A⁻¹ for a symmetric positive-definite A through a
// Cholesky factorization and returns the inverse with the estimated condition
// number of A.
//
// Implementation:
//   - Stage 1: Factorize A = LLᵀ; a non-positive pivot means A is not PD.
//   - Stage 2: Reject cond(A) > condLimit (or NaN) before forming the inverse.
//   - Stage 3: Form A⁻¹ from the factor.
//
// Behavior highlights:
//   - Rank-deficient input (e.g. identical rows) fails in Stage 1 or Stage 2;
//     it never yields Inf/NaN entries.
//   - A non-positive condLimit selects DefaultConditionLimit.
//
// Errors:
//   - ErrNilMatrix, ErrBadShape.
//   - ErrSingular (not PD, ill-conditioned, or inverse failed).
//
// Complexity:
//   - Time O(n³), Space O(n²).
func InverseSPD(a mat.Symmetric, condLimit float64) (*mat.SymDense, float64, error) {
	if a == nil {
		return nil, math.NaN(), matrixErrorf(opInverseSPD, ErrNilMatrix)
	}
	if a.SymmetricDim() == 0 {
		return nil, math.NaN(), matrixErrorf(opInverseSPD, ErrBadShape)
	}
	if condLimit <= 0 || isNonFinite(condLimit) {
		condLimit = DefaultConditionLimit
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, math.Inf(1), matrixErrorf(opInverseSPD, fmt.Errorf("not positive definite: %w", ErrSingular))
	}

	cond := chol.Cond()
	if math.IsNaN(cond) || cond > condLimit {
		return nil, cond, matrixErrorf(opInverseSPD, fmt.Errorf("condition number %.3g exceeds %.3g: %w", cond, condLimit, ErrSingular))
	}

	inv := mat.NewSymDense(a.SymmetricDim(), nil)
	if err := chol.InverseTo(inv); err != nil {
		return nil, cond, matrixErrorf(opInverseSPD, fmt.Errorf("%v: %w", err, ErrSingular))
	}

	return inv, cond, nil
}

// Correlation converts a covariance matrix into its correlation matrix:
// C[i,j] = V[i,j] / sqrt(V[i,i]·V[j,j]). A degenerate variance (≤ 0) zeroes
// the corresponding row and column, diagonal included.
//
// Errors: ErrNilMatrix, ErrBadShape.
// Complexity: O(n²).
func Correlation(cov mat.Symmetric) (*mat.SymDense, error) {
	if cov == nil {
		return nil, matrixErrorf(opCorrelation, ErrNilMatrix)
	}
	n := cov.SymmetricDim()
	if n == 0 {
		return nil, matrixErrorf(opCorrelation, ErrBadShape)
	}

	inv := make([]float64, n)
	var i, j int
	for i = 0; i < n; i++ {
		if v := cov.At(i, i); v > 0 {
			inv[i] = 1 / math.Sqrt(v)
		}
	}

	out := mat.NewSymDense(n, nil)
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			out.SetSym(i, j, cov.At(i, j)*inv[i]*inv[j])
		}
		if inv[i] != 0 {
			out.SetSym(i, i, 1)
		}
	}

	return out, nil
}

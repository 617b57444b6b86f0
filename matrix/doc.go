// SPDX-License-Identifier: MIT

// Package matrix provides the symmetric-matrix kernels used by the template fit:
// ingestion of covariance matrices from plain rows, restriction to an active
// bin window, stability-checked inversion of positive-definite matrices and
// covariance → correlation conversion.
//
// What & Why:
//
//	Covariance matrices arrive from the caller as [][]float64 (one row per bin).
//	They are validated once (square, finite, symmetric within eps) and stored as
//	gonum *mat.SymDense, so every downstream kernel can rely on symmetry by type.
//	Inversion never divides blindly: a Cholesky factorization is attempted and its
//	condition number is compared against a limit before the inverse is formed.
//
// Complexity:
//
//	FromRows, Restrict, Correlation: O(n²).
//	InverseSPD: O(n³) (Cholesky + triangular solves).
//
// Errors are package sentinels (errors.go) wrapped with an operation tag,
// e.g. "InverseSPD: matrix: singular matrix". Match with errors.Is.
package matrix

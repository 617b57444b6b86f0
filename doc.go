// SPDX-License-Identifier: MIT

// Package litefit estimates a continuous parameter, typically the top-quark
// mass, by a generalized least-squares comparison of a measured spectrum
// with templates simulated at known parameter values.
//
// 🚀 What is litefit?
//
//	A small, deterministic fit engine that brings together:
//		• Template bases: regression, piecewise-linear or quadratic interpolation in m^γ
//		• Uncertainty sources: full matrices, diagonals, correlated shifts, per-template statistics
//		• Closed-form linear fits with per-source uncertainty decomposition
//		• Nuisance-parameter treatment of fully correlated shifts
//		• Iterative refinement: Newton, Taylor and Nelder–Mead minimization
//		• Text reports, plot inputs and TOML settings
//
// ✨ Why litefit?
//
//   - Build, freeze, solve: a mutable Configuration becomes an immutable
//     FrozenFit that is safe for concurrent Solve and Refine calls.
//   - Additive decomposition: named contributions square-sum to the total.
//   - Sentinel errors everywhere, matchable with errors.Is.
//
// Under the hood, everything is organized under four subpackages:
//
//	matrix/      — symmetric-matrix kernels over gonum (restriction, SPD inverse, correlation)
//	templates/   — template sets and the interpolation basis
//	uncertainty/ — uncertainty sources, registry and covariance aggregation
//	fit/         — configuration, linear solve, refinement, results and settings
//
// A runnable driver lives in examples/mtop.
//
//	go get github.com/katalvlaran/litefit
package litefit

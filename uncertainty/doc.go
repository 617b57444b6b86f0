// SPDX-License-Identifier: MIT

// Package uncertainty models the named sources of uncertainty of a template
// fit and folds them into one covariance matrix over the active bins.
//
// 🚀 Sources
//
//	A Source is a closed tagged variant: a Kind (full matrix, diagonal,
//	correlated shift, per-template diagonal) with its payload, a Scope (data
//	or template-indexed) and a treatment Mode:
//
//	  Statistical — additive Gaussian, enters the fit weight W = V⁻¹.
//	  External    — fixed; excluded from W, propagated into the result only.
//	  LogNormal   — multiplicative; transformed before summation when the
//	                fit enables log-normal treatment, Statistical otherwise.
//
// ✨ Aggregation
//
//	Aggregate is a pure fold. Every source is restricted to the active bins,
//	template-indexed sources are broadcast as Σ_j w_j²·diag_j with the current
//	template weights, and the contributions are summed in name order so the
//	total does not depend on the order sources were registered in.
//	Contributions are computed concurrently; the sum is not.
//
// ⚙️ Usage:
//
//	reg := uncertainty.NewRegistry()
//	src, _ := uncertainty.NewMatrix("exp", rows, uncertainty.Statistical)
//	_ = reg.Add(src)
//	agg, err := uncertainty.Aggregate(reg.Sources(), uncertainty.Request{Bins: []int{0, 1, 2}})
//	w, err := uncertainty.Invert(agg.Total, 0)
package uncertainty

// SPDX-License-Identifier: MIT

// Package templates stores simulated reference vectors ("templates") computed
// at known values of a parameter and turns them into an interpolation basis.
//
// 🚀 What is a template basis?
//
//	Every template T_j is a binned prediction made at reference value m_j.
//	The basis expresses the prediction at any m as a weighted sum
//
//	    T(m) = Σ_j w_j(m) · T_j
//
//	where the weights w_j(m) ("fractional amplitudes") depend only on the
//	reference values, never on the bin contents. Fits and error propagation
//	downstream work with these weights and their derivatives.
//
// ✨ Strategies:
//   - PiecewiseLinear — straight line between the two bracketing references.
//     Linear on every segment and exact at every reference; the default.
//   - Regression      — per-bin straight line through all reference points
//     (least squares in x = m^γ). Exactly linear, but smooths templates
//     that are not linear in x.
//   - Quadratic       — per-bin parabola through all reference points.
//     Non-linear; fits linearize it and refine iteratively.
//
// ⚙️ Usage:
//
//	set := templates.NewSet()
//	_ = set.Add(171.5, mc1715)
//	_ = set.Add(173.5, mc1735)
//	basis, err := templates.NewBasis(set, templates.WithStrategy(templates.PiecewiseLinear))
//	pred, err := basis.Interpolate(172.9)
//
// Outside [min m_j, max m_j] Interpolate fails with ErrOutOfRange unless the
// basis was built WithExtrapolation().
package templates

// SPDX-License-Identifier: MIT

// Package fit estimates one continuous parameter (e.g. a particle mass) by a
// generalized least-squares comparison of a data vector with templates
// simulated at known parameter values.
//
// 🚀 Workflow (build, freeze, solve):
//
//	cfg := fit.NewConfiguration(fit.WithGamma(1), fit.WithNuisanceParameters(false))
//	for _, t := range mc {
//		_ = cfg.AddTemplate(t.Mass, t.Values)
//		_ = cfg.AddTemplateErrorSquared("statY", t.Mass, t.Variances, 0)
//	}
//	_ = cfg.SetData(data)
//	_ = cfg.AddError("stat", statCov)
//	_ = cfg.AddError("exp", expCov)
//	_ = cfg.SetFitRange(1, 4)
//	frozen, err := cfg.Freeze()
//	res, err := frozen.Solve()
//	res.PrintFull(os.Stdout)
//
// ✨ The linear fit
//
//	On every exactly linear piece of the template basis, T(x) = t0 + s·x with
//	x = m^γ, χ²(x) = (d - T(x))ᵀ W (d - T(x)) has the closed-form minimum
//
//	    x̂ = sᵀW r0 / sᵀWs,   Var(x̂) = 1/sᵀWs,   r0 = d - t0,
//
//	where W is the inverse of the summed covariance over the fit range.
//	With D = W s / sᵀWs every source k contributes σ_k² = D V_k Dᵀ, and the
//	contributions add up to the total variance. External sources stay out of
//	W and are added on top.
//
// ⚙️ Options
//   - WithStrategy / WithGamma / WithExtrapolation shape the template basis.
//   - WithNuisanceParameters fits fully correlated shifts as constrained
//     parameters instead of covariances; pulls are reported in the Result.
//   - WithLogNormal enables log-normal treatment of LogNormal sources.
//   - Settings loads the same options from TOML.
//
// 🔁 Refinement
//
//	For templates that are not linear in m, Refine follows Solve:
//	Newton (finite-difference re-linearization until |Δm| < tolerance),
//	Taylor (one second-order step) or Minimize (numerical χ² minimization).
//	OnIteration observes each step; the package itself never logs.
//
// All inputs are copied; FrozenFit and Result are immutable and safe for
// concurrent readers.
package fit

// SPDX-License-Identifier: MIT

package fit

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/litefit/uncertainty"
)

// SourceUncertainty is the contribution of one named source to the
// uncertainty of the estimate.
type SourceUncertainty struct {
	Name     string
	Mode     uncertainty.Mode
	Nuisance bool
	Sigma    float64
}

// Parameter is one fitted parameter with its uncertainty.
type Parameter struct {
	Name        string
	Value       float64
	Uncertainty float64
}

// Result is an immutable snapshot of a solved fit. All slices are owned by
// the Result; per-bin slices cover the active bins only.
type Result struct {
	// Estimate and its total Uncertainty (fit plus External sources).
	Estimate    float64
	Uncertainty float64

	// Sources decomposes the uncertainty by source in registration order;
	// the squares add up to Uncertainty².
	Sources []SourceUncertainty

	ChiSquare float64
	NDF       int
	PValue    float64

	// Parameters lists the estimate first, then nuisance parameters.
	Parameters []Parameter
	// Correlation of Parameters.
	Correlation *mat.SymDense
	// Pulls are the fitted nuisance parameters in units of their prior width.
	Pulls []Parameter

	// Bins are the 1-based numbers of the active bins.
	Bins []int
	// TotalBins is the full template length N.
	TotalBins int
	Data      []float64
	// DataErrors are the square roots of the weighted covariance diagonal.
	DataErrors []float64
	// Fitted is the template prediction at the estimate plus fitted nuisance shifts.
	Fitted    []float64
	Residuals []float64

	// References and TemplateWeights are the template reference values and
	// their weights (fractional amplitudes) at the estimate; Templates holds
	// the active bins of every template in the same order.
	References      []float64
	TemplateWeights []float64
	Templates       [][]float64

	Strategy   string
	Method     string
	Converged  bool
	Iterations int

	// Fingerprint identifies the FrozenFit that produced the Result.
	Fingerprint uint64
}

// Sigma returns the uncertainty contributed by the named source and whether
// the source exists.
func (r *Result) Sigma(name string) (float64, bool) {
	for _, s := range r.Sources {
		if s.Name == name {
			return s.Sigma, true
		}
	}

	return 0, false
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	c := *r
	c.Sources = append([]SourceUncertainty(nil), r.Sources...)
	c.Parameters = append([]Parameter(nil), r.Parameters...)
	c.Pulls = append([]Parameter(nil), r.Pulls...)
	c.Bins = append([]int(nil), r.Bins...)
	c.Data = append([]float64(nil), r.Data...)
	c.DataErrors = append([]float64(nil), r.DataErrors...)
	c.Fitted = append([]float64(nil), r.Fitted...)
	c.Residuals = append([]float64(nil), r.Residuals...)
	c.References = append([]float64(nil), r.References...)
	c.TemplateWeights = append([]float64(nil), r.TemplateWeights...)
	c.Templates = make([][]float64, len(r.Templates))
	for j, t := range r.Templates {
		c.Templates[j] = append([]float64(nil), t...)
	}
	if r.Correlation != nil {
		c.Correlation = mat.NewSymDense(r.Correlation.SymmetricDim(), nil)
		c.Correlation.CopySym(r.Correlation)
	}

	return &c
}

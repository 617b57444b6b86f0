// SPDX-License-Identifier: MIT

package fit

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"text/tabwriter"
)

// PrintFull writes a deterministic, ordered text report of r: estimate,
// total uncertainty, each named contribution in registration order, χ² with
// degrees of freedom and p-value, nuisance pulls and the per-bin table.
// Nothing is recomputed.
func (r *Result) PrintFull(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "litefit result\t[%s, %s]\n", r.Strategy, r.Method)
	fmt.Fprintf(tw, "  estimate\t%.4f\t± %.4f\n", r.Estimate, r.Uncertainty)
	for _, s := range r.Sources {
		tag := s.Mode.String()
		if s.Nuisance {
			tag = "nuisance"
		}
		fmt.Fprintf(tw, "    %s\t\t± %.4f\t(%s)\n", s.Name, s.Sigma, tag)
	}
	fmt.Fprintf(tw, "  chi2 / ndf\t%.4f / %d\n", r.ChiSquare, r.NDF)
	fmt.Fprintf(tw, "  p-value\t%.4f\n", r.PValue)
	fmt.Fprintf(tw, "  converged\t%v (%d iterations)\n", r.Converged, r.Iterations)
	if len(r.Pulls) > 0 {
		fmt.Fprintln(tw, "  pulls:")
		for _, p := range r.Pulls {
			fmt.Fprintf(tw, "    %s\t%+.4f\t± %.4f\n", p.Name, p.Value, p.Uncertainty)
		}
	}
	fmt.Fprintln(tw, "  bin\tdata\tfitted\tresidual\tpull")
	for i, b := range r.Bins {
		pull := math.NaN()
		if r.DataErrors[i] > 0 {
			pull = r.Residuals[i] / r.DataErrors[i]
		}
		fmt.Fprintf(tw, "  %d\t%.6g\t%.6g\t%+.4g\t%+.3f\n", b, r.Data[i], r.Fitted[i], r.Residuals[i], pull)
	}

	return tw.Flush()
}

// Report returns the PrintFull text.
func (r *Result) Report() string {
	var buf bytes.Buffer
	_ = r.PrintFull(&buf)

	return buf.String()
}

// PlotInput is everything an external plotting collaborator needs to draw
// the fit over its range. It performs no fitting logic itself.
type PlotInput struct {
	// Edges are the k+1 bin edges of the active bins.
	Edges     []float64
	Data      []float64
	DataError []float64
	Fitted    []float64

	// Templates holds every template over the active bins, keyed by position
	// in References.
	References []float64
	Templates  [][]float64

	XLabel, YLabel string
}

// PlotInput slices the full bin edges (N+1 values) to the fit range and
// pairs them with the fitted and measured values.
//
// Errors: ErrDimensionMismatch when len(edges) != N+1.
func (r *Result) PlotInput(edges []float64, xlabel, ylabel string) (*PlotInput, error) {
	if len(edges) != r.TotalBins+1 {
		return nil, fmt.Errorf("PlotInput: %d edges for %d bins: %w", len(edges), r.TotalBins, ErrDimensionMismatch)
	}
	c := r.Clone()
	pi := &PlotInput{
		Data:       c.Data,
		DataError:  c.DataErrors,
		Fitted:     c.Fitted,
		References: c.References,
		Templates:  c.Templates,
		XLabel:     xlabel,
		YLabel:     ylabel,
	}
	if len(r.Bins) > 0 {
		first, last := r.Bins[0], r.Bins[len(r.Bins)-1]
		pi.Edges = append([]float64(nil), edges[first-1:last+1]...)
	}

	return pi, nil
}

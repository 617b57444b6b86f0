// SPDX-License-Identifier: MIT

package uncertainty

import (
	"errors"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/litefit/matrix"
)

// Request describes one aggregation: which bins are active and the state of
// the fit the template-indexed and log-normal sources depend on.
type Request struct {
	// Bins are the 0-based indices of the active bins, ascending.
	Bins []int

	// TemplateWeights maps a template reference value to its weight w_j at
	// the current estimate. Template-indexed sources are broadcast as
	// Σ_j w_j²·diag_j; references missing from the map weigh 0. A nil map
	// skips template-indexed sources entirely.
	TemplateWeights map[float64]float64

	// LogNormal enables log-normal treatment of LogNormal-mode sources: the
	// covariance of log x, V[i,j]/(d[i]·d[j]), is mapped back onto the
	// prediction scale, V[i,j]·p[i]·p[j]/(d[i]·d[j]). When disabled such
	// sources are treated as Statistical.
	LogNormal bool

	// Data is the full-length data vector d; required when LogNormal is set.
	Data []float64

	// Prediction is the full-length prediction p; nil uses Data (identity).
	Prediction []float64

	// Nuisance turns fully correlated Statistical shifts into nuisance
	// contributions excluded from Total.
	Nuisance bool
}

// Contribution is the covariance one named source adds over the active bins.
type Contribution struct {
	Name     string
	Scope    Scope
	Mode     Mode
	Nuisance bool

	// Shifts is the restricted shift vector of a nuisance contribution.
	Shifts []float64

	// Cov is restricted to Request.Bins.
	Cov *mat.SymDense
}

// Weighted reports whether the contribution enters the fit weight.
func (c Contribution) Weighted() bool { return c.Mode != External && !c.Nuisance }

// Aggregation is the result of Aggregate.
type Aggregation struct {
	// Total is the sum of all weighted contributions.
	Total *mat.SymDense

	// Contributions holds one entry per source name in order of first
	// registration, including External and nuisance contributions.
	Contributions []Contribution
}

// Aggregate folds sources into the total covariance over req.Bins.
//
// Implementation:
//   - Stage 1: Group sources by name (template-indexed sources share a name).
//   - Stage 2: Build each group's restricted contribution concurrently.
//   - Stage 3: Sum weighted contributions in name order; inside a group the
//     template references are summed in ascending order.
//
// Behavior highlights:
//   - The total is bitwise independent of the order sources were registered in.
//   - Sources are never modified.
//
// Errors:
//   - matrix.ErrBadShape / matrix.ErrOutOfRange for an empty or invalid bin set.
//   - ErrDimensionMismatch when sources, Data or Prediction disagree on N.
//   - ErrNonPositive for d ≤ 0 or p ≤ 0 in a bin used by a log-normal source.
//
// Complexity: O(S·k²) for S sources over k active bins.
func Aggregate(sources []*Source, req Request) (*Aggregation, error) {
	if len(req.Bins) == 0 {
		return nil, fmt.Errorf("Aggregate: no active bins: %w", matrix.ErrBadShape)
	}
	n := 0
	for _, s := range sources {
		if s == nil {
			return nil, fmt.Errorf("Aggregate: nil source: %w", ErrInvalidSource)
		}
		if n != 0 && s.Bins() != n {
			return nil, fmt.Errorf("Aggregate(%q): %d bins, want %d: %w", s.name, s.Bins(), n, ErrDimensionMismatch)
		}
		n = s.Bins()
	}
	if req.LogNormal {
		if err := checkScale(req, n); err != nil {
			return nil, fmt.Errorf("Aggregate: %w", err)
		}
	}

	groups := group(sources)
	contribs := make([]*Contribution, len(groups))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range groups {
		i := i
		g.Go(func() error {
			c, err := contribute(groups[i], req)
			if err != nil {
				return fmt.Errorf("Aggregate(%q): %w", groups[i][0].name, err)
			}
			contribs[i] = c

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := &Aggregation{Total: mat.NewSymDense(len(req.Bins), nil)}
	order := make([]int, 0, len(contribs))
	for i, c := range contribs {
		if c == nil {
			continue
		}
		agg.Contributions = append(agg.Contributions, *c)
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool { return contribs[order[a]].Name < contribs[order[b]].Name })
	for _, i := range order {
		if contribs[i].Weighted() {
			agg.Total.AddSym(agg.Total, contribs[i].Cov)
		}
	}

	return agg, nil
}

// group splits sources into same-name groups in order of first appearance.
// Template groups are sorted by reference.
func group(sources []*Source) [][]*Source {
	idx := make(map[string]int, len(sources))
	var out [][]*Source
	for _, s := range sources {
		i, ok := idx[s.name]
		if !ok {
			i = len(out)
			idx[s.name] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], s)
	}
	for _, grp := range out {
		sort.SliceStable(grp, func(a, b int) bool { return grp[a].reference < grp[b].reference })
	}

	return out
}

// contribute builds the restricted contribution of one same-name group.
// It returns nil for a template group when no weights were supplied.
func contribute(grp []*Source, req Request) (*Contribution, error) {
	head := grp[0]
	c := &Contribution{Name: head.name, Scope: head.scope, Mode: head.mode}

	if head.scope == ScopeTemplate {
		if req.TemplateWeights == nil {
			return nil, nil
		}
		c.Cov = mat.NewSymDense(len(req.Bins), nil)
		for _, s := range grp {
			w := req.TemplateWeights[s.reference]
			if w == 0 {
				continue
			}
			sub, err := matrix.Restrict(s.cov, req.Bins)
			if err != nil {
				return nil, err
			}
			sub.ScaleSym(w*w, sub)
			c.Cov.AddSym(c.Cov, sub)
		}

		return c, nil
	}

	sub, err := matrix.Restrict(head.cov, req.Bins)
	if err != nil {
		return nil, err
	}
	if req.LogNormal && head.mode == LogNormal {
		f := scale(req)
		var i, j int
		for i = 0; i < len(f); i++ {
			for j = i; j < len(f); j++ {
				sub.SetSym(i, j, sub.At(i, j)*f[i]*f[j])
			}
		}
	}
	c.Cov = sub

	if req.Nuisance && head.FullyCorrelated() {
		c.Nuisance = true
		c.Shifts = make([]float64, len(req.Bins))
		for k, b := range req.Bins {
			c.Shifts[k] = head.shifts[b]
		}
	}

	return c, nil
}

// checkScale validates Data and Prediction for log-normal treatment.
func checkScale(req Request, n int) error {
	if n == 0 {
		return nil
	}
	if len(req.Data) != n {
		return fmt.Errorf("data has %d bins, want %d: %w", len(req.Data), n, ErrDimensionMismatch)
	}
	if req.Prediction != nil && len(req.Prediction) != n {
		return fmt.Errorf("prediction has %d bins, want %d: %w", len(req.Prediction), n, ErrDimensionMismatch)
	}
	for _, b := range req.Bins {
		if b < 0 || b >= n {
			return fmt.Errorf("bin %d of %d: %w", b, n, matrix.ErrOutOfRange)
		}
		if !(req.Data[b] > 0) || (req.Prediction != nil && !(req.Prediction[b] > 0)) {
			return fmt.Errorf("bin %d: %w", b, ErrNonPositive)
		}
	}

	return nil
}

// scale returns p[b]/d[b] for every active bin b.
func scale(req Request) []float64 {
	f := make([]float64, len(req.Bins))
	for k, b := range req.Bins {
		f[k] = 1
		if req.Prediction != nil {
			f[k] = req.Prediction[b] / req.Data[b]
		}
	}

	return f
}

// Invert returns W = V⁻¹ for the aggregated covariance using a Cholesky
// factorization with a condition-number check (condLimit ≤ 0 selects
// matrix.DefaultConditionLimit).
//
// Errors: ErrSingularCovariance.
func Invert(total mat.Symmetric, condLimit float64) (*mat.SymDense, error) {
	inv, _, err := matrix.InverseSPD(total, condLimit)
	if err != nil {
		if errors.Is(err, matrix.ErrSingular) || errors.Is(err, matrix.ErrNilMatrix) || errors.Is(err, matrix.ErrBadShape) {
			return nil, fmt.Errorf("Invert: %v: %w", err, ErrSingularCovariance)
		}

		return nil, fmt.Errorf("Invert: %w", err)
	}

	return inv, nil
}

// SPDX-License-Identifier: MIT

package fit

import (
	"fmt"

	"github.com/katalvlaran/litefit/templates"
	"github.com/katalvlaran/litefit/uncertainty"
)

// FrozenFit is an immutable, validated fit configuration. Solve and Refine
// may be called concurrently.
type FrozenFit struct {
	opts options

	basis *templates.Basis // honours the extrapolation setting
	eval  *templates.Basis // same templates, defined everywhere (stencils, objectives)

	sources []*uncertainty.Source
	data    []float64
	rng     Range
	bins    []int

	// dependent is set when the covariance depends on the estimate
	// (template-indexed or log-normal sources).
	dependent bool

	// flat is set when every template is identical over the fit range.
	flat bool

	fingerprint uint64
}

func newFrozenFit(o options, set *templates.Set, sources []*uncertainty.Source, data []float64, rng Range) (*FrozenFit, error) {
	basis, err := templates.NewBasis(set, o.basisOptions()...)
	if err != nil {
		return nil, err
	}
	eval, err := templates.NewBasis(set, append(o.basisOptions(), templates.WithExtrapolation())...)
	if err != nil {
		return nil, err
	}

	f := &FrozenFit{
		opts:    o,
		basis:   basis,
		eval:    eval,
		sources: sources,
		data:    make([]float64, len(data)),
		rng:     rng,
		bins:    rng.indices(),
	}
	copy(f.data, data)

	for _, s := range sources {
		switch {
		case s.Scope() == uncertainty.ScopeTemplate:
			f.dependent = true
		case s.Mode() == uncertainty.LogNormal && o.logNormal:
			f.dependent = true
			for _, b := range f.bins {
				if !(data[b] > 0) {
					return nil, fmt.Errorf("log-normal source %q: data bin %d = %v: %w", s.Name(), b+1, data[b], ErrNonPositive)
				}
			}
		}
	}
	f.flat = flat(basis, f.bins)
	f.fingerprint = fingerprint(f)

	return f, nil
}

// Basis returns the interpolation basis.
func (f *FrozenFit) Basis() *templates.Basis { return f.basis }

// Range returns the active bin range.
func (f *FrozenFit) Range() Range { return f.rng }

// Bins returns the total number of bins N.
func (f *FrozenFit) Bins() int { return len(f.data) }

// Data returns a copy of the full data vector.
func (f *FrozenFit) Data() []float64 {
	out := make([]float64, len(f.data))
	copy(out, f.data)

	return out
}

// Sources returns the uncertainty sources in registration order.
func (f *FrozenFit) Sources() []*uncertainty.Source {
	out := make([]*uncertainty.Source, len(f.sources))
	copy(out, f.sources)

	return out
}

// Fingerprint returns a hash of the fit inputs that does not depend on the
// order templates or sources were registered in.
func (f *FrozenFit) Fingerprint() uint64 { return f.fingerprint }

// restrict copies the active bins of a full-length vector.
func (f *FrozenFit) restrict(full []float64) []float64 {
	out := make([]float64, len(f.bins))
	for k, b := range f.bins {
		out[k] = full[b]
	}

	return out
}

// flat reports whether all templates agree on every active bin.
func flat(b *templates.Basis, bins []int) bool {
	first := b.Template(0)
	for j := 1; j < b.Len(); j++ {
		t := b.Template(j)
		for _, i := range bins {
			if t[i] != first[i] {
				return false
			}
		}
	}

	return true
}

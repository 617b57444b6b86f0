// SPDX-License-Identifier: MIT

package fit

import (
	"fmt"

	"github.com/katalvlaran/litefit/matrix"
	"github.com/katalvlaran/litefit/templates"
	"github.com/katalvlaran/litefit/uncertainty"
)

// Range is a 1-based inclusive bin range [First, Last].
type Range struct {
	First int `toml:"first"`
	Last  int `toml:"last"`
}

// Len returns the number of bins in the range.
func (r Range) Len() int { return r.Last - r.First + 1 }

// indices returns the 0-based bin indices of the range.
func (r Range) indices() []int {
	out := make([]int, r.Len())
	for i := range out {
		out[i] = r.First - 1 + i
	}

	return out
}

// validate checks 1 ≤ First ≤ Last ≤ n.
func (r Range) validate(n int) error {
	if r.First < 1 || r.Last < r.First || r.Last > n {
		return fmt.Errorf("range [%d,%d] of %d bins: %w", r.First, r.Last, n, ErrInvalidRange)
	}

	return nil
}

// Configuration accumulates templates, data and uncertainty sources.
// It is not safe for concurrent use; Freeze turns it into an immutable
// FrozenFit, after which every mutator returns ErrFrozen.
type Configuration struct {
	opts   []Option
	set    *templates.Set
	reg    *uncertainty.Registry
	data   []float64
	rng    *Range
	frozen bool
}

// NewConfiguration returns an empty configuration.
func NewConfiguration(opts ...Option) *Configuration {
	return &Configuration{
		opts: opts,
		set:  templates.NewSet(),
		reg:  uncertainty.NewRegistry(),
	}
}

// bins returns the bin count fixed by the first input (0 while empty).
func (c *Configuration) bins() int {
	switch {
	case c.set.Bins() != 0:
		return c.set.Bins()
	case c.data != nil:
		return len(c.data)
	default:
		return c.reg.Bins()
	}
}

// checkBins verifies n against the bin count fixed so far.
func (c *Configuration) checkBins(op string, n int) error {
	if c.frozen {
		return fmt.Errorf("%s: %w", op, ErrFrozen)
	}
	if b := c.bins(); b != 0 && n != b {
		return fmt.Errorf("%s: %d bins, want %d: %w", op, n, b, ErrDimensionMismatch)
	}

	return nil
}

// AddTemplate registers the template simulated at reference.
func (c *Configuration) AddTemplate(reference float64, values []float64) error {
	if err := c.checkBins("AddTemplate", len(values)); err != nil {
		return err
	}
	if err := c.set.Add(reference, values); err != nil {
		return fmt.Errorf("AddTemplate: %w", err)
	}

	return nil
}

// AddTemplateErrorSquared registers the statistical variances of the template
// at reference under name; every variance is raised to at least floor. The
// same name may be used for every template.
func (c *Configuration) AddTemplateErrorSquared(name string, reference float64, variances []float64, floor float64) error {
	src, err := uncertainty.NewTemplateDiagonal(name, reference, variances, floor)
	if err != nil {
		return fmt.Errorf("AddTemplateErrorSquared: %w", err)
	}

	return c.add("AddTemplateErrorSquared", src)
}

// SetData sets (or replaces) the measured data vector.
func (c *Configuration) SetData(values []float64) error {
	if c.frozen {
		return fmt.Errorf("SetData: %w", ErrFrozen)
	}
	if len(values) == 0 {
		return fmt.Errorf("SetData: empty data: %w", ErrDimensionMismatch)
	}
	if (c.set.Bins() != 0 && len(values) != c.set.Bins()) || (c.reg.Bins() != 0 && len(values) != c.reg.Bins()) {
		return fmt.Errorf("SetData: %d bins, want %d: %w", len(values), c.bins(), ErrDimensionMismatch)
	}
	if err := matrix.ValidateFinite(values); err != nil {
		return fmt.Errorf("SetData: %w", err)
	}
	c.data = make([]float64, len(values))
	copy(c.data, values)

	return nil
}

// AddError registers a full Statistical covariance matrix.
func (c *Configuration) AddError(name string, rows [][]float64) error {
	return c.AddErrorWithMode(name, rows, uncertainty.Statistical)
}

// AddErrorWithMode registers a full covariance matrix with the given treatment.
func (c *Configuration) AddErrorWithMode(name string, rows [][]float64, mode uncertainty.Mode) error {
	src, err := uncertainty.NewMatrix(name, rows, mode)
	if err != nil {
		return fmt.Errorf("AddError: %w", err)
	}

	return c.add("AddError", src)
}

// AddUncorrelatedErrorSquared registers uncorrelated variances.
func (c *Configuration) AddUncorrelatedErrorSquared(name string, variances []float64, mode uncertainty.Mode) error {
	src, err := uncertainty.NewDiagonal(name, variances, mode)
	if err != nil {
		return fmt.Errorf("AddUncorrelatedErrorSquared: %w", err)
	}

	return c.add("AddUncorrelatedErrorSquared", src)
}

// AddShift registers a systematic shift whose bins are correlated with corr.
func (c *Configuration) AddShift(name string, shifts []float64, corr float64, mode uncertainty.Mode) error {
	src, err := uncertainty.NewShift(name, shifts, corr, mode)
	if err != nil {
		return fmt.Errorf("AddShift: %w", err)
	}

	return c.add("AddShift", src)
}

// AddSource registers a prebuilt source.
func (c *Configuration) AddSource(src *uncertainty.Source) error {
	if src == nil {
		return fmt.Errorf("AddSource: nil source: %w", ErrInvalidSource)
	}

	return c.add("AddSource", src)
}

func (c *Configuration) add(op string, src *uncertainty.Source) error {
	if err := c.checkBins(op, src.Bins()); err != nil {
		return err
	}
	if err := c.reg.Add(src); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SetFitRange restricts the fit to bins first..last (1-based, inclusive).
// The default is every bin.
func (c *Configuration) SetFitRange(first, last int) error {
	if c.frozen {
		return fmt.Errorf("SetFitRange: %w", ErrFrozen)
	}
	r := Range{First: first, Last: last}
	n := c.bins()
	if n == 0 {
		n = last
	}
	if err := r.validate(n); err != nil {
		return fmt.Errorf("SetFitRange: %w", err)
	}
	c.rng = &r

	return nil
}

// Freeze validates the configuration and returns an immutable FrozenFit.
// The Configuration rejects further mutation afterwards.
//
// Errors:
//   - ErrOptionViolation for invalid options.
//   - ErrNotInitialized without data, with fewer than two templates, or when a
//     template-indexed source names a reference without a template.
//   - ErrInsufficientTemplates when the strategy needs more templates.
//   - ErrInvalidRange, ErrInsufficientDegreesOfFreedom for the fit range.
//   - ErrNonPositive for log-normal sources over non-positive data.
func (c *Configuration) Freeze() (*FrozenFit, error) {
	o := defaultOptions()
	for _, fn := range c.opts {
		fn(&o)
	}
	if o.err != nil {
		return nil, fmt.Errorf("Freeze: %w", o.err)
	}
	if c.data == nil {
		return nil, fmt.Errorf("Freeze: no data: %w", ErrNotInitialized)
	}
	if c.set.Len() < 2 {
		return nil, fmt.Errorf("Freeze: %d templates: %w", c.set.Len(), ErrNotInitialized)
	}

	sources := c.reg.Sources()
	for _, s := range sources {
		if s.Scope() == uncertainty.ScopeTemplate && !c.set.Has(s.Reference()) {
			return nil, fmt.Errorf("Freeze: source %s has no template: %w", s, ErrNotInitialized)
		}
	}

	rng := Range{First: 1, Last: len(c.data)}
	if c.rng != nil {
		rng = *c.rng
	}
	if err := rng.validate(len(c.data)); err != nil {
		return nil, fmt.Errorf("Freeze: %w", err)
	}
	if rng.Len() < 2 {
		return nil, fmt.Errorf("Freeze: %d active bins: %w", rng.Len(), ErrInsufficientDegreesOfFreedom)
	}

	f, err := newFrozenFit(o, c.set, sources, c.data, rng)
	if err != nil {
		return nil, fmt.Errorf("Freeze: %w", err)
	}
	c.frozen = true

	return f, nil
}

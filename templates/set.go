// SPDX-License-Identifier: MIT

package templates

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/litefit/matrix"
)

// Set accumulates templates. All templates share one bin count, fixed by the
// first Add. A Set is not safe for concurrent mutation.
type Set struct {
	bins  int
	items []Template
}

// NewSet returns an empty template set.
func NewSet() *Set {
	return &Set{}
}

// Add registers values as the template simulated at reference. The slice is copied.
//
// Errors:
//   - ErrDimensionMismatch when len(values) is zero or differs from earlier templates.
//   - ErrNaNInf when reference or any value is not finite.
//   - ErrDuplicateReference when reference was registered before.
func (s *Set) Add(reference float64, values []float64) error {
	if err := matrix.ValidateFinite([]float64{reference}); err != nil {
		return fmt.Errorf("Add(%v): reference: %w", reference, err)
	}
	if len(values) == 0 {
		return fmt.Errorf("Add(%v): empty template: %w", reference, ErrDimensionMismatch)
	}
	if s.bins != 0 && len(values) != s.bins {
		return fmt.Errorf("Add(%v): %d bins, want %d: %w", reference, len(values), s.bins, ErrDimensionMismatch)
	}
	if err := matrix.ValidateFinite(values); err != nil {
		return fmt.Errorf("Add(%v): %w", reference, err)
	}
	for _, t := range s.items {
		if t.Reference == reference {
			return fmt.Errorf("Add(%v): %w", reference, ErrDuplicateReference)
		}
	}

	cp := make([]float64, len(values))
	copy(cp, values)
	s.bins = len(values)
	s.items = append(s.items, Template{Reference: reference, Values: cp})

	return nil
}

// Len returns the number of templates.
func (s *Set) Len() int { return len(s.items) }

// Bins returns the shared bin count (0 while empty).
func (s *Set) Bins() int { return s.bins }

// Has reports whether a template with this reference value exists.
func (s *Set) Has(reference float64) bool {
	for _, t := range s.items {
		if t.Reference == reference {
			return true
		}
	}

	return false
}

// Templates returns deep copies of the templates ordered by reference value.
func (s *Set) Templates() []Template {
	out := make([]Template, len(s.items))
	for i, t := range s.items {
		cp := make([]float64, len(t.Values))
		copy(cp, t.Values)
		out[i] = Template{Reference: t.Reference, Values: cp}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reference < out[j].Reference })

	return out
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	c := &Set{bins: s.bins, items: s.Templates()}

	return c
}

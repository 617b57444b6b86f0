// SPDX-License-Identifier: MIT

package uncertainty

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/litefit/matrix"
)

// Source is one named uncertainty contribution. Sources are immutable once
// constructed and may be shared between registries and goroutines.
type Source struct {
	name  string
	scope Scope
	kind  Kind
	mode  Mode

	cov *mat.SymDense // full N×N covariance, built for every kind

	shifts    []float64 // KindShift
	corr      float64   // KindShift
	reference float64   // KindTemplateDiagonal
}

// NewMatrix registers a full covariance matrix for the data.
// rows must be square, finite and symmetric within matrix.DefaultEpsilon.
//
// Errors: ErrInvalidSource, ErrDimensionMismatch, ErrNaNInf, ErrAsymmetry.
func NewMatrix(name string, rows [][]float64, mode Mode) (*Source, error) {
	if err := checkHeader(name, mode); err != nil {
		return nil, fmt.Errorf("NewMatrix: %w", err)
	}
	cov, err := matrix.FromRows(rows, matrix.DefaultEpsilon)
	if err != nil {
		return nil, fmt.Errorf("NewMatrix(%q): %w", name, err)
	}

	return &Source{name: name, scope: ScopeData, kind: KindMatrix, mode: mode, cov: cov}, nil
}

// NewDiagonal registers uncorrelated variances (errors squared) for the data.
//
// Errors: ErrInvalidSource, ErrNaNInf, ErrNegativeVariance.
func NewDiagonal(name string, variances []float64, mode Mode) (*Source, error) {
	if err := checkHeader(name, mode); err != nil {
		return nil, fmt.Errorf("NewDiagonal: %w", err)
	}
	cov, err := diagonal(variances)
	if err != nil {
		return nil, fmt.Errorf("NewDiagonal(%q): %w", name, err)
	}

	return &Source{name: name, scope: ScopeData, kind: KindDiagonal, mode: mode, cov: cov}, nil
}

// NewShift registers a systematic shift vector whose bins are correlated
// with coefficient corr ∈ [0,1]:
//
//	V[i,j] = s[i]·s[j]·(corr + (1-corr)·δ[i,j])
//
// A Statistical shift with corr = 1 is fully correlated and can be fitted as
// a nuisance parameter instead of a covariance.
//
// Errors: ErrInvalidSource, ErrNaNInf (non-finite shift or corr outside [0,1]).
func NewShift(name string, shifts []float64, corr float64, mode Mode) (*Source, error) {
	if err := checkHeader(name, mode); err != nil {
		return nil, fmt.Errorf("NewShift: %w", err)
	}
	cov, err := matrix.Shift(shifts, corr)
	if err != nil {
		return nil, fmt.Errorf("NewShift(%q): %w", name, err)
	}
	cp := make([]float64, len(shifts))
	copy(cp, shifts)

	return &Source{name: name, scope: ScopeData, kind: KindShift, mode: mode, cov: cov, shifts: cp, corr: corr}, nil
}

// NewTemplateDiagonal registers the statistical variances of the template
// simulated at reference. Every variance is raised to at least floor.
// Template-indexed sources are always Statistical.
//
// Errors: ErrInvalidSource, ErrNaNInf, ErrNegativeVariance.
func NewTemplateDiagonal(name string, reference float64, variances []float64, floor float64) (*Source, error) {
	if err := checkHeader(name, Statistical); err != nil {
		return nil, fmt.Errorf("NewTemplateDiagonal: %w", err)
	}
	if math.IsNaN(reference) || math.IsInf(reference, 0) || math.IsNaN(floor) || math.IsInf(floor, 0) {
		return nil, fmt.Errorf("NewTemplateDiagonal(%q): reference %v floor %v: %w", name, reference, floor, ErrNaNInf)
	}
	floored := make([]float64, len(variances))
	for i, v := range variances {
		floored[i] = math.Max(v, floor)
	}
	cov, err := diagonal(floored)
	if err != nil {
		return nil, fmt.Errorf("NewTemplateDiagonal(%q, %v): %w", name, reference, err)
	}

	return &Source{name: name, scope: ScopeTemplate, kind: KindTemplateDiagonal, mode: Statistical, cov: cov, reference: reference}, nil
}

func checkHeader(name string, mode Mode) error {
	if name == "" {
		return fmt.Errorf("empty name: %w", ErrInvalidSource)
	}
	if !mode.valid() {
		return fmt.Errorf("%q: unknown mode %d: %w", name, int(mode), ErrInvalidSource)
	}

	return nil
}

// diagonal validates variances (non-empty, finite, ≥ 0) and returns diag(v).
func diagonal(v []float64) (*mat.SymDense, error) {
	cov, err := matrix.Diagonal(v)
	if err != nil {
		return nil, err
	}
	for i, x := range v {
		if x < 0 {
			return nil, fmt.Errorf("bin %d variance %v: %w", i, x, ErrNegativeVariance)
		}
	}

	return cov, nil
}

// Name returns the source name.
func (s *Source) Name() string { return s.name }

// Scope returns ScopeData or ScopeTemplate.
func (s *Source) Scope() Scope { return s.scope }

// Kind returns the payload representation.
func (s *Source) Kind() Kind { return s.kind }

// Mode returns the statistical treatment.
func (s *Source) Mode() Mode { return s.mode }

// Bins returns the number of bins N the source covers.
func (s *Source) Bins() int { return s.cov.SymmetricDim() }

// Reference returns the template reference value of a template-indexed source.
func (s *Source) Reference() float64 { return s.reference }

// Correlation returns the bin-to-bin correlation of a KindShift source.
func (s *Source) Correlation() float64 { return s.corr }

// Shifts returns a copy of the shift vector of a KindShift source (nil otherwise).
func (s *Source) Shifts() []float64 {
	if s.shifts == nil {
		return nil
	}
	out := make([]float64, len(s.shifts))
	copy(out, s.shifts)

	return out
}

// FullyCorrelated reports whether the source is a Statistical shift with
// correlation 1, i.e. eligible to become a nuisance parameter.
func (s *Source) FullyCorrelated() bool {
	return s.kind == KindShift && s.mode == Statistical && s.corr == 1
}

// Covariance returns a copy of the full N×N covariance of the source.
func (s *Source) Covariance() *mat.SymDense {
	out := mat.NewSymDense(s.cov.SymmetricDim(), nil)
	out.CopySym(s.cov)

	return out
}

// String renders a short description such as "statY[template@172.5 template-diagonal statistical]".
func (s *Source) String() string {
	if s.scope == ScopeTemplate {
		return fmt.Sprintf("%s[%s@%g %s %s]", s.name, s.scope, s.reference, s.kind, s.mode)
	}

	return fmt.Sprintf("%s[%s %s %s]", s.name, s.scope, s.kind, s.mode)
}

// SPDX-License-Identifier: MIT

package templates_test

import (
	"testing"

	"github.com/katalvlaran/litefit/templates"
)

// benchmarkInterpolate evaluates an M-template, 64-bin basis b.N times.
func benchmarkInterpolate(b *testing.B, s templates.Strategy, m int) {
	set := templates.NewSet()
	for j := 0; j < m; j++ {
		v := make([]float64, 64)
		for i := range v {
			v[i] = float64(i*j + 1)
		}
		if err := set.Add(170+float64(j), v); err != nil {
			b.Fatalf("Add: %v", err)
		}
	}
	basis, err := templates.NewBasis(set, templates.WithStrategy(s))
	if err != nil {
		b.Fatalf("NewBasis: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err = basis.Interpolate(170.5); err != nil {
			b.Fatalf("Interpolate: %v", err)
		}
	}
}

func BenchmarkInterpolate_Regression5(b *testing.B) { benchmarkInterpolate(b, templates.Regression, 5) }
func BenchmarkInterpolate_Piecewise5(b *testing.B)  { benchmarkInterpolate(b, templates.PiecewiseLinear, 5) }
func BenchmarkInterpolate_Quadratic9(b *testing.B)  { benchmarkInterpolate(b, templates.Quadratic, 9) }

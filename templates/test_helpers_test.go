// SPDX-License-Identifier: MIT
// Package templates_test contains test helpers.

package templates_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/litefit/templates"
)

// refs are the reference masses of the top-quark analysis templates.
var refs = []float64{169.5, 171.5, 172.5, 173.5, 175.5}

func nan() float64 { return math.NaN() }

// truth returns a + b·m + c·m² per bin for three fixed bins.
func truth(m, c float64) []float64 {
	a := []float64{120, 80, 40}
	b := []float64{-0.5, 0.1, 0.4}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]*m + c*m*m
	}

	return out
}

// newSet registers truth(ref, c) for every reference value.
func newSet(t testing.TB, c float64) *templates.Set {
	t.Helper()
	s := templates.NewSet()
	for _, r := range refs {
		require.NoError(t, s.Add(r, truth(r, c)))
	}

	return s
}

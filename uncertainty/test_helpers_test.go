// SPDX-License-Identifier: MIT
// Package uncertainty_test contains test helpers.

package uncertainty_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/litefit/uncertainty"
)

func mustDiagonal(t testing.TB, name string, v []float64) *uncertainty.Source {
	t.Helper()
	src, err := uncertainty.NewDiagonal(name, v, uncertainty.Statistical)
	require.NoError(t, err)

	return src
}

func mustTemplate(t testing.TB, name string, ref float64, v []float64) *uncertainty.Source {
	t.Helper()
	src, err := uncertainty.NewTemplateDiagonal(name, ref, v, 0)
	require.NoError(t, err)

	return src
}

func mustMatrix(t testing.TB, name string, rows [][]float64, mode uncertainty.Mode) *uncertainty.Source {
	t.Helper()
	src, err := uncertainty.NewMatrix(name, rows, mode)
	require.NoError(t, err)

	return src
}

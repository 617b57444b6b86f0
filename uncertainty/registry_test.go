// SPDX-License-Identifier: MIT

package uncertainty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/litefit/uncertainty"
)

func TestRegistryAdd(t *testing.T) {
	t.Parallel()
	reg := uncertainty.NewRegistry()
	require.NoError(t, reg.Add(mustDiagonal(t, "stat", []float64{1, 1, 1})))
	require.NoError(t, reg.Add(mustTemplate(t, "statY", 171.5, []float64{1, 1, 1})))
	require.NoError(t, reg.Add(mustTemplate(t, "statY", 173.5, []float64{1, 1, 1})))

	tests := []struct {
		name    string
		src     *uncertainty.Source
		wantErr error
	}{
		{name: "nil", src: nil, wantErr: uncertainty.ErrInvalidSource},
		{name: "duplicate data name", src: mustDiagonal(t, "stat", []float64{2, 2, 2}), wantErr: uncertainty.ErrDuplicateSource},
		{name: "duplicate template reference", src: mustTemplate(t, "statY", 173.5, []float64{1, 1, 1}), wantErr: uncertainty.ErrDuplicateSource},
		{name: "name used by other scope", src: mustDiagonal(t, "statY", []float64{1, 1, 1}), wantErr: uncertainty.ErrDuplicateSource},
		{name: "bin count", src: mustDiagonal(t, "exp", []float64{1, 1}), wantErr: uncertainty.ErrDimensionMismatch},
		{name: "new name", src: mustDiagonal(t, "exp", []float64{1, 1, 1})},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := reg.Clone()
			err := c.Add(tc.src)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, 3, c.Len())

				return
			}
			require.NoError(t, err)
			assert.Equal(t, 4, c.Len())
		})
	}

	assert.Equal(t, []string{"stat", "statY"}, reg.Names())
	assert.True(t, reg.Has("statY"))
	assert.Equal(t, 3, reg.Bins())
}

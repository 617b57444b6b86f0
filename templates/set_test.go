// SPDX-License-Identifier: MIT

package templates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/litefit/templates"
)

func TestSetAdd(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		ref     float64
		values  []float64
		wantErr error
	}{
		{name: "valid", ref: 174, values: []float64{1, 2, 3}},
		{name: "duplicate reference", ref: 172.5, values: []float64{1, 2, 3}, wantErr: templates.ErrDuplicateReference},
		{name: "short", ref: 174, values: []float64{1, 2}, wantErr: templates.ErrDimensionMismatch},
		{name: "empty", ref: 174, values: nil, wantErr: templates.ErrDimensionMismatch},
		{name: "nan value", ref: 174, values: []float64{1, nan(), 3}, wantErr: templates.ErrNaNInf},
		{name: "nan reference", ref: nan(), values: []float64{1, 2, 3}, wantErr: templates.ErrNaNInf},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newSet(t, 0)
			err := s.Add(tc.ref, tc.values)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, len(refs), s.Len())

				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(refs)+1, s.Len())
			assert.True(t, s.Has(tc.ref))
		})
	}
}

func TestSetCopiesAndOrders(t *testing.T) {
	t.Parallel()
	s := templates.NewSet()
	in := []float64{1, 2}
	require.NoError(t, s.Add(3, in))
	require.NoError(t, s.Add(1, []float64{5, 6}))
	in[0] = 100

	got := s.Templates()
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].Reference)
	assert.Equal(t, 3.0, got[1].Reference)
	assert.Equal(t, []float64{1, 2}, got[1].Values)

	got[1].Values[0] = -1
	assert.Equal(t, 1.0, s.Templates()[1].Values[0])

	c := s.Clone()
	require.NoError(t, c.Add(2, []float64{0, 0}))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 2, c.Bins())
}

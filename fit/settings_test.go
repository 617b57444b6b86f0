// SPDX-License-Identifier: MIT

package fit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/litefit/fit"
)

const settingsTOML = `
strategy = "piecewise"
gamma = 1.0
nuisance_parameters = true

[range]
first = 2
last = 5

[refine]
method = "taylor"
max_iterations = 3
`

func TestParseSettings(t *testing.T) {
	t.Parallel()
	s, err := fit.ParseSettings([]byte(settingsTOML))
	require.NoError(t, err)
	require.NotNil(t, s.Strategy)
	assert.Equal(t, "piecewise", *s.Strategy)
	assert.Nil(t, s.ConditionLimit)
	assert.True(t, s.Nuisance)
	require.NotNil(t, s.Range)
	assert.Equal(t, fit.Range{First: 2, Last: 5}, *s.Range)
	require.NotNil(t, s.Refine.Method)
	assert.Equal(t, "taylor", *s.Refine.Method)

	cfg, err := s.NewConfiguration()
	require.NoError(t, err)
	for _, r := range refs {
		require.NoError(t, cfg.AddTemplate(r, linear(r)))
	}
	require.NoError(t, cfg.SetData(linear(172.2)))
	require.NoError(t, cfg.AddError("stat", statRows()))

	frozen, res := solve(t, cfg)
	assert.Equal(t, fit.Range{First: 2, Last: 5}, frozen.Range())
	assert.Equal(t, "piecewise", res.Strategy)
	assert.InDelta(t, 172.2, res.Estimate, 1e-9)

	ropts, err := s.RefineOptions()
	require.NoError(t, err)
	refined, err := frozen.Refine(res, ropts...)
	require.NoError(t, err)
	assert.Equal(t, "taylor", refined.Method)
}

func TestParseSettingsErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown key", doc: "stratgey = \"regression\"\n"},
		{name: "unknown strategy", doc: "strategy = \"cubic\"\n"},
		{name: "negative gamma", doc: "gamma = -2.0\n"},
		{name: "reversed range", doc: "[range]\nfirst = 4\nlast = 2\n"},
		{name: "unknown method", doc: "[refine]\nmethod = \"bisect\"\n"},
		{name: "bad points", doc: "[refine]\npoints = 4\n"},
		{name: "malformed", doc: "strategy = \n"},
		{name: "explicit zero gamma", doc: "gamma = 0.0\n"},
		{name: "empty strategy", doc: "strategy = \"\"\n"},
		{name: "explicit zero condition limit", doc: "condition_limit = 0.0\n"},
		{name: "explicit zero step", doc: "[refine]\nstep = 0.0\n"},
		{name: "explicit zero tolerance", doc: "[refine]\ntolerance = 0.0\n"},
		{name: "explicit zero iterations", doc: "[refine]\nmax_iterations = 0\n"},
		{name: "explicit zero points", doc: "[refine]\npoints = 0\n"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := fit.ParseSettings([]byte(tc.doc))
			assert.ErrorIs(t, err, fit.ErrOptionViolation)
		})
	}
}

func TestEmptySettingsUseDefaults(t *testing.T) {
	t.Parallel()
	s, err := fit.ParseSettings(nil)
	require.NoError(t, err)
	assert.Nil(t, s.Gamma)
	assert.Nil(t, s.Refine.Step)

	ropts, err := s.RefineOptions()
	require.NoError(t, err)
	assert.Empty(t, ropts)
	opts, err := s.Options()
	require.NoError(t, err)
	assert.Len(t, opts, 3)
}

func TestSettingsRoundTrip(t *testing.T) {
	t.Parallel()
	in, err := fit.ParseSettings([]byte(settingsTOML))
	require.NoError(t, err)

	data, err := in.Marshal()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "fit.toml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	out, err := fit.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = fit.LoadSettings(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

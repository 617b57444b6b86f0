// SPDX-License-Identifier: MIT

package fit

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/katalvlaran/litefit/templates"
)

// Settings is the declarative form of the fit and refinement options,
// loaded from TOML:
//
//	strategy = "regression"
//	gamma = 1.0
//	extrapolate = false
//	nuisance_parameters = false
//	log_normal = false
//
//	[range]
//	first = 1
//	last = 4
//
//	[refine]
//	method = "newton"
//	max_iterations = 6
//	step = 0.6
//	points = 2
//
// Absent keys fall back to the defaults of the corresponding options; a key
// that is present is validated as written, so gamma = 0.0 is an error.
type Settings struct {
	Strategy       *string        `toml:"strategy,omitempty"`
	Gamma          *float64       `toml:"gamma,omitempty"`
	Extrapolate    bool           `toml:"extrapolate"`
	Nuisance       bool           `toml:"nuisance_parameters"`
	LogNormal      bool           `toml:"log_normal"`
	ConditionLimit *float64       `toml:"condition_limit,omitempty"`
	Range          *Range         `toml:"range,omitempty"`
	Refine         RefineSettings `toml:"refine"`
}

// RefineSettings is the [refine] table.
type RefineSettings struct {
	Method        *string  `toml:"method,omitempty"`
	MaxIterations *int     `toml:"max_iterations,omitempty"`
	Tolerance     *float64 `toml:"tolerance,omitempty"`
	Step          *float64 `toml:"step,omitempty"`
	Points        *int     `toml:"points,omitempty"`
}

// ParseSettings decodes TOML settings. Unknown keys are rejected and the
// values are validated; both failures wrap ErrOptionViolation.
func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("ParseSettings: %w: %w", ErrOptionViolation, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("ParseSettings: %w", err)
	}

	return &s, nil
}

// LoadSettings reads and parses a TOML settings file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadSettings: %w", err)
	}

	return ParseSettings(data)
}

// Validate applies every option to a scratch configuration and reports the
// first violation.
func (s *Settings) Validate() error {
	opts, err := s.Options()
	if err != nil {
		return err
	}
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.err != nil {
		return o.err
	}
	if s.Range != nil {
		if err = s.Range.validate(s.Range.Last); err != nil {
			return fmt.Errorf("%w: %w", ErrOptionViolation, err)
		}
	}

	ropts, err := s.RefineOptions()
	if err != nil {
		return err
	}
	ro := defaultRefineOptions()
	for _, fn := range ropts {
		fn(&ro)
	}

	return ro.err
}

// Options converts the settings into fit options.
func (s *Settings) Options() ([]Option, error) {
	var opts []Option
	if s.Strategy != nil {
		st, err := templates.ParseStrategy(*s.Strategy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithStrategy(st))
	}
	if s.Gamma != nil {
		opts = append(opts, WithGamma(*s.Gamma))
	}
	if s.ConditionLimit != nil {
		opts = append(opts, WithConditionLimit(*s.ConditionLimit))
	}

	return append(opts,
		WithExtrapolation(s.Extrapolate),
		WithNuisanceParameters(s.Nuisance),
		WithLogNormal(s.LogNormal),
	), nil
}

// RefineOptions converts the [refine] table into refinement options.
func (s *Settings) RefineOptions() ([]RefineOption, error) {
	var opts []RefineOption
	r := s.Refine
	if r.Method != nil {
		m, err := ParseMethod(*r.Method)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithMethod(m))
	}
	if r.MaxIterations != nil {
		opts = append(opts, WithMaxIterations(*r.MaxIterations))
	}
	if r.Tolerance != nil {
		opts = append(opts, WithTolerance(*r.Tolerance))
	}
	if r.Step != nil {
		opts = append(opts, WithStep(*r.Step))
	}
	if r.Points != nil {
		opts = append(opts, WithPoints(*r.Points))
	}

	return opts, nil
}

// NewConfiguration returns a Configuration built from the settings,
// including the fit range when one is set.
func (s *Settings) NewConfiguration(extra ...Option) (*Configuration, error) {
	opts, err := s.Options()
	if err != nil {
		return nil, err
	}
	c := NewConfiguration(append(opts, extra...)...)
	if s.Range != nil {
		if err = c.SetFitRange(s.Range.First, s.Range.Last); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Marshal encodes the settings as TOML.
func (s *Settings) Marshal() ([]byte, error) {
	return toml.Marshal(s)
}

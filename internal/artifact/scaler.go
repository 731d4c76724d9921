// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"fmt"
	"math"
	"slices"
)

// StandardScaler standardizes each column: (x - mean) / scale.
type StandardScaler struct {
	Features []string  `yaml:"feature_names"`
	Mean     []float64 `yaml:"mean,omitempty"`
	Scale    []float64 `yaml:"scale,omitempty"`

	// WithMean and WithStd default to true when absent.
	WithMean *bool `yaml:"with_mean,omitempty"`
	WithStd  *bool `yaml:"with_std,omitempty"`
}

func (s *StandardScaler) Kind() string { return KindStandard }

func (s *StandardScaler) FeatureNames() []string { return slices.Clone(s.Features) }

func (s *StandardScaler) centers() bool { return s.WithMean == nil || *s.WithMean }

func (s *StandardScaler) scales() bool { return s.WithStd == nil || *s.WithStd }

func (s *StandardScaler) validate() error {
	n := len(s.Features)
	if err := validateFeatureNames(s.Features); err != nil {
		return err
	}
	if s.centers() && len(s.Mean) != n {
		return fmt.Errorf("standard scaler has %d means for %d features", len(s.Mean), n)
	}
	if s.scales() && len(s.Scale) != n {
		return fmt.Errorf("standard scaler has %d scales for %d features", len(s.Scale), n)
	}
	if !finite(s.Mean) || !finite(s.Scale) {
		return fmt.Errorf("standard scaler parameters are not finite")
	}
	return nil
}

// Transform standardizes row. A zero scale leaves the centered value as is.
func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Features) {
		return nil, fmt.Errorf("row has %d values, scaler fit on %d", len(row), len(s.Features))
	}
	out := make([]float64, len(row))
	for j, x := range row {
		if s.centers() {
			x -= s.Mean[j]
		}
		if s.scales() && s.Scale[j] != 0 {
			x /= s.Scale[j]
		}
		out[j] = x
	}
	return out, nil
}

// MinMaxScaler maps each column linearly: x * scale + min.
type MinMaxScaler struct {
	Features []string  `yaml:"feature_names"`
	Min      []float64 `yaml:"min"`
	Scale    []float64 `yaml:"scale"`
}

func (s *MinMaxScaler) Kind() string { return KindMinMax }

func (s *MinMaxScaler) FeatureNames() []string { return slices.Clone(s.Features) }

func (s *MinMaxScaler) validate() error {
	n := len(s.Features)
	if err := validateFeatureNames(s.Features); err != nil {
		return err
	}
	if len(s.Min) != n || len(s.Scale) != n {
		return fmt.Errorf("min_max scaler has %d mins and %d scales for %d features", len(s.Min), len(s.Scale), n)
	}
	if !finite(s.Min) || !finite(s.Scale) {
		return fmt.Errorf("min_max scaler parameters are not finite")
	}
	return nil
}

func (s *MinMaxScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Features) {
		return nil, fmt.Errorf("row has %d values, scaler fit on %d", len(row), len(s.Features))
	}
	out := make([]float64, len(row))
	for j, x := range row {
		out[j] = x*s.Scale[j] + s.Min[j]
	}
	return out, nil
}

func validateFeatureNames(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("scaler has no feature_names")
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return fmt.Errorf("scaler feature %q is duplicated", n)
		}
		seen[n] = true
	}
	return nil
}

// finite reports whether every value in v is a finite number.
func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"fmt"
	"math"
)

// LinearModel is a fitted multi-output linear regressor (ridge or ordinary
// least squares). Output k for row x is Intercepts[k] + Σ Coefficients[k][j]·x[j].
type LinearModel struct {
	Kind string `yaml:"kind"`

	// Outputs names each predicted value, e.g. "discharge_capacity".
	Outputs []string `yaml:"outputs,omitempty"`

	// Coefficients has one row per output and one column per input feature.
	Coefficients [][]float64 `yaml:"coefficients"`

	// Intercepts has one value per output. Empty means zero intercepts.
	Intercepts []float64 `yaml:"intercepts,omitempty"`
}

func (m *LinearModel) validate() error {
	if len(m.Coefficients) == 0 {
		return fmt.Errorf("model has no coefficients")
	}
	width := len(m.Coefficients[0])
	if width == 0 {
		return fmt.Errorf("model coefficient rows are empty")
	}
	for k, row := range m.Coefficients {
		if len(row) != width {
			return fmt.Errorf("coefficient row %d has %d values, want %d", k, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("coefficient [%d][%d] is not finite", k, j)
			}
		}
	}
	if len(m.Intercepts) != 0 && len(m.Intercepts) != len(m.Coefficients) {
		return fmt.Errorf("model has %d intercepts for %d outputs", len(m.Intercepts), len(m.Coefficients))
	}
	if len(m.Outputs) != 0 && len(m.Outputs) != len(m.Coefficients) {
		return fmt.Errorf("model names %d outputs but has %d coefficient rows", len(m.Outputs), len(m.Coefficients))
	}
	return nil
}

// InputWidth returns the number of features each input row must carry.
func (m *LinearModel) InputWidth() int {
	if len(m.Coefficients) == 0 {
		return 0
	}
	return len(m.Coefficients[0])
}

// OutputWidth returns the number of values predicted per row.
func (m *LinearModel) OutputWidth() int {
	return len(m.Coefficients)
}

// OutputNames returns the declared output names, or positional names when
// the bundle does not declare any.
func (m *LinearModel) OutputNames() []string {
	if len(m.Outputs) != 0 {
		return append([]string(nil), m.Outputs...)
	}
	names := make([]string, m.OutputWidth())
	for k := range names {
		names[k] = fmt.Sprintf("output_%d", k)
	}
	return names
}

// Predict returns one output row per input row.
func (m *LinearModel) Predict(rows [][]float64) ([][]float64, error) {
	width := m.InputWidth()
	out := make([][]float64, len(rows))
	for i, x := range rows {
		if len(x) != width {
			return nil, fmt.Errorf("row %d has %d features, model expects %d", i, len(x), width)
		}
		y := make([]float64, len(m.Coefficients))
		for k, coef := range m.Coefficients {
			var sum float64
			if len(m.Intercepts) != 0 {
				sum = m.Intercepts[k]
			}
			for j, c := range coef {
				sum += c * x[j]
			}
			y[k] = sum
		}
		out[i] = y
	}
	return out, nil
}

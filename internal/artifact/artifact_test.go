// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/taurus/pkg/types"
)

// --- test helpers ---

var testCategories = []string{"DS7", "DS8", "DS9", "OTC", "S5", "S6"}

func encoderDoc(categories ...string) string {
	return fmt.Sprintf("kind: one_hot\ncategories: [%s]\n", strings.Join(categories, ", "))
}

func scalerDoc(features []string) string {
	var b strings.Builder
	b.WriteString("kind: standard\nfeature_names:\n")
	for _, f := range features {
		fmt.Fprintf(&b, "  - %s\n", f)
	}
	b.WriteString("mean: [" + repeat("0", len(features)) + "]\n")
	b.WriteString("scale: [" + repeat("1", len(features)) + "]\n")
	return b.String()
}

func modelDoc(width, outputs int) string {
	var b strings.Builder
	b.WriteString("kind: ridge\ncoefficients:\n")
	for k := 0; k < outputs; k++ {
		b.WriteString("  - [" + repeat("0.5", width) + "]\n")
	}
	b.WriteString("intercepts: [" + repeat("1", outputs) + "]\n")
	return b.String()
}

func repeat(v string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = v
	}
	return strings.Join(parts, ", ")
}

func defaultColumns() []string {
	enc := &OneHotEncoder{Categories: testCategories}
	return ExpectedColumns(enc)
}

func writeBundle(t *testing.T, docs ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(docs, "---\n")), 0o644))
	return path
}

// --- Load ---

func TestLoadTestdataBundle(t *testing.T) {
	b, err := Load(filepath.Join("testdata", "bundle.yaml"))
	require.NoError(t, err)

	d := b.Describe()
	assert.Equal(t, KindRidge, d.ModelKind)
	assert.Equal(t, KindStandard, d.ScalerKind)
	assert.Equal(t, []string{"discharge_capacity", "initial_efficiency"}, d.Outputs)
	assert.Equal(t, testCategories, d.Categories)
	assert.Equal(t, 19, d.FeatureCount)
	assert.Equal(t, types.NumericFeatures, d.Features[:types.NumericFeatureCount])
	assert.Equal(t, "raw_material_DS7", d.Features[types.NumericFeatureCount])
}

func TestLoadBuildsWorkingBundle(t *testing.T) {
	cols := defaultColumns()
	path := writeBundle(t, modelDoc(len(cols), 2), encoderDoc(testCategories...), scalerDoc(cols))

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, b.Path)

	row := make([]float64, len(cols))
	row[0] = 2
	scaled, err := b.Scaler.Transform(row)
	require.NoError(t, err)
	out, err := b.Model.Predict([][]float64{scaled})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 2}}, out)
}

func TestLoadErrors(t *testing.T) {
	cols := defaultColumns()
	model := modelDoc(len(cols), 2)
	enc := encoderDoc(testCategories...)
	scaler := scalerDoc(cols)

	swapped := append([]string{}, cols...)
	swapped[0], swapped[1] = swapped[1], swapped[0]

	tests := []struct {
		name   string
		path   func(t *testing.T) string
		errMsg string
	}{
		{
			name:   "missing file",
			path:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			errMsg: "no such file",
		},
		{
			name:   "corrupt yaml",
			path:   func(t *testing.T) string { return writeBundle(t, "kind: [ridge\n") },
			errMsg: "parsing bundle",
		},
		{
			name:   "empty file",
			path:   func(t *testing.T) string { return writeBundle(t, "") },
			errMsg: "holds 0 documents",
		},
		{
			name:   "two documents",
			path:   func(t *testing.T) string { return writeBundle(t, model, enc) },
			errMsg: "holds 2 documents",
		},
		{
			name:   "four documents",
			path:   func(t *testing.T) string { return writeBundle(t, model, enc, scaler, scaler) },
			errMsg: "holds 4 documents",
		},
		{
			name:   "encoder in model slot",
			path:   func(t *testing.T) string { return writeBundle(t, enc, model, scaler) },
			errMsg: "is not a model",
		},
		{
			name:   "missing kind",
			path:   func(t *testing.T) string { return writeBundle(t, model, "categories: [S5]\n", scaler) },
			errMsg: "missing kind",
		},
		{
			name: "unknown scaler kind",
			path: func(t *testing.T) string {
				return writeBundle(t, model, enc, strings.Replace(scaler, "kind: standard", "kind: robust", 1))
			},
			errMsg: "is not a scaler",
		},
		{
			name:   "scaler fit on different column order",
			path:   func(t *testing.T) string { return writeBundle(t, model, enc, scalerDoc(swapped)) },
			errMsg: "scaler schema mismatch",
		},
		{
			name:   "scaler fit on fewer categories",
			path:   func(t *testing.T) string { return writeBundle(t, model, encoderDoc("S5", "S6"), scaler) },
			errMsg: "scaler schema mismatch",
		},
		{
			name:   "model width disagrees with scaler",
			path:   func(t *testing.T) string { return writeBundle(t, modelDoc(len(cols)-1, 2), enc, scaler) },
			errMsg: "model expects 18 features, scaler produces 19",
		},
		{
			name:   "model with one output",
			path:   func(t *testing.T) string { return writeBundle(t, modelDoc(len(cols), 1), enc, scaler) },
			errMsg: "predicts 1 outputs, want 2",
		},
		{
			name: "ragged coefficients",
			path: func(t *testing.T) string {
				return writeBundle(t, "kind: ridge\ncoefficients:\n  - [1, 2]\n  - [1]\n", enc, scaler)
			},
			errMsg: "coefficient row 1 has 1 values",
		},
		{
			name:   "duplicated category",
			path:   func(t *testing.T) string { return writeBundle(t, model, encoderDoc("S5", "S5"), scaler) },
			errMsg: "duplicated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Load(tt.path(t))
			require.Error(t, err)
			assert.Nil(t, b)
			assert.True(t, IsLoadError(err), "want *LoadError, got %T", err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

// --- OneHotEncoder ---

func TestOneHotEncoderTransform(t *testing.T) {
	enc := &OneHotEncoder{Categories: testCategories}
	require.NoError(t, enc.validate())

	for i, c := range testCategories {
		got, err := enc.Transform(c)
		require.NoError(t, err, c)
		require.Len(t, got, len(testCategories))
		for j, v := range got {
			if j == i {
				assert.Equal(t, 1.0, v, c)
			} else {
				assert.Equal(t, 0.0, v, c)
			}
		}
	}

	assert.Equal(t,
		[]string{"raw_material_DS7", "raw_material_DS8", "raw_material_DS9", "raw_material_OTC", "raw_material_S5", "raw_material_S6"},
		enc.FeatureNames("raw_material"))
}

func TestOneHotEncoderUnknownCategory(t *testing.T) {
	enc := &OneHotEncoder{Categories: testCategories}
	got, err := enc.Transform("X9")
	require.ErrorIs(t, err, ErrUnknownCategory)
	assert.Nil(t, got)
}

func TestOneHotEncoderDropFirst(t *testing.T) {
	enc := &OneHotEncoder{Categories: []string{"A", "B", "C"}, Drop: DropFirst}
	require.NoError(t, enc.validate())

	assert.Equal(t, []string{"p_B", "p_C"}, enc.FeatureNames("p"))

	got, err := enc.Transform("A")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, got)

	got, err = enc.Transform("C")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, got)
}

// --- scalers ---

func TestStandardScalerTransform(t *testing.T) {
	s := &StandardScaler{
		Features: []string{"a", "b", "c"},
		Mean:     []float64{1, 10, 5},
		Scale:    []float64{2, 5, 0},
	}
	require.NoError(t, s.validate())

	got, err := s.Transform([]float64{3, 0, 7})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2, 2}, got)

	_, err = s.Transform([]float64{1, 2})
	assert.ErrorContains(t, err, "row has 2 values, scaler fit on 3")
}

func TestStandardScalerWithoutMean(t *testing.T) {
	off := false
	s := &StandardScaler{
		Features: []string{"a", "b"},
		Scale:    []float64{2, 4},
		WithMean: &off,
	}
	require.NoError(t, s.validate())

	got, err := s.Transform([]float64{3, 8})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2}, got)
}

func TestMinMaxScalerTransform(t *testing.T) {
	s := &MinMaxScaler{
		Features: []string{"a", "b"},
		Min:      []float64{-0.5, 0},
		Scale:    []float64{0.25, 0.1},
	}
	require.NoError(t, s.validate())

	got, err := s.Transform([]float64{2, 10})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, got)
	assert.Equal(t, KindMinMax, s.Kind())
}

// --- LinearModel ---

func TestLinearModelPredict(t *testing.T) {
	m := &LinearModel{
		Kind:         KindLinear,
		Coefficients: [][]float64{{1, 2}, {-1, 0.5}},
		Intercepts:   []float64{10, 0},
	}
	require.NoError(t, m.validate())

	got, err := m.Predict([][]float64{{1, 1}, {2, 4}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{13, -0.5}, {20, 0}}, got)
	assert.Equal(t, []string{"output_0", "output_1"}, m.OutputNames())

	_, err = m.Predict([][]float64{{1, 2, 3}})
	assert.ErrorContains(t, err, "row 0 has 3 features, model expects 2")
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"math"
	"slices"

	"github.com/pdiddy/taurus/pkg/types"
)

// Assemble encodes category and builds the feature row: the thirteen numeric
// values followed by the encoded columns. The numeric count is checked before
// the encoder is consulted.
func (p *Pipeline) Assemble(category string, numeric []float64) (types.AssembledRow, error) {
	if len(numeric) != types.NumericFeatureCount {
		return types.AssembledRow{}, stageErr(StageAssemble, ErrSchemaMismatch,
			"got %d numeric values, want %d", len(numeric), types.NumericFeatureCount)
	}
	if _, err := types.ParseRawMaterial(category); err != nil {
		return types.AssembledRow{}, &StageError{Stage: StageAssemble, Kind: ErrEncoding, Err: err}
	}

	encoded, err := p.encoder.Transform(category)
	if err != nil {
		return types.AssembledRow{}, &StageError{Stage: StageAssemble, Kind: ErrEncoding, Err: err}
	}
	names := p.encoder.FeatureNames(types.RawMaterialColumn)
	if len(encoded) != len(names) {
		return types.AssembledRow{}, stageErr(StageAssemble, ErrSchemaMismatch,
			"encoder produced %d values for %d columns", len(encoded), len(names))
	}

	cols := make([]string, 0, len(types.NumericFeatures)+len(names))
	cols = append(cols, types.NumericFeatures...)
	cols = append(cols, names...)

	values := make([]float64, 0, len(cols))
	values = append(values, numeric...)
	values = append(values, encoded...)

	return types.AssembledRow{Columns: cols, Values: values}, nil
}

// Scale checks that row carries exactly the scaler's fit-time columns, in
// order, and applies the scaler.
func (p *Pipeline) Scale(row types.AssembledRow) (types.ScaledRow, error) {
	if len(row.Values) != len(row.Columns) {
		return nil, stageErr(StageScale, ErrSchemaMismatch,
			"row has %d values for %d columns", len(row.Values), len(row.Columns))
	}
	want := p.scaler.FeatureNames()
	if len(row.Columns) != len(want) {
		return nil, stageErr(StageScale, ErrSchemaMismatch,
			"row has %d columns, scaler fit on %d", len(row.Columns), len(want))
	}
	if i := firstDiff(row.Columns, want); i >= 0 {
		return nil, stageErr(StageScale, ErrSchemaMismatch,
			"column %d is %q, scaler fit on %q", i, row.Columns[i], want[i])
	}

	out, err := p.scaler.Transform(slices.Clone(row.Values))
	if err != nil {
		return nil, &StageError{Stage: StageScale, Kind: ErrSchemaMismatch, Err: err}
	}
	if len(out) != len(want) {
		return nil, stageErr(StageScale, ErrSchemaMismatch,
			"scaler returned %d values, want %d", len(out), len(want))
	}
	return types.ScaledRow(out), nil
}

// Infer runs the model on one scaled row. The model must return exactly one
// row of two finite values: capacity, then efficiency.
func (p *Pipeline) Infer(row types.ScaledRow) (types.PredictionResult, error) {
	out, err := p.model.Predict([][]float64{row})
	if err != nil {
		return types.PredictionResult{}, &StageError{Stage: StageInfer, Kind: ErrInference, Err: err}
	}
	if len(out) != 1 {
		return types.PredictionResult{}, stageErr(StageInfer, ErrInference,
			"model returned %d rows, want 1", len(out))
	}
	if len(out[0]) != 2 {
		return types.PredictionResult{}, stageErr(StageInfer, ErrInference,
			"model returned shape 1x%d, want 1x2", len(out[0]))
	}
	for i, v := range out[0] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.PredictionResult{}, stageErr(StageInfer, ErrInference,
				"model output %d is %v", i, v)
		}
	}
	return types.PredictionResult{Capacity: out[0][0], Efficiency: out[0][1]}, nil
}

func firstDiff(a, b []string) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}

// Labels shown on the result table.
const (
	LabelCapacity   = "방전 용량 (1V, 25℃)"
	LabelEfficiency = "초기 효율"
)

// Format renders result as the two-row result table.
func Format(result types.PredictionResult) []types.ResultRow {
	return []types.ResultRow{
		{Label: LabelCapacity, Value: fmt.Sprintf("%.2f mAh/g", result.Capacity)},
		{Label: LabelEfficiency, Value: fmt.Sprintf("%.2f %%", result.Efficiency)},
	}
}

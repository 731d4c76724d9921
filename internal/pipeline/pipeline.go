// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the inference preprocessing chain: encode the raw
// material, assemble the feature row, scale it, predict, and format the
// result. The trained artifacts are reached only through the Encoder, Scaler,
// and Model interfaces; the pipeline does not depend on how they are stored.
package pipeline

import (
	"context"
	"slices"

	"github.com/pdiddy/taurus/internal/logger"
	"github.com/pdiddy/taurus/pkg/types"
)

// Encoder maps a categorical value to its encoded columns.
type Encoder interface {
	// Transform encodes category. It fails for values outside the fitted
	// vocabulary.
	Transform(category string) ([]float64, error)

	// FeatureNames returns the encoded column names for the given input
	// column prefix, in output order.
	FeatureNames(prefix string) []string
}

// Scaler applies a fitted transform to a full feature row.
type Scaler interface {
	// FeatureNames returns the fit-time column names in order.
	FeatureNames() []string

	// Transform scales one row.
	Transform(row []float64) ([]float64, error)
}

// Model predicts output rows from scaled feature rows.
type Model interface {
	Predict(rows [][]float64) ([][]float64, error)
}

// Pipeline composes the stages over one set of trained artifacts. It holds
// no mutable state and is safe for concurrent use.
type Pipeline struct {
	encoder Encoder
	scaler  Scaler
	model   Model
	columns []string
}

// New builds a pipeline and checks that the scaler was fit on the row the
// assembler will build.
func New(model Model, encoder Encoder, scaler Scaler) (*Pipeline, error) {
	p := &Pipeline{encoder: encoder, scaler: scaler, model: model}
	p.columns = append(slices.Clone(types.NumericFeatures), encoder.FeatureNames(types.RawMaterialColumn)...)
	if want := scaler.FeatureNames(); !slices.Equal(p.columns, want) {
		return nil, stageErr(StageScale, ErrSchemaMismatch,
			"scaler fit on %v, assembler builds %v", want, p.columns)
	}
	return p, nil
}

// Schema describes the inputs and the feature row the pipeline expects.
func (p *Pipeline) Schema() types.FeatureSchema {
	materials := types.RawMaterials()
	names := make([]string, len(materials))
	for i, m := range materials {
		names[i] = string(m)
	}
	return types.FeatureSchema{
		RawMaterials:    names,
		NumericFeatures: slices.Clone(types.NumericFeatures),
		Columns:         slices.Clone(p.columns),
	}
}

// Predict runs assemble, scale, and infer for one request.
func (p *Pipeline) Predict(ctx context.Context, category string, numeric []float64) (types.PredictionResult, error) {
	log := logger.C(ctx)

	row, err := p.Assemble(category, numeric)
	if err != nil {
		log.Debug().Err(err).Str("raw_material", category).Msg("assemble failed")
		return types.PredictionResult{}, err
	}
	scaled, err := p.Scale(row)
	if err != nil {
		log.Debug().Err(err).Msg("scale failed")
		return types.PredictionResult{}, err
	}
	result, err := p.Infer(scaled)
	if err != nil {
		log.Debug().Err(err).Msg("infer failed")
		return types.PredictionResult{}, err
	}

	log.Debug().
		Str("raw_material", category).
		Float64("capacity", result.Capacity).
		Float64("efficiency", result.Efficiency).
		Msg("prediction done")
	return result, nil
}

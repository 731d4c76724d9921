// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the taurus prediction
// dashboard: the raw-material vocabulary, the process-parameter schema, the
// rows that flow through the inference pipeline, and stage configuration.
package types

import "fmt"

// RawMaterial is the raw-material code selected on the prediction page.
type RawMaterial string

const (
	MaterialS5  RawMaterial = "S5"
	MaterialS6  RawMaterial = "S6"
	MaterialDS7 RawMaterial = "DS7"
	MaterialDS8 RawMaterial = "DS8"
	MaterialDS9 RawMaterial = "DS9"
	MaterialOTC RawMaterial = "OTC"
)

// RawMaterials returns the selectable codes in display order.
func RawMaterials() []RawMaterial {
	return []RawMaterial{MaterialS5, MaterialS6, MaterialDS7, MaterialDS8, MaterialDS9, MaterialOTC}
}

// ParseRawMaterial returns the RawMaterial for s, or an error when s is not
// one of the six known codes. Matching is exact.
func ParseRawMaterial(s string) (RawMaterial, error) {
	for _, m := range RawMaterials() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown raw material %q", s)
}

// RawMaterialColumn is the source column name of the categorical feature. The
// encoder derives its output column names from it (e.g. "raw_material_S5").
const RawMaterialColumn = "raw_material"

// NumericFeatures lists the thirteen process parameters in model column order.
// The order is part of the trained schema and must not change.
var NumericFeatures = []string{
	"RM_PSA_D50",
	"PS_Temp",
	"PS_Ratio",
	"p-Si_pore_volume",
	"p-Si_pore_size",
	"p-Si_domain_size",
	"p-Si_Oxygen",
	"C_condition",
	"Carbon",
	"c-Oxygen",
	"c-Si_domain_size",
	"c-Surface_area",
	"FCETemp",
}

// NumericFeatureCount is len(NumericFeatures).
const NumericFeatureCount = 13

// FeatureVector holds process-parameter values keyed by feature name.
// Any real value is accepted; no physical range is enforced.
type FeatureVector map[string]float64

// Values returns the thirteen values in NumericFeatures order. Unset fields
// are 0.
func (v FeatureVector) Values() []float64 {
	out := make([]float64, len(NumericFeatures))
	for i, name := range NumericFeatures {
		out[i] = v[name]
	}
	return out
}

// Unknown returns the keys of v that are not numeric feature names.
func (v FeatureVector) Unknown() []string {
	known := make(map[string]bool, len(NumericFeatures))
	for _, name := range NumericFeatures {
		known[name] = true
	}
	var unknown []string
	for k := range v {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	return unknown
}

// AssembledRow is a single named feature row: the numeric features followed
// by the encoded raw-material columns.
type AssembledRow struct {
	Columns []string  `json:"columns" yaml:"columns"`
	Values  []float64 `json:"values" yaml:"values"`
}

// ScaledRow is the scaler output. Column identity is positional and matches
// the AssembledRow it was produced from.
type ScaledRow []float64

// PredictionResult holds the two model outputs for one request.
type PredictionResult struct {
	// Capacity is the predicted discharge capacity (1V, 25℃) in mAh/g.
	Capacity float64 `json:"capacity" yaml:"capacity"`

	// Efficiency is the predicted initial efficiency in percent.
	Efficiency float64 `json:"efficiency" yaml:"efficiency"`
}

// ResultRow is one labeled, unit-annotated line of the result table.
type ResultRow struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// FeatureSchema describes what the loaded bundle expects. It backs the input
// form and the bundle inspect command.
type FeatureSchema struct {
	RawMaterials    []string `json:"raw_materials" yaml:"raw_materials"`
	NumericFeatures []string `json:"numeric_features" yaml:"numeric_features"`
	Columns         []string `json:"columns" yaml:"columns"`
}

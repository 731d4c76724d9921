// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Sample is one row of the analysis dataset. Values holds every numeric
// column; a nil entry means the cell was empty in the source file.
type Sample struct {
	RawMaterial string              `json:"raw_material" yaml:"raw_material"`
	Values      map[string]*float64 `json:"values" yaml:"values"`
}

// MaterialCount is one slice of the raw-material composition chart.
type MaterialCount struct {
	RawMaterial string `json:"raw_material" yaml:"raw_material"`
	Count       int    `json:"count" yaml:"count"`
}

// BoxGroup holds the values of one category on the box plot.
type BoxGroup struct {
	Key    string    `json:"key" yaml:"key"`
	Values []float64 `json:"values" yaml:"values"`
}

// BoxSeries is the grouped distribution of one result column.
type BoxSeries struct {
	X      string     `json:"x" yaml:"x"`
	Y      string     `json:"y" yaml:"y"`
	Groups []BoxGroup `json:"groups" yaml:"groups"`

	// Range is the y-axis range: [min*0.95, max*1.05].
	Range [2]float64 `json:"range" yaml:"range"`
}

// ScatterSeries holds point tuples for the 2D and 3D scatter charts. Each
// point has one coordinate per entry in Columns.
type ScatterSeries struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Points  [][]float64 `json:"points" yaml:"points"`
}

// BoxGroupColumns are the columns the box plot may group by.
var BoxGroupColumns = []string{RawMaterialColumn, "PS_Temp", "C_condition"}

// ResultColumns are the columns the box plot may show on its y axis.
var ResultColumns = []string{"Carbon", "LiCap", "DeliCap", "FCE"}

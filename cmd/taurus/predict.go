// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/taurus/internal/pipeline"
	"github.com/pdiddy/taurus/pkg/types"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict capacity and efficiency for one input",
	Long: `Predict runs one prediction against the artifact bundle and prints the
two-row result table. Every process parameter has its own flag named after
the model column; unset parameters are 0.

Example:
  taurus predict --raw-material S5 --RM_PSA_D50 12.4 --PS_Temp 600`,
	RunE: runPredict,
}

type predictOutput struct {
	RawMaterial string                 `json:"raw_material"`
	Features    types.FeatureVector    `json:"features"`
	Result      types.PredictionResult `json:"result"`
	Rows        []types.ResultRow      `json:"rows"`
}

func runPredict(cmd *cobra.Command, args []string) error {
	material, _ := cmd.Flags().GetString("raw-material")
	features := make(types.FeatureVector, types.NumericFeatureCount)
	for _, name := range types.NumericFeatures {
		v, err := cmd.Flags().GetFloat64(name)
		if err != nil {
			return err
		}
		features[name] = v
	}

	_, p, err := loadPipeline(appConfig.Artifacts.BundlePath)
	if err != nil {
		return err
	}

	result, err := p.Predict(context.Background(), material, features.Values())
	if err != nil {
		fmt.Fprintln(os.Stderr, pipeline.UserMessage(err))
		return err
	}

	out := predictOutput{
		RawMaterial: material,
		Features:    features,
		Result:      result,
		Rows:        pipeline.Format(result),
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return writePrediction(os.Stdout, out, jsonOutput)
}

func writePrediction(w io.Writer, out predictOutput, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "원재료: %s\n\n", out.RawMaterial)
	fmt.Fprintf(w, "%-20s  %s\n", "항목", "예측값")
	for _, r := range out.Rows {
		fmt.Fprintf(w, "%-20s  %s\n", r.Label, r.Value)
	}
	return nil
}

func init() {
	predictCmd.Flags().String("raw-material", "", "raw material code: S5, S6, DS7, DS8, DS9, OTC")
	_ = predictCmd.MarkFlagRequired("raw-material")
	for _, name := range types.NumericFeatures {
		predictCmd.Flags().Float64(name, 0, "process parameter "+name)
	}
	predictCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(predictCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/taurus/internal/artifact"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Inspect the trained artifact bundle",
}

var bundleInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load and validate the bundle, then print its description",
	Long: `Inspect loads the bundle the same way serve does, including the schema
check between encoder, scaler, and model, and prints the model kind, output
names, encoder categories, and the fit-time feature order.`,
	RunE: runBundleInspect,
}

func runBundleInspect(cmd *cobra.Command, args []string) error {
	b, _, err := loadPipeline(appConfig.Artifacts.BundlePath)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return writeDescription(os.Stdout, b.Describe(), jsonOutput)
}

func writeDescription(w io.Writer, d artifact.Description, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	bundleInspectCmd.Flags().Bool("json", false, "output as JSON instead of YAML")

	bundleCmd.AddCommand(bundleInspectCmd)
	rootCmd.AddCommand(bundleCmd)
}

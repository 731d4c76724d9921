// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/taurus/internal/dataset"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage the analysis dataset (ingest, export)",
	Long: `Dataset manages the local SQLite copy of the sample CSV that backs the
data analysis page.`,
}

var datasetIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the sample CSV into the dataset store",
	Long: `Ingest reads the CSV, drops the Sample ID column, and replaces the stored
dataset. An unchanged file is skipped on subsequent runs.`,
	RunE: runDatasetIngest,
}

func runDatasetIngest(cmd *cobra.Command, args []string) error {
	store, err := dataset.NewStore(appConfig.Dataset)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Ingest(context.Background(), appConfig.Dataset.CSVPath, os.Stdout)
	return err
}

var datasetExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the dataset to YAML or JSON",
	Long: `Export writes every stored sample to export.yaml or export.json in the
data directory.`,
	RunE: runDatasetExport,
}

func runDatasetExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := dataset.NewStore(appConfig.Dataset)
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background())
	case "json":
		path, err = store.ExportJSON(context.Background())
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

func init() {
	datasetCmd.PersistentFlags().String("csv", "", "sample CSV path (default data/taurus.csv)")
	datasetCmd.PersistentFlags().String("data-dir", "", "directory for the database and exports (default data)")
	_ = viper.BindPFlag("dataset.csv_path", datasetCmd.PersistentFlags().Lookup("csv"))
	_ = viper.BindPFlag("dataset.data_dir", datasetCmd.PersistentFlags().Lookup("data-dir"))

	datasetExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	datasetCmd.AddCommand(datasetIngestCmd)
	datasetCmd.AddCommand(datasetExportCmd)
	rootCmd.AddCommand(datasetCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/taurus/internal/dataset"
	"github.com/pdiddy/taurus/internal/logger"
	"github.com/pdiddy/taurus/internal/server"
	"github.com/pdiddy/taurus/internal/session"
	"github.com/pdiddy/taurus/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the password-gated prediction dashboard",
	Long: `Serve loads the artifact bundle, ingests the analysis dataset when its
CSV is present, and serves the dashboard API until interrupted.

The bundle must load and pass schema validation; otherwise serve exits before
accepting connections. A dashboard password must be configured through
TAURUS_AUTH_PASSWORD or .secrets/dashboard-password.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	log := logger.Named("serve")

	password, err := dashboardPassword(cfg, loadedSecrets)
	if err != nil {
		return err
	}

	bundle, p, err := loadPipeline(cfg.Artifacts.BundlePath)
	if err != nil {
		log.Error().Err(err).Msg("artifact load failed")
		return err
	}
	desc := bundle.Describe()
	log.Info().
		Str("bundle", desc.Path).
		Str("model", desc.ModelKind).
		Str("scaler", desc.ScalerKind).
		Int("features", desc.FeatureCount).
		Msg("artifacts loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := server.Deps{
		Config:    cfg.Server,
		Predictor: p,
		Sessions:  session.NewStore(password, cfg.Server.SessionTTL),
		Logger:    logger.Named("http"),
	}

	store, err := openDataset(ctx, cfg.Dataset)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		deps.Dataset = store
	}

	go deps.Sessions.SweepEvery(ctx, time.Minute)

	return server.New(deps).Run(ctx)
}

// openDataset opens the store and ingests the CSV. It returns nil without
// error when the CSV does not exist, leaving the analysis page unavailable.
func openDataset(ctx context.Context, cfg types.DatasetConfig) (*dataset.Store, error) {
	log := logger.Named("dataset")
	if _, err := os.Stat(cfg.CSVPath); errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("csv", cfg.CSVPath).Msg("dataset not found, analysis disabled")
		return nil, nil
	}

	store, err := dataset.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	summary, err := store.Ingest(ctx, cfg.CSVPath, io.Discard)
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Info().
		Str("csv", cfg.CSVPath).
		Int("rows", summary.Rows).
		Int("columns", summary.Columns).
		Bool("skipped", summary.Skipped).
		Msg("dataset ready")
	return store, nil
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8501)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

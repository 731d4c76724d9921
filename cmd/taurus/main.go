// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the taurus CLI: the prediction
// dashboard server and one-shot commands over the same artifacts and dataset.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/taurus/internal/artifact"
	"github.com/pdiddy/taurus/internal/logger"
	"github.com/pdiddy/taurus/internal/pipeline"
	"github.com/pdiddy/taurus/internal/secrets"
	"github.com/pdiddy/taurus/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// appConfig is the decoded configuration, filled before any command runs.
	appConfig types.Config

	// loadedSecrets holds values loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets
)

// configKeys are bound to TAURUS_* environment variables so they can be set
// without a config file, e.g. TAURUS_AUTH_PASSWORD or TAURUS_SERVER_ADDR.
var configKeys = []string{
	"artifacts.bundle_path",
	"dataset.csv_path",
	"dataset.data_dir",
	"server.addr",
	"server.allowed_origins",
	"server.read_header_timeout",
	"server.session_ttl",
	"server.secure_cookie",
	"log.level",
	"log.format",
	"auth.password",
	"auth.password_secret",
}

// rootCmd is the base command for the taurus CLI.
var rootCmd = &cobra.Command{
	Use:   "taurus",
	Short: "Anode material performance prediction dashboard",
	Long: `taurus predicts discharge capacity and initial efficiency of anode
materials from the raw material and thirteen process parameters, using a
trained model, encoder, and scaler bundle.

serve runs the password-gated dashboard API. predict runs one prediction from
the command line. bundle and dataset inspect the loaded artifacts and the
analysis dataset.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig(viper.GetViper())
		if err != nil {
			return err
		}
		appConfig = cfg
		logger.Init(logger.FromConfig(cfg.Log))

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Named("cli").Debug().Strs("keys", s.Keys()).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./taurus.yaml or ~/.config/taurus/taurus.yaml)")
	rootCmd.PersistentFlags().String("bundle", "", "artifact bundle path (default artifacts/bundle.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error, off")

	_ = viper.BindPFlag("artifacts.bundle_path", rootCmd.PersistentFlags().Lookup("bundle"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("taurus")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "taurus"))
		}
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("TAURUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range configKeys {
		_ = v.BindEnv(k)
	}
}

// readConfig decodes v into a Config and applies defaults.
func readConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg.WithDefaults(), nil
}

// dashboardPassword resolves the gate password from config or .secrets/.
func dashboardPassword(cfg types.Config, s secrets.Secrets) (string, error) {
	pw, err := s.Lookup(cfg.Auth.PasswordSecret, cfg.Auth.Password)
	if err != nil {
		return "", fmt.Errorf("dashboard password: %w (set TAURUS_AUTH_PASSWORD or .secrets/%s)", err, cfg.Auth.PasswordSecret)
	}
	return pw, nil
}

// loadPipeline loads the artifact bundle and composes the pipeline over it.
func loadPipeline(path string) (*artifact.Bundle, *pipeline.Pipeline, error) {
	b, err := artifact.Load(path)
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.New(b.Model, b.Encoder, b.Scaler)
	if err != nil {
		return nil, nil, &artifact.LoadError{Path: path, Err: err}
	}
	return b, p, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

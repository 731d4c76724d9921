package types

import "time"

// ArtifactConfig locates the trained artifact bundle.
type ArtifactConfig struct {
	// BundlePath is the YAML bundle holding model, encoder, and scaler
	// (default "artifacts/bundle.yaml").
	BundlePath string `json:"bundle_path" yaml:"bundle_path" mapstructure:"bundle_path"`
}

// DatasetConfig holds settings for the analysis dataset.
type DatasetConfig struct {
	// CSVPath is the sample dataset to ingest (default "data/taurus.csv").
	CSVPath string `json:"csv_path" yaml:"csv_path" mapstructure:"csv_path"`

	// DataDir holds the SQLite database and exports (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig holds HTTP dashboard settings.
type ServerConfig struct {
	// Addr is the listen address (default ":8501").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowedOrigins lists CORS origins for a separately hosted front end.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// ReadHeaderTimeout bounds request header reads (default 10s).
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" yaml:"read_header_timeout" mapstructure:"read_header_timeout"`

	// SessionTTL is the idle lifetime of a dashboard session (default 12h).
	SessionTTL time.Duration `json:"session_ttl" yaml:"session_ttl" mapstructure:"session_ttl"`

	// SecureCookie marks the session cookie Secure.
	SecureCookie bool `json:"secure_cookie" yaml:"secure_cookie" mapstructure:"secure_cookie"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error (default "info").
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "console" or "json" (default "console").
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// AuthConfig configures the dashboard password gate.
type AuthConfig struct {
	// Password overrides the secret file when set (TAURUS_AUTH_PASSWORD).
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`

	// PasswordSecret is the secret file name under .secrets/ holding the
	// password (default "dashboard-password").
	PasswordSecret string `json:"password_secret" yaml:"password_secret" mapstructure:"password_secret"`
}

// Config groups all settings read by the taurus binary.
type Config struct {
	Artifacts ArtifactConfig `json:"artifacts" yaml:"artifacts" mapstructure:"artifacts"`
	Dataset   DatasetConfig  `json:"dataset" yaml:"dataset" mapstructure:"dataset"`
	Server    ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Log       LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
	Auth      AuthConfig     `json:"auth" yaml:"auth" mapstructure:"auth"`
}

// WithDefaults returns c with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Artifacts.BundlePath == "" {
		c.Artifacts.BundlePath = "artifacts/bundle.yaml"
	}
	if c.Dataset.CSVPath == "" {
		c.Dataset.CSVPath = "data/taurus.csv"
	}
	if c.Dataset.DataDir == "" {
		c.Dataset.DataDir = "data"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8501"
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		c.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if c.Server.SessionTTL <= 0 {
		c.Server.SessionTTL = 12 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Auth.PasswordSecret == "" {
		c.Auth.PasswordSecret = "dashboard-password"
	}
	return c
}

// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and PLAYERVALUE_* env vars.
// - Errors are wrapped with this package's sentinel kinds.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// TeamEncodingPath points at the team -> encoding resource (JSON or YAML).
	TeamEncodingPath string `koanf:"team_encoding_path"`

	// ModelPath points at the regression model artifact (JSON or YAML).
	ModelPath string `koanf:"model_path"`

	// BatchConcurrency bounds goroutines used by a single batch estimate.
	BatchConcurrency int `koanf:"batch_concurrency"`

	// MaxBatchSize caps the number of players in POST /predict/batch.
	MaxBatchSize int `koanf:"max_batch_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		TeamEncodingPath: "assets/team_target_encoding.json",
		ModelPath:        "assets/model.yaml",
		BatchConcurrency: runtime.NumCPU(),
		MaxBatchSize:     100,
	}
}

package estimatecli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/playervalue/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// SetupLogging routes logs to stderr so stdout carries only the estimate.
func SetupLogging(verbose bool) error {
	if err := logger.InitWithOptions(logger.Options{Writer: os.Stderr}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// Bind registers every flag on fs, writing into cfg. Defaults are read from
// cfg, so pass DefaultConfig() for the form defaults.
func Bind(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of a running service (empty: estimate locally)")
	fs.StringVar(&cfg.TeamEncodingPath, "teams", cfg.TeamEncodingPath, "Team encoding table for local estimates")
	fs.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "Model artifact for local estimates")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "Print the full estimate as JSON")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable verbose logging")

	fs.StringVar(&cfg.Position, "position", cfg.Position, "Position category: Forward, Midfielder, Defender or Goalkeeper")
	fs.IntVar(&cfg.Age, "age", cfg.Age, "Age (16-45)")
	fs.StringVar(&cfg.Team, "team", cfg.Team, "Team name")
	fs.StringVar(&cfg.Foot, "foot", cfg.Foot, "Preferred foot: Right or Left")
	fs.Float64Var(&cfg.Wage, "wage", cfg.Wage, "Wage in euro per week (500-440000)")
	fs.IntVar(&cfg.YearsLeft, "years-left", cfg.YearsLeft, "Years left on contract (0-10)")
	fs.Float64Var(&cfg.Height, "height", cfg.Height, "Height in cm (150-220)")
	fs.Float64Var(&cfg.Weight, "weight", cfg.Weight, "Weight in kg (50-120)")
	fs.IntVar(&cfg.Acceleration, "acceleration", cfg.Acceleration, "Acceleration (1-100)")
	fs.IntVar(&cfg.SprintSpeed, "sprint-speed", cfg.SprintSpeed, "Sprint speed (1-100)")
	fs.IntVar(&cfg.Agility, "agility", cfg.Agility, "Agility (1-100)")
	fs.IntVar(&cfg.Balance, "balance", cfg.Balance, "Balance (1-100)")
	fs.IntVar(&cfg.Stamina, "stamina", cfg.Stamina, "Stamina (1-100)")
	fs.IntVar(&cfg.Strength, "strength", cfg.Strength, "Strength (1-100)")
	fs.IntVar(&cfg.InternationalReputation, "reputation", cfg.InternationalReputation, "International reputation (1-5)")
	fs.BoolVar(&cfg.OnLoan, "on-loan", cfg.OnLoan, "Player is on loan")
	fs.Var(cfg.Skills, "skill", "Position skill as name=rating; repeatable")
}

// ShowHelp prints usage information for the estimate tool.
func ShowHelp(w io.Writer, fs *flag.FlagSet) {
	_, _ = io.WriteString(w, `Player Market Value Estimator
=============================

Estimates a player's market value in millions of euro, either locally from
the bundled team table and model or against a running service.

Usage:
  go run ./cmd/estimate [options]

Options:
`)
	fs.SetOutput(w)
	fs.PrintDefaults()
	_, _ = io.WriteString(w, `
Examples:
  # The original form's defaults (a Manchester City midfielder)
  go run ./cmd/estimate

  # A goalkeeper with a custom reflex rating
  go run ./cmd/estimate -position Goalkeeper -skill gk_reflexes=90

  # Ask a running service instead
  go run ./cmd/estimate -url http://localhost:9080 -position Forward -json
`)
}

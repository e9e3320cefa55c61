package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/atm360/backend/internal/config"
	"github.com/atm360/backend/internal/db"
)

var rootCmd = &cobra.Command{
	Use:   "atm360",
	Short: "ATM360 fleet monitoring and dispatch backend",
	Long: `ATM360 monitors an ATM fleet, estimates per-machine failure risk
from live telemetry, and dispatches field engineers to fault tickets
using a learned scoring model with a random fallback.

Example usage:
  atm360 migrate
  atm360 seed --dir seed-data
  atm360 serve`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SilenceUsage = true
}

// setup loads config, builds the logger, and connects the store. Every
// subcommand starts here.
func setup(ctx context.Context) (config.Config, zerolog.Logger, *db.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Logger{}, nil, err
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "atm360-backend").Logger()

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, zerolog.Logger{}, nil, err
	}
	return cfg, logger, store, nil
}

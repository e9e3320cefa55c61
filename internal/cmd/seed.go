package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/atm360/backend/internal/seed"
)

var seedDir string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load JSON fixtures into the database",
	Long: `Recreates the schema and loads the fixture files (banks.json,
users.json, engineers.json, atms.json, tickets.json) from the seed
directory. Fixture passwords are hashed during the load.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedDir, "dir", "", "seed data directory (default: SEED_DIR from config)")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, logger, store, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	dir := seedDir
	if dir == "" {
		dir = cfg.SeedDir
	}

	if err := store.Migrate(cmd.Context()); err != nil {
		return err
	}
	res, err := seed.Load(cmd.Context(), store, dir, logger)
	if err != nil {
		return err
	}
	seed.RenderSummary(os.Stdout, res)
	return nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WilliamWachholz/CameraTimeCard/internal/config"
	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect and maintain the timecard database",
}

func init() {
	rootCmd.AddCommand(dbCmd)
}

// withStore opens the configured backend store, runs fn and closes the
// store again. Shared plumbing for all db subcommands.
func withStore(fn func(ctx context.Context, store *database.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	return fn(ctx, store)
}

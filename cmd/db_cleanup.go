package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
)

var dbCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete timecards older than a retention period",
	RunE:  runDbCleanup,
}

func init() {
	dbCmd.AddCommand(dbCleanupCmd)

	dbCleanupCmd.Flags().Int("days", 90, "Delete records older than this many days")
	dbCleanupCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runDbCleanup(cmd *cobra.Command, args []string) error {
	days := mustGetInt(cmd, "days")
	if days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	if !mustGetBool(cmd, "yes") {
		fmt.Printf("Delete all timecards before %s? (y/N): ", cutoff.Local().Format("2006-01-02"))
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "yes" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	return withStore(func(ctx context.Context, store *database.Store) error {
		deleted, err := store.Timecards.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to delete timecards: %w", err)
		}
		fmt.Printf("Deleted %d records older than %d days\n", deleted, days)
		return nil
	})
}

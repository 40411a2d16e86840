package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
)

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE:  runDbStats,
}

func init() {
	dbCmd.AddCommand(dbStatsCmd)
}

func runDbStats(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, store *database.Store) error {
		employees, err := store.Employees.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}

		start := time.Now().AddDate(0, 0, -7)
		cards, err := store.Timecards.List(ctx, database.TimecardFilter{Start: &start, Limit: 100000})
		if err != nil {
			return fmt.Errorf("failed to list timecards: %w", err)
		}

		fmt.Printf("Employees: %d\n", len(employees))
		fmt.Printf("Timecards in the last 7 days: %d\n\n", len(cards))

		perDay := make(map[string]int)
		perEmployee := make(map[string]int)
		for _, tc := range cards {
			perDay[tc.Timestamp.Local().Format("2006-01-02")]++
			perEmployee[tc.EmployeeName]++
		}

		days := make([]string, 0, len(perDay))
		for day := range perDay {
			days = append(days, day)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(days)))

		fmt.Println("Records per day:")
		for _, day := range days {
			fmt.Printf("  %s  %d\n", day, perDay[day])
		}

		var topName string
		for name, count := range perEmployee {
			if topName == "" || count > perEmployee[topName] ||
				(count == perEmployee[topName] && name < topName) {
				topName = name
			}
		}
		if topName != "" {
			fmt.Printf("\nMost active employee: %s (%d records)\n", topName, perEmployee[topName])
		}
		return nil
	})
}

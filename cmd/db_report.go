package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timecard"
)

var dbReportCmd = &cobra.Command{
	Use:   "report [employee-id]",
	Short: "Show recent timecards, or a per-employee work report",
	Long: `Show recent timecards, or a per-employee work report.
Without arguments the most recent records are listed. With an employee id
the records are grouped per day with clock in/out pairs and worked hours.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDbReport,
}

func init() {
	dbCmd.AddCommand(dbReportCmd)

	dbReportCmd.Flags().Int("days", 7, "How many days back to report")
}

func runDbReport(cmd *cobra.Command, args []string) error {
	days := mustGetInt(cmd, "days")

	return withStore(func(ctx context.Context, store *database.Store) error {
		start := time.Now().AddDate(0, 0, -days)
		filter := database.TimecardFilter{Start: &start, Limit: 10000}

		if len(args) == 0 {
			filter.Limit = 50
			cards, err := store.Timecards.List(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list timecards: %w", err)
			}
			return printRecentTimecards(cards, days)
		}
		return printEmployeeReport(ctx, store, args[0], filter, days)
	})
}

func printRecentTimecards(cards []database.Timecard, days int) error {
	fmt.Printf("Timecards of the last %d days:\n\n", days)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tTYPE\tMETHOD")
	for _, tc := range cards {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			tc.EmployeeID, tc.EmployeeName,
			tc.Timestamp.Local().Format("2006-01-02 15:04"),
			tc.EntryType, tc.RecognitionMethod)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d records\n", len(cards))
	return nil
}

func printEmployeeReport(
	ctx context.Context, store *database.Store, employeeID string,
	filter database.TimecardFilter, days int,
) error {
	emp, err := store.Employees.Get(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to load employee: %w", err)
	}
	if emp == nil {
		return fmt.Errorf("employee %s not found", employeeID)
	}

	cards, err := store.Timecards.ListForEmployee(ctx, employeeID, filter)
	if err != nil {
		return fmt.Errorf("failed to list timecards: %w", err)
	}

	fmt.Printf("Report for %s (%s)\n", emp.Name, emp.ID)
	fmt.Printf("Registered: %s\n", emp.CreatedAt.Local().Format("2006-01-02"))
	fmt.Printf("Period: last %d days, %d records\n", days, len(cards))

	byDay := groupByDay(cards)
	fmt.Printf("Days with activity: %d\n\n", len(byDay))

	dayKeys := make([]string, 0, len(byDay))
	for day := range byDay {
		dayKeys = append(dayKeys, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dayKeys)))

	for _, day := range dayKeys {
		fmt.Printf("%s:\n", day)
		printDayPairs(byDay[day])
	}
	return nil
}

// groupByDay buckets timecards by local calendar day.
func groupByDay(cards []database.Timecard) map[string][]database.Timecard {
	byDay := make(map[string][]database.Timecard)
	for _, tc := range cards {
		day := tc.Timestamp.Local().Format("2006-01-02")
		byDay[day] = append(byDay[day], tc)
	}
	return byDay
}

// printDayPairs prints one day's records in order and sums worked hours
// from in/out pairs.
func printDayPairs(cards []database.Timecard) {
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].Timestamp.Before(cards[j].Timestamp)
	})

	var clockIn *time.Time
	var worked time.Duration
	for _, tc := range cards {
		at := tc.Timestamp.Local()
		switch tc.EntryType {
		case timecard.EntryIn:
			t := at
			clockIn = &t
			fmt.Printf("  in  %s\n", at.Format("15:04"))
		case timecard.EntryOut:
			fmt.Printf("  out %s\n", at.Format("15:04"))
			if clockIn != nil {
				worked += at.Sub(*clockIn)
				clockIn = nil
			}
		}
	}
	if worked > 0 {
		fmt.Printf("  worked %.1fh\n", worked.Hours())
	}
}

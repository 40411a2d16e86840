package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timecard"
)

var dbExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export employees and timecards to a JSON file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDbExport,
}

func init() {
	dbCmd.AddCommand(dbExportCmd)
}

func runDbExport(cmd *cobra.Command, args []string) error {
	filename := fmt.Sprintf("timecard_export_%s.json", time.Now().Format("20060102_150405"))
	if len(args) == 1 {
		filename = args[0]
	}

	return withStore(func(ctx context.Context, store *database.Store) error {
		employees, err := store.Employees.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}

		cards, err := store.Timecards.List(ctx, database.TimecardFilter{Limit: 1000000})
		if err != nil {
			return fmt.Errorf("failed to list timecards: %w", err)
		}

		export := struct {
			ExportDate time.Time           `json:"export_date"`
			Employees  []timecard.Employee `json:"employees"`
			Timecards  []timecard.Record   `json:"timecards"`
		}{
			ExportDate: time.Now(),
		}
		for _, emp := range employees {
			export.Employees = append(export.Employees, timecard.Employee{
				ID:        emp.ID,
				Name:      emp.Name,
				CreatedAt: emp.CreatedAt,
			})
		}
		for _, tc := range cards {
			export.Timecards = append(export.Timecards, timecard.Record{
				ID:                tc.ID,
				EmployeeID:        tc.EmployeeID,
				EmployeeName:      tc.EmployeeName,
				Timestamp:         tc.Timestamp,
				RecognitionMethod: tc.RecognitionMethod,
				EntryType:         tc.EntryType,
				CreatedAt:         tc.CreatedAt,
			})
		}

		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal export: %w", err)
		}
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}

		fmt.Printf("Exported to %s\n", filename)
		fmt.Printf("  Employees: %d\n", len(export.Employees))
		fmt.Printf("  Timecards: %d\n", len(export.Timecards))
		return nil
	})
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WilliamWachholz/CameraTimeCard/internal/config"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timecard"
)

var employeeStatusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Show an employee's clock state on the backend",
	Long: `Show an employee's clock state on the backend.
Reports whether the employee is currently clocked in or out, their last
recorded entry and how many face samples the backend holds for them.`,
	Args: cobra.ExactArgs(1),
	RunE: runEmployeeStatus,
}

func init() {
	employeeCmd.AddCommand(employeeStatusCmd)
}

func runEmployeeStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	id := args[0]

	client, err := timecard.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}

	ctx := cmd.Context()
	status, err := client.EmployeeStatus(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch status: %w", err)
	}

	switch status.Status {
	case timecard.EntryIn:
		fmt.Printf("%s is clocked in\n", id)
	case timecard.EntryOut:
		fmt.Printf("%s is clocked out\n", id)
	default:
		fmt.Printf("%s has never clocked in\n", id)
	}
	if status.LastEntry != nil {
		fmt.Printf("Last entry: clock %s at %s\n",
			status.LastEntry.EntryType, status.LastEntry.Timestamp.Local().Format("2006-01-02 15:04:05"))
	}

	faces, err := client.FaceCount(ctx, id)
	if err != nil {
		// The MySQL backend has no face storage; status alone is fine.
		return nil
	}
	if faces.IsRegistered {
		fmt.Printf("Face samples on backend: %d\n", faces.FaceCount)
	} else {
		fmt.Println("No face samples on backend")
	}
	return nil
}

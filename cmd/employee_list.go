package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/WilliamWachholz/CameraTimeCard/internal/config"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timecard"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timeclock"
)

var employeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List locally registered employees",
	RunE:  runEmployeeList,
}

func init() {
	employeeCmd.AddCommand(employeeListCmd)

	employeeListCmd.Flags().Bool("remote", false, "List the backend roster instead of the local encoding store")
}

func runEmployeeList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if mustGetBool(cmd, "remote") {
		return listRemoteEmployees(cmd, cfg)
	}

	store, err := timeclock.OpenEncodingStore(cfg.Storage.EncodingsFile, cfg.Storage.MaxBackups)
	if err != nil {
		return fmt.Errorf("failed to open encoding store: %w", err)
	}
	if store.Len() == 0 {
		fmt.Println("No employees registered")
		return nil
	}

	type row struct {
		name  string
		count int
	}
	rows := make(map[string]*row)
	var order []string
	for _, enc := range store.Entries() {
		r, ok := rows[enc.EmployeeID]
		if !ok {
			r = &row{name: enc.Name}
			rows[enc.EmployeeID] = r
			order = append(order, enc.EmployeeID)
		}
		r.count++
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tENCODINGS")
	for _, id := range order {
		fmt.Fprintf(w, "%s\t%s\t%d\n", id, rows[id].name, rows[id].count)
	}
	return w.Flush()
}

// listRemoteEmployees prints the backend roster.
func listRemoteEmployees(cmd *cobra.Command, cfg *config.Config) error {
	client, err := timecard.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}

	employees, err := client.Employees(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch roster: %w", err)
	}
	if len(employees) == 0 {
		fmt.Println("No employees registered on backend")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED")
	for _, emp := range employees {
		fmt.Fprintf(w, "%s\t%s\t%s\n", emp.ID, emp.Name, emp.CreatedAt.Local().Format("2006-01-02"))
	}
	return w.Flush()
}

package cmd

import (
	"github.com/spf13/cobra"
)

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Manage registered employees",
	Long: `Manage registered employees.
Registration stores face encodings in the local encoding store; with a
configured backend the roster and embeddings are synced there too.`,
}

func init() {
	rootCmd.AddCommand(employeeCmd)
}

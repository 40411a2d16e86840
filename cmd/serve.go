package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/WilliamWachholz/CameraTimeCard/internal/config"
	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
	"github.com/WilliamWachholz/CameraTimeCard/internal/database/mysql"
	"github.com/WilliamWachholz/CameraTimeCard/internal/database/postgres"
	"github.com/WilliamWachholz/CameraTimeCard/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the timecard backend server",
	Long: `Start the timecard backend server.
The backend stores employees and attendance records and answers the REST
API that kiosks report to.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

// openStore connects to the store selected by DATABASE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config) (*database.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		fmt.Printf("Connecting to PostgreSQL database...\n")
		return postgres.Open(ctx, &cfg.Database)
	case "mysql":
		fmt.Printf("Connecting to MySQL database...\n")
		fmt.Printf("Note: the MySQL backend has no face embedding storage\n")
		return mysql.Open(ctx, &cfg.Database)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := openStore(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Error closing store: %v\n", err)
		}
	}()

	server := web.NewServer(cfg, store)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting timecard backend on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

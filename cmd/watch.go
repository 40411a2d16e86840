package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/WilliamWachholz/CameraTimeCard/internal/camera"
	"github.com/WilliamWachholz/CameraTimeCard/internal/config"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timecard"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timeclock"
	"github.com/WilliamWachholz/CameraTimeCard/internal/vision"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the camera and report attendance",
	Long: `Watch the camera and report attendance.
Runs the kiosk capture loop: frames are read from the camera, faces are
matched against the local encoding store and recognized employees are
reported to the backend, which decides clock in vs clock out.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := timeclock.OpenEncodingStore(cfg.Storage.EncodingsFile, cfg.Storage.MaxBackups)
	if err != nil {
		return fmt.Errorf("failed to open encoding store: %w", err)
	}
	if store.Len() == 0 {
		return fmt.Errorf("no registered faces in %s, run 'timeclock employee register' first", cfg.Storage.EncodingsFile)
	}
	fmt.Printf("Loaded %d face encodings for %d employees\n", store.Len(), store.EmployeeCount())

	encoder, err := vision.NewEncoder(cfg.Recognition.ModelsDir)
	if err != nil {
		return fmt.Errorf("failed to load face models: %w", err)
	}
	defer encoder.Close()

	recognizer := timeclock.NewRecognizer(encoder, store, cfg.Recognition.Tolerance)
	if err := recognizer.UseIndex(); err != nil {
		fmt.Printf("Warning: failed to build vector index, falling back to full scans: %v\n", err)
	}
	if cfg.Security.SaveUnknownFaces {
		recognizer.SaveUnknownTo(filepath.Join(cfg.Storage.PhotosDir, "unknown_faces"))
	}

	cam, err := camera.Open(cfg.Camera.Index, cfg.Camera.FrameWidth, cfg.Camera.FrameHeight)
	if err != nil {
		return fmt.Errorf("failed to open camera %d: %w", cfg.Camera.Index, err)
	}

	client, err := timecard.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}
	if err := client.Health(cmd.Context()); err != nil {
		fmt.Printf("Warning: backend not reachable at %s: %v\n", cfg.Backend.URL, err)
	}

	hours, err := timeclock.NewWorkHours(
		cfg.Attendance.WorkStart, cfg.Attendance.WorkEnd, cfg.Attendance.AllowAfterHours)
	if err != nil {
		return fmt.Errorf("invalid work hours: %w", err)
	}

	loop := timeclock.NewLoop(timeclock.LoopOptions{
		Source:       cam,
		Recognizer:   recognizer,
		Cooldown:     timeclock.NewCooldown(cfg.Attendance.Cooldown),
		Lockout:      timeclock.NewLockout(cfg.Security.MaxFailedAttempts, cfg.Security.LockoutTime),
		WorkHours:    hours,
		Reporter:     timecard.NewReporter(client),
		Notifier:     timecard.NewNotifier(cfg.Webhook),
		ProcessEvery: cfg.Camera.ProcessEvery,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching camera %d (tolerance %.2f, cooldown %s)\n",
		cfg.Camera.Index, cfg.Recognition.Tolerance, cfg.Attendance.Cooldown)
	fmt.Println("Press Ctrl+C to stop")

	if err := loop.Run(ctx); err != nil {
		return fmt.Errorf("capture loop failed: %w", err)
	}
	fmt.Println("Stopped")
	return nil
}

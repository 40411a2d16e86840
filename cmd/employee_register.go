package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WilliamWachholz/CameraTimeCard/internal/config"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timecard"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timeclock"
	"github.com/WilliamWachholz/CameraTimeCard/internal/vision"
)

var employeeRegisterCmd = &cobra.Command{
	Use:   "register <id> <name> <photo> [photo...]",
	Short: "Register an employee from one or more photos",
	Long: `Register an employee from one or more photos.
Each photo must contain exactly one clearly visible face. Registering
several angles of the same person improves recognition.`,
	Args: cobra.MinimumNArgs(3),
	RunE: runEmployeeRegister,
}

func init() {
	employeeCmd.AddCommand(employeeRegisterCmd)

	employeeRegisterCmd.Flags().Bool("sync", false, "Also push the employee and embeddings to the backend")
}

func runEmployeeRegister(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	id, name, photos := args[0], args[1], args[2:]

	store, err := timeclock.OpenEncodingStore(cfg.Storage.EncodingsFile, cfg.Storage.MaxBackups)
	if err != nil {
		return fmt.Errorf("failed to open encoding store: %w", err)
	}
	if existing := store.FindByName(name); existing != "" && existing != id {
		fmt.Printf("Warning: %q is already registered under id %s\n", name, existing)
	}

	encoder, err := vision.NewEncoder(cfg.Recognition.ModelsDir)
	if err != nil {
		return fmt.Errorf("failed to load face models: %w", err)
	}
	defer encoder.Close()

	vectors := make([][]float32, 0, len(photos))
	for _, photo := range photos {
		vector, err := encodePhotoFile(encoder, photo)
		if err != nil {
			return err
		}
		store.Append(id, name, vector)
		vectors = append(vectors, vector)
		fmt.Printf("Encoded %s\n", photo)
	}

	if err := store.Save(); err != nil {
		return fmt.Errorf("failed to save encoding store: %w", err)
	}
	fmt.Printf("Registered %s (%s) with %d face encoding(s)\n", name, id, len(vectors))

	if mustGetBool(cmd, "sync") {
		if err := syncEmployee(cmd, cfg, id, name, vectors); err != nil {
			return err
		}
	}
	return nil
}

// encodePhotoFile reads a photo from disk and converts it into a single
// face encoding.
func encodePhotoFile(encoder *vision.Encoder, path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo %s: %w", path, err)
	}

	prepared, err := vision.PrepareRegistrationPhoto(data)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare photo %s: %w", path, err)
	}

	face, err := encoder.EncodeSingle(prepared)
	if err != nil {
		return nil, fmt.Errorf("no usable face in %s: %w", path, err)
	}
	return face.Vector, nil
}

// syncEmployee pushes an employee and their embeddings to the backend.
func syncEmployee(cmd *cobra.Command, cfg *config.Config, id, name string, vectors [][]float32) error {
	client, err := timecard.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}

	ctx := cmd.Context()
	if err := client.CreateEmployee(ctx, id, name); err != nil {
		return fmt.Errorf("failed to create employee on backend: %w", err)
	}
	for _, vector := range vectors {
		if err := client.AddEmployeeFace(ctx, id, vector); err != nil {
			return fmt.Errorf("failed to push face embedding: %w", err)
		}
	}
	fmt.Printf("Synced %s to %s\n", id, cfg.Backend.URL)
	return nil
}

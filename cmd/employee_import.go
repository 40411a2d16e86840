package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/WilliamWachholz/CameraTimeCard/internal/config"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timeclock"
	"github.com/WilliamWachholz/CameraTimeCard/internal/vision"
)

var employeeImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Bulk-register employees from a photo directory",
	Long: `Bulk-register employees from a photo directory.
Each subdirectory holds the photos of one employee and is named
"<id>_<full name>", for example "emp042_Carol White". Existing encodings
are kept; new photos append.`,
	Args: cobra.ExactArgs(1),
	RunE: runEmployeeImport,
}

func init() {
	employeeCmd.AddCommand(employeeImportCmd)
}

// photoExtensions lists the accepted registration photo file types.
var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type importEntry struct {
	id     string
	name   string
	photos []string
}

func runEmployeeImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	entries, total, err := scanImportDir(args[0])
	if err != nil {
		return err
	}
	if total == 0 {
		return fmt.Errorf("no photos found under %s", args[0])
	}

	store, err := timeclock.OpenEncodingStore(cfg.Storage.EncodingsFile, cfg.Storage.MaxBackups)
	if err != nil {
		return fmt.Errorf("failed to open encoding store: %w", err)
	}

	encoder, err := vision.NewEncoder(cfg.Recognition.ModelsDir)
	if err != nil {
		return fmt.Errorf("failed to load face models: %w", err)
	}
	defer encoder.Close()

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Encoding faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var encoded, failed int
	for _, entry := range entries {
		for _, photo := range entry.photos {
			vector, err := encodePhotoFile(encoder, photo)
			if err != nil {
				fmt.Printf("\nSkipping %s: %v\n", photo, err)
				failed++
			} else {
				store.Append(entry.id, entry.name, vector)
				encoded++
			}
			bar.Add(1)
		}
	}
	fmt.Println()

	if encoded == 0 {
		return fmt.Errorf("no faces encoded (%d photos failed)", failed)
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("failed to save encoding store: %w", err)
	}

	fmt.Printf("Imported %d employees: %d encodings added, %d photos skipped\n",
		len(entries), encoded, failed)
	return nil
}

// scanImportDir collects "<id>_<name>" subdirectories and their photos.
func scanImportDir(root string) ([]importEntry, int, error) {
	dirs, err := os.ReadDir(root)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read directory %s: %w", root, err)
	}

	var entries []importEntry
	total := 0
	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		id, name, ok := strings.Cut(dir.Name(), "_")
		if !ok || id == "" || name == "" {
			fmt.Printf("Skipping %s: directory name must be <id>_<name>\n", dir.Name())
			continue
		}

		files, err := os.ReadDir(filepath.Join(root, dir.Name()))
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read directory %s: %w", dir.Name(), err)
		}

		entry := importEntry{id: id, name: name}
		for _, f := range files {
			if f.IsDir() || !photoExtensions[strings.ToLower(filepath.Ext(f.Name()))] {
				continue
			}
			entry.photos = append(entry.photos, filepath.Join(root, dir.Name(), f.Name()))
		}
		if len(entry.photos) == 0 {
			continue
		}
		entries = append(entries, entry)
		total += len(entry.photos)
	}
	return entries, total, nil
}

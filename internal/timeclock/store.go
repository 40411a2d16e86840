package timeclock

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const encodingsVersion = 1

// StoredEncoding is one facial feature vector registered for an employee.
// An employee may own several encodings (multiple angles); registration
// order is preserved because matching ties break toward the first entry.
type StoredEncoding struct {
	EmployeeID string    `json:"employee_id"`
	Name       string    `json:"name"`
	Vector     []float32 `json:"vector"`
	CreatedAt  time.Time `json:"created_at"`
}

// encodingsFile is the on-disk JSON layout.
type encodingsFile struct {
	Version   int              `json:"version"`
	Encodings []StoredEncoding `json:"encodings"`
}

// EncodingStore holds the persisted employee-id → feature-vector mapping.
// Loaded at startup, appended on registration, never mutated otherwise.
type EncodingStore struct {
	path       string
	maxBackups int
	entries    []StoredEncoding
}

// OpenEncodingStore loads the encodings file at path. A missing file yields
// an empty store; any other read or decode error is returned.
func OpenEncodingStore(path string, maxBackups int) (*EncodingStore, error) {
	s := &EncodingStore{path: path, maxBackups: maxBackups}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading encodings file: %w", err)
	}

	var file encodingsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding encodings file %s: %w", path, err)
	}
	s.entries = file.Encodings
	return s, nil
}

// Append registers one more vector for an employee.
func (s *EncodingStore) Append(employeeID, name string, vector []float32) {
	s.entries = append(s.entries, StoredEncoding{
		EmployeeID: employeeID,
		Name:       name,
		Vector:     vector,
		CreatedAt:  time.Now().UTC(),
	})
}

// Entries returns the stored encodings in registration order.
func (s *EncodingStore) Entries() []StoredEncoding {
	return s.entries
}

// Len returns the number of stored vectors.
func (s *EncodingStore) Len() int {
	return len(s.entries)
}

// FindByName returns the id of the employee registered under name,
// matching case- and diacritic-insensitively, or "" when no entry has it.
// Registration uses this to flag the same person enrolling twice under
// different ids.
func (s *EncodingStore) FindByName(name string) string {
	want := NormalizeName(name)
	for _, e := range s.entries {
		if NormalizeName(e.Name) == want {
			return e.EmployeeID
		}
	}
	return ""
}

// EmployeeCount returns the number of distinct employees in the store.
func (s *EncodingStore) EmployeeCount() int {
	seen := make(map[string]bool, len(s.entries))
	for _, e := range s.entries {
		seen[e.EmployeeID] = true
	}
	return len(seen)
}

// Save writes the store back to disk, rotating a backup of the previous
// file first. The write itself goes through a temp file and rename so a
// crash cannot leave a truncated encodings file.
func (s *EncodingStore) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := s.backup(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(encodingsFile{
		Version:   encodingsVersion,
		Encodings: s.entries,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("writing encodings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing encodings file: %w", err)
	}
	return nil
}

// backup copies the current file into a backups directory next to it and
// prunes old copies beyond maxBackups. Disabled when maxBackups <= 0.
func (s *EncodingStore) backup() error {
	if s.maxBackups <= 0 {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}

	backupDir := filepath.Join(filepath.Dir(s.path), "backups")
	if err := os.MkdirAll(backupDir, 0o750); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}

	name := fmt.Sprintf("face_encodings_%s.json", time.Now().Format("20060102_150405.000"))
	if err := copyFile(s.path, filepath.Join(backupDir, name)); err != nil {
		return fmt.Errorf("backing up encodings: %w", err)
	}

	return s.pruneBackups(backupDir)
}

func (s *EncodingStore) pruneBackups(backupDir string) error {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return fmt.Errorf("listing backups: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) <= s.maxBackups {
		return nil
	}

	// Timestamped names sort chronologically, oldest first.
	sort.Strings(names)
	for _, name := range names[:len(names)-s.maxBackups] {
		if err := os.Remove(filepath.Join(backupDir, name)); err != nil {
			return fmt.Errorf("removing old backup %s: %w", name, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

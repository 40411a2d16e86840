package database

import (
	"context"
	"time"
)

// EmployeeStore provides access to the employee roster.
type EmployeeStore interface {
	// Get retrieves an employee by id, nil if not found.
	Get(ctx context.Context, id string) (*Employee, error)
	// Create inserts a new employee.
	Create(ctx context.Context, emp Employee) error
	// List returns all employees ordered by name.
	List(ctx context.Context) ([]Employee, error)
}

// TimecardStore provides access to attendance records.
type TimecardStore interface {
	// Insert stores one timecard.
	Insert(ctx context.Context, tc Timecard) error
	// LastForEmployee returns the most recent timecard for an employee,
	// nil if none exists. Used to classify the next entry type.
	LastForEmployee(ctx context.Context, employeeID string) (*Timecard, error)
	// List returns timecards matching the filter, newest first.
	List(ctx context.Context, filter TimecardFilter) ([]Timecard, error)
	// ListForEmployee returns one employee's timecards, newest first.
	ListForEmployee(ctx context.Context, employeeID string, filter TimecardFilter) ([]Timecard, error)
	// DeleteOlderThan removes records with timestamps before the cutoff
	// and returns how many were deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// FaceStore provides access to mirrored face embeddings. Optional: the
// MySQL backend does not implement it.
type FaceStore interface {
	// Append stores one more embedding for an employee.
	Append(ctx context.Context, employeeID string, embedding []float32) error
	// Count returns the number of embeddings stored for an employee.
	Count(ctx context.Context, employeeID string) (int, error)
	// ListForEmployee returns an employee's embeddings, oldest first.
	ListForEmployee(ctx context.Context, employeeID string) ([]StoredFace, error)
	// All returns every stored embedding, oldest first.
	All(ctx context.Context) ([]StoredFace, error)
	// Nearest returns the stored embeddings closest to the probe by
	// Euclidean distance, nearest first.
	Nearest(ctx context.Context, embedding []float32, limit int) ([]FaceMatch, error)
}

// Store bundles the backend's repositories. Faces is nil when the
// configured driver has no embedding support.
type Store struct {
	Employees EmployeeStore
	Timecards TimecardStore
	Faces     FaceStore

	closers []func() error
}

// AddCloser registers a cleanup function run by Close.
func (s *Store) AddCloser(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close releases all underlying resources.
func (s *Store) Close() error {
	var firstErr error
	for _, fn := range s.closers {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

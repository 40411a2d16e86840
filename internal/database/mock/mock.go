// Package mock provides in-memory implementations of the store
// interfaces for testing.
package mock

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
)

// MockEmployeeStore is an in-memory implementation of database.EmployeeStore
type MockEmployeeStore struct {
	mu        sync.RWMutex
	employees map[string]database.Employee

	// Error injection
	GetError    error
	CreateError error
	ListError   error
}

// NewMockEmployeeStore creates a new mock employee store
func NewMockEmployeeStore() *MockEmployeeStore {
	return &MockEmployeeStore{
		employees: make(map[string]database.Employee),
	}
}

// AddEmployee seeds the mock store
func (m *MockEmployeeStore) AddEmployee(emp database.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
}

// Get retrieves an employee by ID, nil if not found
func (m *MockEmployeeStore) Get(ctx context.Context, id string) (*database.Employee, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	emp, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

// Create inserts a new employee
func (m *MockEmployeeStore) Create(ctx context.Context, emp database.Employee) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = time.Now()
	}
	m.employees[emp.ID] = emp
	return nil
}

// List returns all employees ordered by name
func (m *MockEmployeeStore) List(ctx context.Context) ([]database.Employee, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	employees := make([]database.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		employees = append(employees, emp)
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].Name < employees[j].Name
	})
	return employees, nil
}

// MockTimecardStore is an in-memory implementation of database.TimecardStore
type MockTimecardStore struct {
	mu        sync.RWMutex
	timecards []database.Timecard

	// Error injection
	InsertError error
	LastError   error
	ListError   error
	DeleteError error
}

// NewMockTimecardStore creates a new mock timecard store
func NewMockTimecardStore() *MockTimecardStore {
	return &MockTimecardStore{}
}

// Insert stores one timecard
func (m *MockTimecardStore) Insert(ctx context.Context, tc database.Timecard) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if tc.CreatedAt.IsZero() {
		tc.CreatedAt = time.Now()
	}
	m.timecards = append(m.timecards, tc)
	return nil
}

// LastForEmployee returns the most recent timecard for an employee, nil if none
func (m *MockTimecardStore) LastForEmployee(ctx context.Context, employeeID string) (*database.Timecard, error) {
	if m.LastError != nil {
		return nil, m.LastError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last *database.Timecard
	for i := range m.timecards {
		tc := m.timecards[i]
		if tc.EmployeeID != employeeID {
			continue
		}
		if last == nil || tc.Timestamp.After(last.Timestamp) {
			last = &tc
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

// List returns timecards matching the filter, newest first
func (m *MockTimecardStore) List(ctx context.Context, filter database.TimecardFilter) ([]database.Timecard, error) {
	return m.list("", filter)
}

// ListForEmployee returns one employee's timecards, newest first
func (m *MockTimecardStore) ListForEmployee(
	ctx context.Context, employeeID string, filter database.TimecardFilter,
) ([]database.Timecard, error) {
	return m.list(employeeID, filter)
}

func (m *MockTimecardStore) list(employeeID string, filter database.TimecardFilter) ([]database.Timecard, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []database.Timecard
	for _, tc := range m.timecards {
		if employeeID != "" && tc.EmployeeID != employeeID {
			continue
		}
		if filter.Start != nil && tc.Timestamp.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && tc.Timestamp.After(*filter.End) {
			continue
		}
		out = append(out, tc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// DeleteOlderThan removes records with timestamps before the cutoff
func (m *MockTimecardStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteError != nil {
		return 0, m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []database.Timecard
	var deleted int64
	for _, tc := range m.timecards {
		if tc.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, tc)
	}
	m.timecards = kept
	return deleted, nil
}

// MockFaceStore is an in-memory implementation of database.FaceStore
type MockFaceStore struct {
	mu     sync.RWMutex
	faces  []database.StoredFace
	nextID int64

	// Error injection
	AppendError  error
	CountError   error
	ListError    error
	NearestError error
}

// NewMockFaceStore creates a new mock face store
func NewMockFaceStore() *MockFaceStore {
	return &MockFaceStore{nextID: 1}
}

// Append stores one more embedding for an employee
func (m *MockFaceStore) Append(ctx context.Context, employeeID string, embedding []float32) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces = append(m.faces, database.StoredFace{
		ID:         m.nextID,
		EmployeeID: employeeID,
		Embedding:  append([]float32(nil), embedding...),
		Dim:        len(embedding),
		CreatedAt:  time.Now(),
	})
	m.nextID++
	return nil
}

// Count returns the number of embeddings stored for an employee
func (m *MockFaceStore) Count(ctx context.Context, employeeID string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, f := range m.faces {
		if f.EmployeeID == employeeID {
			count++
		}
	}
	return count, nil
}

// ListForEmployee returns an employee's embeddings, oldest first
func (m *MockFaceStore) ListForEmployee(ctx context.Context, employeeID string) ([]database.StoredFace, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.StoredFace
	for _, f := range m.faces {
		if f.EmployeeID == employeeID {
			out = append(out, f)
		}
	}
	return out, nil
}

// All returns every stored embedding, oldest first
func (m *MockFaceStore) All(ctx context.Context) ([]database.StoredFace, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]database.StoredFace(nil), m.faces...), nil
}

// Nearest returns the stored embeddings closest to the probe, nearest first
func (m *MockFaceStore) Nearest(ctx context.Context, embedding []float32, limit int) ([]database.FaceMatch, error) {
	if m.NearestError != nil {
		return nil, m.NearestError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]database.FaceMatch, 0, len(m.faces))
	for _, f := range m.faces {
		matches = append(matches, database.FaceMatch{
			Face:     f,
			Distance: euclidean(embedding, f.Embedding),
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func euclidean(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// NewStore bundles fresh mocks into a database.Store
func NewStore() (*database.Store, *MockEmployeeStore, *MockTimecardStore, *MockFaceStore) {
	employees := NewMockEmployeeStore()
	timecards := NewMockTimecardStore()
	faces := NewMockFaceStore()
	store := &database.Store{
		Employees: employees,
		Timecards: timecards,
		Faces:     faces,
	}
	return store, employees, timecards, faces
}

// Verify interface compliance.
var (
	_ database.EmployeeStore = (*MockEmployeeStore)(nil)
	_ database.TimecardStore = (*MockTimecardStore)(nil)
	_ database.FaceStore     = (*MockFaceStore)(nil)
)

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
)

// EmployeeRepository provides PostgreSQL-backed employee storage
type EmployeeRepository struct {
	pool *Pool
}

// NewEmployeeRepository creates a new PostgreSQL employee repository
func NewEmployeeRepository(pool *Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Get retrieves an employee by ID, returns nil if not found
func (r *EmployeeRepository) Get(ctx context.Context, id string) (*database.Employee, error) {
	query := `
		SELECT id, name, created_at
		FROM employees
		WHERE id = $1
	`

	var emp database.Employee
	err := r.pool.QueryRow(ctx, query, id).Scan(&emp.ID, &emp.Name, &emp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &emp, nil
}

// Create inserts a new employee
func (r *EmployeeRepository) Create(ctx context.Context, emp database.Employee) error {
	query := `
		INSERT INTO employees (id, name)
		VALUES ($1, $2)
	`

	if _, err := r.pool.Exec(ctx, query, emp.ID, emp.Name); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// List returns all employees ordered by name
func (r *EmployeeRepository) List(ctx context.Context) ([]database.Employee, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name, created_at FROM employees ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []database.Employee
	for rows.Next() {
		var emp database.Employee
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return employees, nil
}

// Verify interface compliance.
var _ database.EmployeeStore = (*EmployeeRepository)(nil)

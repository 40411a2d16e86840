package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
)

const defaultListLimit = 100

// EmployeeRepository provides MySQL-backed employee storage
type EmployeeRepository struct {
	pool *Pool
}

// Get retrieves an employee by ID, returns nil if not found
func (r *EmployeeRepository) Get(ctx context.Context, id string) (*database.Employee, error) {
	var emp database.Employee
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM employees WHERE id = ?", id,
	).Scan(&emp.ID, &emp.Name, &emp.CreatedAt)
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
	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO employees (id, name) VALUES (?, ?)", emp.ID, emp.Name)
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// List returns all employees ordered by name
func (r *EmployeeRepository) List(ctx context.Context) ([]database.Employee, error) {
	rows, err := r.pool.db.QueryContext(ctx, "SELECT id, name, created_at FROM employees ORDER BY name")
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

// TimecardRepository provides MySQL-backed attendance storage
type TimecardRepository struct {
	pool *Pool
}

// Insert stores one timecard
func (r *TimecardRepository) Insert(ctx context.Context, tc database.Timecard) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO timecards (id, employee_id, employee_name, ts, recognition_method, entry_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, tc.ID, tc.EmployeeID, tc.EmployeeName, tc.Timestamp, tc.RecognitionMethod, tc.EntryType)
	if err != nil {
		return fmt.Errorf("insert timecard: %w", err)
	}
	return nil
}

// LastForEmployee returns the most recent timecard for an employee, nil if none exists
func (r *TimecardRepository) LastForEmployee(ctx context.Context, employeeID string) (*database.Timecard, error) {
	var tc database.Timecard
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, employee_id, employee_name, ts, recognition_method, entry_type, created_at
		FROM timecards
		WHERE employee_id = ?
		ORDER BY ts DESC
		LIMIT 1
	`, employeeID).Scan(
		&tc.ID, &tc.EmployeeID, &tc.EmployeeName, &tc.Timestamp,
		&tc.RecognitionMethod, &tc.EntryType, &tc.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last timecard: %w", err)
	}
	return &tc, nil
}

// List returns timecards matching the filter, newest first
func (r *TimecardRepository) List(ctx context.Context, filter database.TimecardFilter) ([]database.Timecard, error) {
	return r.list(ctx, "", filter)
}

// ListForEmployee returns one employee's timecards, newest first
func (r *TimecardRepository) ListForEmployee(
	ctx context.Context, employeeID string, filter database.TimecardFilter,
) ([]database.Timecard, error) {
	return r.list(ctx, employeeID, filter)
}

func (r *TimecardRepository) list(
	ctx context.Context, employeeID string, filter database.TimecardFilter,
) ([]database.Timecard, error) {
	query := `
		SELECT id, employee_id, employee_name, ts, recognition_method, entry_type, created_at
		FROM timecards
	`

	var conds []string
	var args []any
	if employeeID != "" {
		conds = append(conds, "employee_id = ?")
		args = append(args, employeeID)
	}
	if filter.Start != nil {
		conds = append(conds, "ts >= ?")
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		conds = append(conds, "ts <= ?")
		args = append(args, *filter.End)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += " ORDER BY ts DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list timecards: %w", err)
	}
	defer rows.Close()

	var timecards []database.Timecard
	for rows.Next() {
		var tc database.Timecard
		if err := rows.Scan(
			&tc.ID, &tc.EmployeeID, &tc.EmployeeName, &tc.Timestamp,
			&tc.RecognitionMethod, &tc.EntryType, &tc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan timecard: %w", err)
		}
		timecards = append(timecards, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timecards: %w", err)
	}
	return timecards, nil
}

// DeleteOlderThan removes records with timestamps before the cutoff
func (r *TimecardRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM timecards WHERE ts < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete timecards: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

// Verify interface compliance.
var (
	_ database.EmployeeStore = (*EmployeeRepository)(nil)
	_ database.TimecardStore = (*TimecardRepository)(nil)
)

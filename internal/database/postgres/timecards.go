package postgres

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

// TimecardRepository provides PostgreSQL-backed attendance storage
type TimecardRepository struct {
	pool *Pool
}

// NewTimecardRepository creates a new PostgreSQL timecard repository
func NewTimecardRepository(pool *Pool) *TimecardRepository {
	return &TimecardRepository{pool: pool}
}

// Insert stores one timecard
func (r *TimecardRepository) Insert(ctx context.Context, tc Timecard) error {
	query := `
		INSERT INTO timecards (id, employee_id, employee_name, ts, recognition_method, entry_type)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		tc.ID,
		tc.EmployeeID,
		tc.EmployeeName,
		tc.Timestamp,
		tc.RecognitionMethod,
		tc.EntryType,
	)
	if err != nil {
		return fmt.Errorf("insert timecard: %w", err)
	}
	return nil
}

// LastForEmployee returns the most recent timecard for an employee, nil if none exists
func (r *TimecardRepository) LastForEmployee(ctx context.Context, employeeID string) (*Timecard, error) {
	query := `
		SELECT id, employee_id, employee_name, ts, recognition_method, entry_type, created_at
		FROM timecards
		WHERE employee_id = $1
		ORDER BY ts DESC
		LIMIT 1
	`

	tc, err := scanTimecard(r.pool.QueryRow(ctx, query, employeeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last timecard: %w", err)
	}
	return &tc, nil
}

// List returns timecards matching the filter, newest first
func (r *TimecardRepository) List(ctx context.Context, filter database.TimecardFilter) ([]Timecard, error) {
	query, args := buildListQuery("", filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list timecards: %w", err)
	}
	defer rows.Close()

	return scanTimecards(rows)
}

// ListForEmployee returns one employee's timecards, newest first
func (r *TimecardRepository) ListForEmployee(
	ctx context.Context, employeeID string, filter database.TimecardFilter,
) ([]Timecard, error) {
	query, args := buildListQuery(employeeID, filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list employee timecards: %w", err)
	}
	defer rows.Close()

	return scanTimecards(rows)
}

// DeleteOlderThan removes records with timestamps before the cutoff
func (r *TimecardRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, "DELETE FROM timecards WHERE ts < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete timecards: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

// Timecard aliases the shared record type for scan helpers.
type Timecard = database.Timecard

// buildListQuery assembles the timecard listing query with optional
// employee, start and end filters.
func buildListQuery(employeeID string, filter database.TimecardFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, employee_id, employee_name, ts, recognition_method, entry_type, created_at
		FROM timecards
	`)

	var conds []string
	var args []any

	if employeeID != "" {
		args = append(args, employeeID)
		conds = append(conds, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		conds = append(conds, fmt.Sprintf("ts >= $%d", len(args)))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		conds = append(conds, fmt.Sprintf("ts <= $%d", len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY ts DESC LIMIT $%d", len(args)))

	return sb.String(), args
}

func scanTimecard(scanner interface{ Scan(...any) error }) (Timecard, error) {
	var tc Timecard
	err := scanner.Scan(
		&tc.ID,
		&tc.EmployeeID,
		&tc.EmployeeName,
		&tc.Timestamp,
		&tc.RecognitionMethod,
		&tc.EntryType,
		&tc.CreatedAt,
	)
	return tc, err
}

func scanTimecards(rows *sql.Rows) ([]Timecard, error) {
	var timecards []Timecard
	for rows.Next() {
		tc, err := scanTimecard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timecard: %w", err)
		}
		timecards = append(timecards, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timecards: %w", err)
	}
	return timecards, nil
}

// Verify interface compliance.
var _ database.TimecardStore = (*TimecardRepository)(nil)

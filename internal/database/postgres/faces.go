package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
)

// FaceRepository provides PostgreSQL-backed face embedding storage.
// It runs on its own pgx pool because pgvector values scan natively
// through the pgx protocol.
type FaceRepository struct {
	pool *pgxpool.Pool
}

// ConnectFacePool creates the pgx connection pool used for embedding queries.
func ConnectFacePool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// NewFaceRepository creates a new face repository
func NewFaceRepository(pool *pgxpool.Pool) *FaceRepository {
	return &FaceRepository{pool: pool}
}

// Append stores one more embedding for an employee
func (r *FaceRepository) Append(ctx context.Context, employeeID string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO employee_faces (employee_id, embedding, dim)
		VALUES ($1, $2, $3)
	`, employeeID, vec, len(embedding))
	if err != nil {
		return fmt.Errorf("append face: %w", err)
	}
	return nil
}

// Count returns the number of embeddings stored for an employee
func (r *FaceRepository) Count(ctx context.Context, employeeID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM employee_faces WHERE employee_id = $1", employeeID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count faces: %w", err)
	}
	return count, nil
}

// ListForEmployee returns an employee's embeddings, oldest first
func (r *FaceRepository) ListForEmployee(ctx context.Context, employeeID string) ([]database.StoredFace, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, employee_id, embedding, dim, created_at
		FROM employee_faces
		WHERE employee_id = $1
		ORDER BY id
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("query faces: %w", err)
	}
	defer rows.Close()

	return scanStoredFaces(rows)
}

// All returns every stored embedding, oldest first
func (r *FaceRepository) All(ctx context.Context) ([]database.StoredFace, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, employee_id, embedding, dim, created_at
		FROM employee_faces
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query all faces: %w", err)
	}
	defer rows.Close()

	return scanStoredFaces(rows)
}

// Nearest finds the stored embeddings closest to the probe using the
// Euclidean distance operator, served by the HNSW index on the table.
func (r *FaceRepository) Nearest(ctx context.Context, embedding []float32, limit int) ([]database.FaceMatch, error) {
	vec := pgvector.NewVector(embedding)
	rows, err := r.pool.Query(ctx, `
		SELECT id, employee_id, embedding, dim, created_at, embedding <-> $1 AS distance
		FROM employee_faces
		ORDER BY embedding <-> $1
		LIMIT $2
	`, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("query nearest faces: %w", err)
	}
	defer rows.Close()

	var matches []database.FaceMatch
	for rows.Next() {
		var m database.FaceMatch
		var vec pgvector.Vector
		if err := rows.Scan(&m.Face.ID, &m.Face.EmployeeID, &vec, &m.Face.Dim, &m.Face.CreatedAt, &m.Distance); err != nil {
			return nil, fmt.Errorf("scan face match: %w", err)
		}
		m.Face.Embedding = vec.Slice()
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate face matches: %w", err)
	}
	return matches, nil
}

// faceRows abstracts pgx rows for scanning.
type faceRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanStoredFaces(rows faceRows) ([]database.StoredFace, error) {
	var faces []database.StoredFace
	for rows.Next() {
		var face database.StoredFace
		var vec pgvector.Vector
		if err := rows.Scan(&face.ID, &face.EmployeeID, &vec, &face.Dim, &face.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		face.Embedding = vec.Slice()
		faces = append(faces, face)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faces: %w", err)
	}
	return faces, nil
}

// Verify interface compliance.
var _ database.FaceStore = (*FaceRepository)(nil)

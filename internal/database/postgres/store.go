package postgres

import (
	"context"
	"fmt"

	"github.com/WilliamWachholz/CameraTimeCard/internal/config"
	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
)

// Open connects to PostgreSQL, runs pending migrations and assembles the
// backend store. Embedding queries use a separate pgx pool.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*database.Store, error) {
	pool, err := NewPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	facePool, err := ConnectFacePool(ctx, cfg.URL)
	if err != nil {
		pool.Close()
		return nil, err
	}

	store := &database.Store{
		Employees: NewEmployeeRepository(pool),
		Timecards: NewTimecardRepository(pool),
		Faces:     NewFaceRepository(facePool),
	}
	store.AddCloser(pool.Close)
	store.AddCloser(func() error {
		facePool.Close()
		return nil
	})
	return store, nil
}

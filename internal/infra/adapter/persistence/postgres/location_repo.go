package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"newsatlas/internal/domain/entity"
	"newsatlas/internal/repository"
)

type LocationRepo struct{ db *sql.DB }

func NewLocationRepo(db *sql.DB) repository.LocationRepository {
	return &LocationRepo{db: db}
}

func (repo *LocationRepo) GetByName(ctx context.Context, name string) (*entity.Location, error) {
	const query = `
SELECT id, name, latitude, longitude, created_at
FROM locations
WHERE name = $1
LIMIT 1`
	var loc entity.Location
	err := repo.db.QueryRowContext(ctx, query, name).Scan(
		&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByName: %w", err)
	}
	return &loc, nil
}

// CreateOrGet inserts the location; when another writer got there first
// the insert is a no-op and the existing row is read back. The unique
// constraint on name guarantees one row per place name either way.
func (repo *LocationRepo) CreateOrGet(ctx context.Context, location *entity.Location) (*entity.Location, bool, error) {
	const query = `
INSERT INTO locations (name, latitude, longitude)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO NOTHING
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		location.Name, location.Latitude, location.Longitude,
	).Scan(&location.ID)
	if err == nil {
		return location, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("CreateOrGet: %w", err)
	}

	existing, err := repo.GetByName(ctx, location.Name)
	if err != nil {
		return nil, false, fmt.Errorf("CreateOrGet: %w", err)
	}
	if existing == nil {
		// Conflict row deleted between insert and read; extremely unlikely.
		return nil, false, fmt.Errorf("CreateOrGet: location %q vanished after conflict", location.Name)
	}
	return existing, false, nil
}

func (repo *LocationRepo) CountLocations(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM locations`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountLocations: %w", err)
	}
	return count, nil
}

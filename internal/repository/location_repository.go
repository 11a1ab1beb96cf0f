package repository

import (
	"context"

	"newsatlas/internal/domain/entity"
)

type LocationRepository interface {
	// GetByName returns the location stored under the exact name,
	// or nil if none exists.
	GetByName(ctx context.Context, name string) (*entity.Location, error)
	// CreateOrGet inserts the location, or returns the existing row when a
	// concurrent writer created one with the same name first. Uniqueness by
	// name always holds; the returned bool reports whether this call
	// created the row.
	CreateOrGet(ctx context.Context, location *entity.Location) (*entity.Location, bool, error)
	CountLocations(ctx context.Context) (int64, error)
}

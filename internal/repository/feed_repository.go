package repository

import (
	"context"
	"time"

	"newsatlas/internal/domain/entity"
)

// FeedRepository is the feed registry. The ingestion pipeline only reads
// from it; rows are created by the registration helper.
type FeedRepository interface {
	// ListActive returns all feeds with status 'active'.
	ListActive(ctx context.Context) ([]*entity.Feed, error)
	// GetByURL returns the feed registered under url, or nil if none exists.
	GetByURL(ctx context.Context, url string) (*entity.Feed, error)
	Create(ctx context.Context, feed *entity.Feed) error
	// TouchFetchedAt records the time the feed was last successfully processed.
	TouchFetchedAt(ctx context.Context, id int64, t time.Time) error
}

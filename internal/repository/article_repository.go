package repository

import (
	"context"

	"newsatlas/internal/domain/entity"
)

type ArticleRepository interface {
	// ExistsByHash reports whether an article with the given content hash
	// is already stored. This is a pre-check optimization only; the unique
	// constraint enforced by CreateIfAbsent is the actual guarantee.
	ExistsByHash(ctx context.Context, contentHash string) (bool, error)
	// CreateIfAbsent inserts the article unless its content hash already
	// exists, in which case the insert is a no-op (never an overwrite).
	// On success the article's ID is populated. The returned bool reports
	// whether a new row was created.
	CreateIfAbsent(ctx context.Context, article *entity.Article) (bool, error)
	// LinkLocation records that the article mentions the location.
	// Inserting the same (article, location) pair twice is a no-op.
	LinkLocation(ctx context.Context, articleID, locationID int64) error
	CountArticles(ctx context.Context) (int64, error)
}

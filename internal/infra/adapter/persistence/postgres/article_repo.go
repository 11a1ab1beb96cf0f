package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"newsatlas/internal/domain/entity"
	"newsatlas/internal/repository"
)

type ArticleRepo struct{ db *sql.DB }

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

func (repo *ArticleRepo) ExistsByHash(ctx context.Context, contentHash string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM articles WHERE content_hash = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, contentHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByHash: %w", err)
	}
	return exists, nil
}

// CreateIfAbsent inserts the article unless its content hash is taken.
// ON CONFLICT DO NOTHING makes concurrent duplicate inserts a no-op
// instead of a unique violation; when no row comes back the article
// already existed.
func (repo *ArticleRepo) CreateIfAbsent(ctx context.Context, article *entity.Article) (bool, error) {
	const query = `
INSERT INTO articles (feed_id, title, description, link, content_hash, language, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (content_hash) DO NOTHING
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		article.FeedID, article.Title, article.Description,
		article.Link, article.ContentHash, article.Language,
		article.PublishedAt,
	).Scan(&article.ID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("CreateIfAbsent: %w", err)
	}
	return true, nil
}

func (repo *ArticleRepo) LinkLocation(ctx context.Context, articleID, locationID int64) error {
	const query = `
INSERT INTO article_locations (article_id, location_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, articleID, locationID); err != nil {
		return fmt.Errorf("LinkLocation: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) CountArticles(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM articles`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountArticles: %w", err)
	}
	return count, nil
}

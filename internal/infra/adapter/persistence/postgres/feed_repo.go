package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"newsatlas/internal/domain/entity"
	"newsatlas/internal/repository"
)

type FeedRepo struct{ db *sql.DB }

func NewFeedRepo(db *sql.DB) repository.FeedRepository {
	return &FeedRepo{db: db}
}

func scanFeed(rows *sql.Rows) (*entity.Feed, error) {
	var feed entity.Feed
	var lastFetched sql.NullTime
	if err := rows.Scan(
		&feed.ID, &feed.URL, &feed.Name, &feed.Language, &feed.Status,
		&lastFetched, &feed.CreatedAt, &feed.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastFetched.Valid {
		feed.LastFetchedAt = &lastFetched.Time
	}
	return &feed, nil
}

func (repo *FeedRepo) ListActive(ctx context.Context) ([]*entity.Feed, error) {
	const query = `
SELECT id, url, name, language, status, last_fetched_at, created_at, updated_at
FROM rss_feeds
WHERE status = 'active'
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	feeds := make([]*entity.Feed, 0, 20)
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive: %w", err)
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

func (repo *FeedRepo) GetByURL(ctx context.Context, url string) (*entity.Feed, error) {
	const query = `
SELECT id, url, name, language, status, last_fetched_at, created_at, updated_at
FROM rss_feeds
WHERE url = $1
LIMIT 1`
	var feed entity.Feed
	var lastFetched sql.NullTime
	err := repo.db.QueryRowContext(ctx, query, url).Scan(
		&feed.ID, &feed.URL, &feed.Name, &feed.Language, &feed.Status,
		&lastFetched, &feed.CreatedAt, &feed.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByURL: %w", err)
	}
	if lastFetched.Valid {
		feed.LastFetchedAt = &lastFetched.Time
	}
	return &feed, nil
}

func (repo *FeedRepo) Create(ctx context.Context, feed *entity.Feed) error {
	const query = `
INSERT INTO rss_feeds (url, name, language, status)
VALUES ($1, $2, $3, $4)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		feed.URL, feed.Name, feed.Language, feed.Status,
	).Scan(&feed.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *FeedRepo) TouchFetchedAt(ctx context.Context, id int64, t time.Time) error {
	const query = `
UPDATE rss_feeds SET
       last_fetched_at = $1,
       updated_at      = now()
WHERE id = $2`
	result, err := repo.db.ExecContext(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("TouchFetchedAt: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("TouchFetchedAt: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("TouchFetchedAt: feed %d not found", id)
	}
	return nil
}

package entity

import "time"

// Article represents one ingested news article.
// Its identity is ContentHash, a digest of the canonical link, so
// link-normalization changes upstream do not produce duplicate rows.
// Articles are created exactly once and never mutated afterwards.
type Article struct {
	ID          int64
	FeedID      int64
	Title       string
	Description string
	Link        string
	ContentHash string
	Language    string
	PublishedAt time.Time
	CreatedAt   time.Time
}

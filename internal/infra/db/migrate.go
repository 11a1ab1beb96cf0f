package db

import (
	"database/sql"
	_ "embed"
)

//go:embed seeds/feeds.sql
var seedFeedsSQL string

// MigrateUp creates the schema. Statements are idempotent, so running it
// on every worker start is safe.
//
// Uniqueness constraints carry the pipeline's guarantees:
//   - rss_feeds.url: one registration per feed endpoint
//   - articles.content_hash: one article per canonical link
//   - locations.name: one coordinate row per place name
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS rss_feeds (
    id              BIGSERIAL PRIMARY KEY,
    url             TEXT NOT NULL UNIQUE,
    name            TEXT NOT NULL DEFAULT '',
    language        VARCHAR(16) NOT NULL DEFAULT '',
    status          VARCHAR(16) NOT NULL DEFAULT 'active',
    last_fetched_at TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id           BIGSERIAL PRIMARY KEY,
    feed_id      BIGINT NOT NULL REFERENCES rss_feeds(id),
    title        TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    link         TEXT NOT NULL,
    content_hash CHAR(64) NOT NULL UNIQUE,
    language     VARCHAR(16) NOT NULL DEFAULT '',
    published_at TIMESTAMPTZ NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS locations (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    latitude   DOUBLE PRECISION NOT NULL,
    longitude  DOUBLE PRECISION NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS article_locations (
    article_id  BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    location_id BIGINT NOT NULL REFERENCES locations(id),
    PRIMARY KEY (article_id, location_id)
)`); err != nil {
		return err
	}

	indexes := []string{
		// Feed listings order by recency
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_feed_id ON articles(feed_id)`,
		// Ingestion only reads active feeds
		`CREATE INDEX IF NOT EXISTS idx_rss_feeds_status ON rss_feeds(status) WHERE status = 'active'`,
		// Reverse lookup: articles mentioning a location
		`CREATE INDEX IF NOT EXISTS idx_article_locations_location_id ON article_locations(location_id)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// Seed feeds skip rows that already exist.
	if _, err := db.Exec(seedFeedsSQL); err != nil {
		return err
	}

	return nil
}

// MigrateDown drops the schema in reverse dependency order.
// Use with caution: this deletes all data.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS article_locations`,
		`DROP TABLE IF EXISTS articles`,
		`DROP TABLE IF EXISTS locations`,
		`DROP TABLE IF EXISTS rss_feeds`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

// Command addfeed registers an RSS/Atom feed URL in the feed registry so
// the ingestion worker picks it up on its next run.
//
// Usage:
//
//	addfeed <feed-url>
//
// The feed is fetched once to read its title and language; registration
// still succeeds with URL-derived defaults when the fetch fails.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mmcdole/gofeed"

	"newsatlas/internal/domain/entity"
	pgRepo "newsatlas/internal/infra/adapter/persistence/postgres"
	"newsatlas/internal/infra/db"
	"newsatlas/internal/observability/logging"
)

func main() {
	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <feed-url>\n", os.Args[0])
		os.Exit(2)
	}
	feedURL := os.Args[1]

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if err := db.MigrateUp(database); err != nil {
		logger.Error("migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	feedRepo := pgRepo.NewFeedRepo(database)

	existing, err := feedRepo.GetByURL(ctx, feedURL)
	if err != nil {
		logger.Error("failed to check feed registry", slog.Any("error", err))
		os.Exit(1)
	}
	if existing != nil {
		logger.Info("feed already registered",
			slog.Int64("id", existing.ID),
			slog.String("url", existing.URL),
			slog.String("status", existing.Status))
		return
	}

	feed := &entity.Feed{
		URL:      feedURL,
		Status:   entity.FeedStatusActive,
		Language: "en",
	}
	fillFeedMetadata(ctx, logger, feed)

	if err := feed.Validate(); err != nil {
		logger.Error("invalid feed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := feedRepo.Create(ctx, feed); err != nil {
		logger.Error("failed to register feed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("feed registered",
		slog.Int64("id", feed.ID),
		slog.String("url", feed.URL),
		slog.String("name", feed.Name),
		slog.String("language", feed.Language))
}

// fillFeedMetadata fetches the feed once and copies its title and language
// into the entity. On fetch or parse failure the feed is still registered
// with the URL host as its name.
func fillFeedMetadata(ctx context.Context, logger *slog.Logger, feed *entity.Feed) {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: 15 * time.Second}

	parsed, err := parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		logger.Warn("could not fetch feed metadata, using defaults",
			slog.String("url", feed.URL),
			slog.Any("error", err))
		feed.Name = hostOf(feed.URL)
		return
	}

	feed.Name = parsed.Title
	if feed.Name == "" {
		feed.Name = hostOf(feed.URL)
	}
	if parsed.Language != "" {
		feed.Language = parsed.Language
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

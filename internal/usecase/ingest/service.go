// Package ingest implements the news-feed ingestion pipeline use case.
// It orchestrates fetching registered feeds, deduplicating articles,
// extracting place names, and resolving them to persisted locations.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"newsatlas/internal/domain/entity"
	"newsatlas/internal/observability/metrics"
	"newsatlas/internal/repository"
)

// Entry represents a single item from an RSS/Atom feed.
type Entry struct {
	Title       string
	Description string
	Link        string
	PublishedAt time.Time
}

// FeedReader is an interface for fetching and parsing RSS/Atom feeds.
// Implementations must wrap transport failures in ErrFeedUnavailable and
// parse failures in ErrFeedMalformed.
type FeedReader interface {
	Fetch(ctx context.Context, url string) ([]Entry, error)
}

// PlaceExtractor extracts geographic place names from free text.
// The returned slice contains each distinct name at most once.
type PlaceExtractor interface {
	ExtractPlaces(text string) ([]string, error)
}

// GeoResult holds the coordinates returned by a geocoding lookup.
type GeoResult struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a place name to coordinates via an external service.
// A (nil, nil) return means the service had no candidate for the name.
type Geocoder interface {
	Lookup(ctx context.Context, name string) (*GeoResult, error)
}

// Config holds configuration for the ingestion pipeline.
type Config struct {
	// FeedParallelism is the maximum number of feeds processed concurrently.
	FeedParallelism int
}

// Service provides the feed ingestion use case.
type Service struct {
	FeedRepo     repository.FeedRepository
	ArticleRepo  repository.ArticleRepository
	LocationRepo repository.LocationRepository
	FeedReader   FeedReader
	Extractor    PlaceExtractor
	Geocoder     Geocoder
	cfg          Config
}

// NewService creates a new ingest Service with the provided dependencies.
func NewService(
	feedRepo repository.FeedRepository,
	articleRepo repository.ArticleRepository,
	locationRepo repository.LocationRepository,
	feedReader FeedReader,
	extractor PlaceExtractor,
	geocoder Geocoder,
	cfg Config,
) *Service {
	if cfg.FeedParallelism <= 0 {
		cfg.FeedParallelism = 1
	}
	return &Service{
		FeedRepo:     feedRepo,
		ArticleRepo:  articleRepo,
		LocationRepo: locationRepo,
		FeedReader:   feedReader,
		Extractor:    extractor,
		Geocoder:     geocoder,
		cfg:          cfg,
	}
}

// RunStats contains statistics about one ingestion run.
type RunStats struct {
	Feeds               int
	FeedsSkipped        int64
	Entries             int64
	ArticlesCreated     int64
	ArticlesDuplicated  int64
	LocationsCreated    int64
	LocationsUnresolved int64
	EdgesCreated        int64
	EdgeFailures        int64
	Duration            time.Duration
}

// IngestAll runs one ingestion pass over every active feed.
//
// Feeds are processed concurrently up to Config.FeedParallelism. A failure
// in one feed, entry, or place name never aborts the run; it is logged,
// counted, and processing continues. Only context cancellation and the
// initial feed listing stop the run.
func (s *Service) IngestAll(ctx context.Context, logger *slog.Logger) (*RunStats, error) {
	startAll := time.Now()
	stats := &RunStats{}

	feeds, err := s.FeedRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active feeds: %w", err)
	}
	stats.Feeds = len(feeds)

	// One resolver per run so each distinct place name is geocoded at
	// most once, no matter how many articles mention it.
	resolver := NewResolver(s.LocationRepo, s.Geocoder, logger)

	eg := &errgroup.Group{}
	eg.SetLimit(s.cfg.FeedParallelism)
	for _, feed := range feeds {
		feed := feed
		eg.Go(func() error {
			s.processFeed(ctx, logger, feed, resolver, stats)
			return nil
		})
	}
	// processFeed never returns an error; Wait just joins the group.
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("ingestion interrupted: %w", err)
	}

	stats.LocationsCreated = resolver.Created()
	stats.LocationsUnresolved = resolver.Unresolved()
	stats.Duration = time.Since(startAll)

	s.updateGauges(ctx, logger)

	logger.Info("ingestion run completed",
		slog.Int("feeds", stats.Feeds),
		slog.Int64("feeds_skipped", stats.FeedsSkipped),
		slog.Int64("entries", stats.Entries),
		slog.Int64("articles_created", stats.ArticlesCreated),
		slog.Int64("articles_duplicated", stats.ArticlesDuplicated),
		slog.Int64("locations_created", stats.LocationsCreated),
		slog.Int64("locations_unresolved", stats.LocationsUnresolved),
		slog.Int64("edges_created", stats.EdgesCreated),
		slog.Int64("edge_failures", stats.EdgeFailures),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// processFeed ingests a single feed. All failures are logged and counted;
// none propagate to the caller.
func (s *Service) processFeed(ctx context.Context, logger *slog.Logger, feed *entity.Feed, resolver *Resolver, stats *RunStats) {
	feedStart := time.Now()

	entries, err := s.FeedReader.Fetch(ctx, feed.URL)
	if err != nil {
		errType := "fetch_failed"
		if isMalformed(err) {
			errType = "parse_failed"
		}
		logger.Warn("failed to fetch feed",
			slog.Int64("feed_id", feed.ID),
			slog.String("feed_url", feed.URL),
			slog.String("error_type", errType),
			slog.Any("error", err))
		metrics.RecordFeedFetchError(feed.ID, errType)
		atomic.AddInt64(&stats.FeedsSkipped, 1)
		return
	}

	var created, duplicated int64
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		atomic.AddInt64(&stats.Entries, 1)
		s.processEntry(ctx, logger, feed, entry, resolver, stats, &created, &duplicated)
	}

	// The timestamp update must survive a run that is cancelled between
	// the entry loop and here.
	safeCtx := context.WithoutCancel(ctx)
	if err := s.FeedRepo.TouchFetchedAt(safeCtx, feed.ID, time.Now()); err != nil {
		logger.Warn("failed to update feed fetched timestamp",
			slog.Int64("feed_id", feed.ID),
			slog.Any("error", err))
	}

	feedDuration := time.Since(feedStart)
	metrics.RecordFeedIngest(feed.ID, feedDuration)

	logger.Info("feed ingested",
		slog.Int64("feed_id", feed.ID),
		slog.String("feed_name", feed.Name),
		slog.Int("entries", len(entries)),
		slog.Int64("created", created),
		slog.Int64("duplicated", duplicated),
		slog.Duration("duration", feedDuration),
	)
}

// processEntry ingests one feed entry: dedupe, extract, resolve, persist.
func (s *Service) processEntry(
	ctx context.Context,
	logger *slog.Logger,
	feed *entity.Feed,
	entry Entry,
	resolver *Resolver,
	stats *RunStats,
	created, duplicated *int64,
) {
	if entry.Link == "" {
		logger.Warn("skipping entry without link",
			slog.Int64("feed_id", feed.ID),
			slog.String("title", entry.Title))
		return
	}

	hash := ContentHash(entry.Link)

	// Cheap pre-check; the unique constraint on content_hash remains the
	// actual guarantee against concurrent inserts.
	exists, err := s.ArticleRepo.ExistsByHash(ctx, hash)
	if err != nil {
		logger.Warn("failed to check article existence",
			slog.Int64("feed_id", feed.ID),
			slog.String("link", entry.Link),
			slog.Any("error", err))
		return
	}
	if exists {
		atomic.AddInt64(&stats.ArticlesDuplicated, 1)
		atomic.AddInt64(duplicated, 1)
		metrics.RecordArticleIngested(metrics.OutcomeDuplicate)
		return
	}

	locations := s.resolveEntryLocations(ctx, logger, feed, entry, resolver, stats)

	publishedAt := entry.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}

	article := &entity.Article{
		FeedID:      feed.ID,
		Title:       entry.Title,
		Description: entry.Description,
		Link:        entry.Link,
		ContentHash: hash,
		Language:    feed.Language,
		PublishedAt: publishedAt,
	}
	inserted, err := s.ArticleRepo.CreateIfAbsent(ctx, article)
	if err != nil {
		logger.Warn("failed to store article",
			slog.Int64("feed_id", feed.ID),
			slog.String("link", entry.Link),
			slog.Any("error", err))
		metrics.RecordArticleIngested(metrics.OutcomeFailed)
		return
	}
	if !inserted {
		// Lost a race with a concurrent insert of the same link.
		atomic.AddInt64(&stats.ArticlesDuplicated, 1)
		atomic.AddInt64(duplicated, 1)
		metrics.RecordArticleIngested(metrics.OutcomeDuplicate)
		return
	}
	atomic.AddInt64(&stats.ArticlesCreated, 1)
	atomic.AddInt64(created, 1)
	metrics.RecordArticleIngested(metrics.OutcomeCreated)

	for _, loc := range locations {
		if err := s.ArticleRepo.LinkLocation(ctx, article.ID, loc.ID); err != nil {
			logger.Warn("failed to link article to location",
				slog.Int64("article_id", article.ID),
				slog.Int64("location_id", loc.ID),
				slog.Any("error", err))
			atomic.AddInt64(&stats.EdgeFailures, 1)
			continue
		}
		atomic.AddInt64(&stats.EdgesCreated, 1)
	}
}

// resolveEntryLocations extracts place names from the entry text and
// resolves each one. Extraction and resolution failures degrade to an
// article without locations; they never block the article itself.
func (s *Service) resolveEntryLocations(
	ctx context.Context,
	logger *slog.Logger,
	feed *entity.Feed,
	entry Entry,
	resolver *Resolver,
	stats *RunStats,
) []*entity.Location {
	text := strings.TrimSpace(entry.Title + " " + entry.Description)
	if text == "" {
		return nil
	}

	extractStart := time.Now()
	names, err := s.Extractor.ExtractPlaces(text)
	if err != nil {
		logger.Warn("place extraction failed",
			slog.Int64("feed_id", feed.ID),
			slog.String("link", entry.Link),
			slog.Any("error", err))
		return nil
	}
	metrics.RecordExtraction(time.Since(extractStart), len(names))

	locations := make([]*entity.Location, 0, len(names))
	for _, name := range names {
		loc, err := resolver.Resolve(ctx, name)
		if err != nil {
			if !isUnresolved(err) {
				logger.Warn("location resolution failed",
					slog.String("name", name),
					slog.Any("error", err))
			}
			continue
		}
		locations = append(locations, loc)
	}
	return locations
}

// updateGauges refreshes the table-size gauges after a run.
func (s *Service) updateGauges(ctx context.Context, logger *slog.Logger) {
	safeCtx := context.WithoutCancel(ctx)
	if n, err := s.ArticleRepo.CountArticles(safeCtx); err == nil {
		metrics.UpdateArticlesTotal(n)
	} else {
		logger.Warn("failed to count articles", slog.Any("error", err))
	}
	if n, err := s.LocationRepo.CountLocations(safeCtx); err == nil {
		metrics.UpdateLocationsTotal(n)
	} else {
		logger.Warn("failed to count locations", slog.Any("error", err))
	}
}

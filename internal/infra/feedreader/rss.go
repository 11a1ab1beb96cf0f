// Package feedreader provides the RSS/Atom feed reader implementation.
// It uses the gofeed library to parse feed content with reliability patterns.
package feedreader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"newsatlas/internal/resilience/circuitbreaker"
	"newsatlas/internal/resilience/retry"
	"newsatlas/internal/usecase/ingest"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

const defaultUserAgent = "NewsAtlasBot"

// maxFeedBytes caps the downloaded body size. Feeds larger than this are
// treated as malformed.
const maxFeedBytes = 10 << 20

// Reader implements ingest.FeedReader using the gofeed library.
// It includes circuit breaker and retry logic for improved reliability.
type Reader struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	userAgent      string
}

// New creates a new Reader with the given HTTP client.
// It automatically configures circuit breaker and retry logic.
func New(client *http.Client) *Reader {
	return &Reader{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		userAgent:      defaultUserAgent,
	}
}

// Fetch retrieves and parses an RSS/Atom feed from the given URL.
//
// Transport failures and non-success status codes surface as
// ingest.ErrFeedUnavailable; a body that cannot be parsed surfaces as
// ingest.ErrFeedMalformed. The download goes through retry and circuit
// breaker; parsing does not, since a broken document stays broken.
func (r *Reader) Fetch(ctx context.Context, feedURL string) ([]ingest.Entry, error) {
	var body string

	retryErr := retry.WithBackoff(ctx, r.retryConfig, func() error {
		cbResult, err := r.circuitBreaker.Execute(func() (interface{}, error) {
			return r.download(ctx, feedURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("service", "feed-fetch"),
					slog.String("url", feedURL),
					slog.String("state", r.circuitBreaker.State().String()))
			}
			return err
		}
		body = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", feedURL, ingest.ErrFeedUnavailable, retryErr)
	}

	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", feedURL, ingest.ErrFeedMalformed, err)
	}

	entries := make([]ingest.Entry, 0, len(feed.Items))
	for _, it := range feed.Items {
		entry := ingest.Entry{
			Title:       it.Title,
			Description: it.Description,
			Link:        it.Link,
		}
		if it.PublishedParsed != nil {
			entry.PublishedAt = *it.PublishedParsed
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// download fetches the raw feed body without retry or circuit breaker.
func (r *Reader) download(ctx context.Context, feedURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

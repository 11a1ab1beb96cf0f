// Package entity defines the core domain entities for the news ingestion
// pipeline: feeds, articles, locations and the article-location association,
// along with their validation rules and domain-specific errors.
package entity

import (
	"fmt"
	"net/url"
	"time"
)

// Feed status values. The ingestion pipeline only ever reads active feeds.
const (
	FeedStatusActive   = "active"
	FeedStatusInactive = "inactive"
)

// Feed represents a registered syndication feed source.
// Its identity is the feed URL, which is unique across the system.
// Feeds are created by the registration helper and consumed read-only
// by the ingestion pipeline.
type Feed struct {
	ID            int64
	URL           string
	Name          string
	Language      string
	Status        string
	LastFetchedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive reports whether the feed is eligible for ingestion.
func (f *Feed) IsActive() bool {
	return f.Status == FeedStatusActive
}

// Validate validates the Feed entity fields.
func (f *Feed) Validate() error {
	if f.URL == "" {
		return &ValidationError{Field: "url", Message: "cannot be empty"}
	}
	u, err := url.Parse(f.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: "url", Message: fmt.Sprintf("not an absolute URL: %q", f.URL)}
	}
	switch f.Status {
	case FeedStatusActive, FeedStatusInactive:
	default:
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", f.Status)}
	}
	return nil
}

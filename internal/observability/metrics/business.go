package metrics

import (
	"fmt"
	"time"
)

// Outcome labels for RecordArticleIngested.
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// Result labels for RecordGeocodeLookup.
const (
	GeocodeCacheHit   = "cache_hit"
	GeocodeResolved   = "resolved"
	GeocodeUnresolved = "unresolved"
	GeocodeError      = "error"
)

// RecordArticleIngested records the outcome of processing one feed entry.
func RecordArticleIngested(status string) {
	ArticlesIngestedTotal.WithLabelValues(status).Inc()
}

// RecordFeedFetchError records a feed skipped during a run.
// errorType distinguishes transport failures from parse failures.
func RecordFeedFetchError(feedID int64, errorType string) {
	FeedFetchErrorsTotal.WithLabelValues(
		fmt.Sprintf("%d", feedID),
		errorType,
	).Inc()
}

// RecordFeedIngest records the duration of one feed's processing.
func RecordFeedIngest(feedID int64, duration time.Duration) {
	FeedIngestDuration.WithLabelValues(
		fmt.Sprintf("%d", feedID),
	).Observe(duration.Seconds())
}

// RecordGeocodeLookup records the result of one place-name resolution.
func RecordGeocodeLookup(result string) {
	GeocodeLookupsTotal.WithLabelValues(result).Inc()
}

// RecordGeocodeDuration records the latency of an external geocoding call.
func RecordGeocodeDuration(duration time.Duration) {
	GeocodeDuration.Observe(duration.Seconds())
}

// RecordExtraction records the latency and yield of one NER pass.
func RecordExtraction(duration time.Duration, entities int) {
	ExtractionDuration.Observe(duration.Seconds())
	EntitiesExtracted.Observe(float64(entities))
}

// UpdateArticlesTotal updates the article count gauge.
// Refreshed after each pipeline run.
func UpdateArticlesTotal(count int64) {
	ArticlesTotal.Set(float64(count))
}

// UpdateLocationsTotal updates the location count gauge.
// Refreshed after each pipeline run.
func UpdateLocationsTotal(count int64) {
	LocationsTotal.Set(float64(count))
}

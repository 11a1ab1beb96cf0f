// Package metrics provides centralized Prometheus metrics for the
// ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion metrics track the per-feed pipeline.
var (
	// ArticlesIngestedTotal counts processed entries by outcome
	ArticlesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_ingested_total",
			Help: "Total number of feed entries processed, by outcome",
		},
		[]string{"status"}, // status: created, duplicate, failed
	)

	// FeedFetchErrorsTotal counts feeds skipped because of fetch problems
	FeedFetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_errors_total",
			Help: "Total number of feed fetch failures",
		},
		[]string{"feed_id", "error_type"}, // error_type: unavailable, malformed
	)

	// FeedIngestDuration measures time to process one feed end to end
	FeedIngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_ingest_duration_seconds",
			Help:    "Time taken to fetch and process a feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"feed_id"},
	)

	// ArticlesTotal tracks the total number of articles in the database
	ArticlesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_total",
			Help: "Total number of articles in the database",
		},
	)

	// LocationsTotal tracks the total number of locations in the database
	LocationsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "locations_total",
			Help: "Total number of locations in the database",
		},
	)
)

// Geocoding metrics track the resolve path of the pipeline.
var (
	// GeocodeLookupsTotal counts place-name resolutions by result
	GeocodeLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_lookups_total",
			Help: "Total number of place-name resolutions",
		},
		[]string{"result"}, // result: cache_hit, resolved, unresolved, error
	)

	// GeocodeDuration measures external geocoding call latency
	GeocodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geocode_duration_seconds",
			Help:    "Time taken for an external geocoding lookup",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)
)

// Extraction metrics track the NER step.
var (
	// ExtractionDuration measures entity extraction latency per entry
	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "entity_extraction_duration_seconds",
			Help:    "Time taken to extract place names from an entry",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	// EntitiesExtracted measures the number of place names found per entry
	EntitiesExtracted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "entities_extracted_per_entry",
			Help:    "Number of distinct place names extracted per entry",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)
)

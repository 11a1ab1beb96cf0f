package ingest

import "errors"

// Predefined errors for the ingestion pipeline.
var (
	// ErrFeedUnavailable indicates the feed endpoint could not be reached
	// or returned a non-success status.
	ErrFeedUnavailable = errors.New("feed unavailable")

	// ErrFeedMalformed indicates the feed body was fetched but could not
	// be parsed as RSS or Atom.
	ErrFeedMalformed = errors.New("feed malformed")

	// ErrLocationUnresolved indicates a place name could not be resolved
	// to coordinates.
	ErrLocationUnresolved = errors.New("location unresolved")
)

func isMalformed(err error) bool {
	return errors.Is(err, ErrFeedMalformed)
}

func isUnresolved(err error) bool {
	return errors.Is(err, ErrLocationUnresolved)
}

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"newsatlas/internal/domain/entity"
	"newsatlas/internal/observability/metrics"
	"newsatlas/internal/repository"
)

// Resolver turns extracted place names into persisted Location rows.
//
// Resolution order is database first, external geocoder second. Results are
// memoized for the lifetime of the Resolver so each distinct name triggers
// at most one geocoder call per ingestion run, including names that fail to
// resolve. A Resolver is built per run and must not outlive it.
type Resolver struct {
	locations repository.LocationRepository
	geocoder  Geocoder
	logger    *slog.Logger

	group singleflight.Group

	mu   sync.Mutex
	memo map[string]*entity.Location // nil value = known unresolved

	created    atomic.Int64
	unresolved atomic.Int64
}

// NewResolver creates a Resolver for a single ingestion run.
func NewResolver(locations repository.LocationRepository, geocoder Geocoder, logger *slog.Logger) *Resolver {
	return &Resolver{
		locations: locations,
		geocoder:  geocoder,
		logger:    logger,
		memo:      make(map[string]*entity.Location),
	}
}

// Resolve returns the Location for the given place name, creating it if
// necessary. It returns ErrLocationUnresolved when the geocoder has no
// candidate for the name; that outcome is memoized so the name is not
// retried within the run. Transient errors are not memoized.
func (r *Resolver) Resolve(ctx context.Context, name string) (*entity.Location, error) {
	r.mu.Lock()
	if loc, ok := r.memo[name]; ok {
		r.mu.Unlock()
		if loc == nil {
			return nil, fmt.Errorf("Resolve %q: %w", name, ErrLocationUnresolved)
		}
		return loc, nil
	}
	r.mu.Unlock()

	// Collapse concurrent requests for the same name into one lookup.
	v, err, _ := r.group.Do(name, func() (interface{}, error) {
		return r.resolveOnce(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	loc := v.(*entity.Location)
	if loc == nil {
		return nil, fmt.Errorf("Resolve %q: %w", name, ErrLocationUnresolved)
	}
	return loc, nil
}

// resolveOnce performs the actual lookup chain and memoizes the outcome.
// A nil location with nil error means the name is known unresolved.
func (r *Resolver) resolveOnce(ctx context.Context, name string) (*entity.Location, error) {
	// Database cache first: a previously resolved name never hits the
	// geocoder again, across runs.
	loc, err := r.locations.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	if loc != nil {
		metrics.RecordGeocodeLookup(metrics.GeocodeCacheHit)
		r.memoize(name, loc)
		return loc, nil
	}

	start := time.Now()
	result, err := r.geocoder.Lookup(ctx, name)
	metrics.RecordGeocodeDuration(time.Since(start))
	if err != nil {
		metrics.RecordGeocodeLookup(metrics.GeocodeError)
		r.logger.Warn("geocoder lookup failed",
			slog.String("name", name),
			slog.Any("error", err))
		// Treat geocoder failures like a miss for this run but do not
		// memoize them; a later run may succeed.
		r.unresolved.Add(1)
		return nil, fmt.Errorf("resolve %q: %w", name, ErrLocationUnresolved)
	}
	if result == nil {
		metrics.RecordGeocodeLookup(metrics.GeocodeUnresolved)
		r.unresolved.Add(1)
		r.memoize(name, nil)
		return nil, nil
	}

	loc = &entity.Location{
		Name:      name,
		Latitude:  result.Latitude,
		Longitude: result.Longitude,
	}
	loc, createdNew, err := r.locations.CreateOrGet(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	if createdNew {
		r.created.Add(1)
	}
	metrics.RecordGeocodeLookup(metrics.GeocodeResolved)
	r.memoize(name, loc)
	return loc, nil
}

func (r *Resolver) memoize(name string, loc *entity.Location) {
	r.mu.Lock()
	r.memo[name] = loc
	r.mu.Unlock()
}

// Created returns the number of locations this resolver inserted.
func (r *Resolver) Created() int64 {
	return r.created.Load()
}

// Unresolved returns the number of lookups that produced no coordinates.
func (r *Resolver) Unresolved() int64 {
	return r.unresolved.Load()
}

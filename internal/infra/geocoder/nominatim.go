// Package geocoder resolves place names to coordinates using the
// OpenStreetMap Nominatim search API.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"newsatlas/internal/resilience/circuitbreaker"
	"newsatlas/internal/resilience/retry"
	"newsatlas/internal/usecase/ingest"

	"github.com/sony/gobreaker"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "NewsAtlasBot (newsatlas ingestion worker)"
)

// maxResponseBytes caps the geocoder response body size.
const maxResponseBytes = 1 << 20

// Nominatim implements ingest.Geocoder against a Nominatim endpoint.
//
// The public endpoint's usage policy allows at most one request per second,
// enforced here with a rate limiter shared by all callers. A circuit
// breaker shields the endpoint when it starts failing.
type Nominatim struct {
	client         *http.Client
	baseURL        string
	userAgent      string
	limiter        *rate.Limiter
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewNominatim creates a geocoder against baseURL. An empty baseURL selects
// the public OpenStreetMap endpoint.
func NewNominatim(client *http.Client, baseURL string) *Nominatim {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Nominatim{
		client:         client,
		baseURL:        baseURL,
		userAgent:      defaultUserAgent,
		limiter:        rate.NewLimiter(rate.Limit(1), 1),
		circuitBreaker: circuitbreaker.New(circuitbreaker.GeocodeConfig()),
	}
}

// candidate is the subset of a Nominatim search result we consume.
// Coordinates arrive as strings.
type candidate struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Lookup resolves a place name to coordinates. It returns (nil, nil) when
// the service has no candidate for the name. When the service returns
// several candidates only the first is used.
func (n *Nominatim) Lookup(ctx context.Context, name string) (*ingest.GeoResult, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode rate wait: %w", err)
	}

	cbResult, err := n.circuitBreaker.Execute(func() (interface{}, error) {
		return n.search(ctx, name)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("geocode circuit breaker open, request rejected",
				slog.String("service", "geocode"),
				slog.String("name", name),
				slog.String("state", n.circuitBreaker.State().String()))
		}
		return nil, fmt.Errorf("geocode %q: %w", name, err)
	}

	candidates := cbResult.([]candidate)
	if len(candidates) == 0 {
		return nil, nil
	}

	first := candidates[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: parse lat %q: %w", name, first.Lat, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: parse lon %q: %w", name, first.Lon, err)
	}

	return &ingest.GeoResult{Latitude: lat, Longitude: lon}, nil
}

// search performs one request against the /search endpoint.
func (n *Nominatim) search(ctx context.Context, name string) ([]candidate, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("limit", "1")
	query.Set("q", name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	if err := json.Unmarshal(body, &candidates); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return candidates, nil
}

// Package geocoding resolves postal addresses to coordinates.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bradfitz/latlong"
	"github.com/stwalsh4118/estatehub/internal/config"
	"github.com/stwalsh4118/estatehub/internal/models"
	"googlemaps.github.io/maps"
)

var (
	// ErrNoResults is returned when the provider has no match for an address.
	ErrNoResults = errors.New("no geocoding results")

	// ErrDisabled is returned by the geocoder used when no API key is configured.
	ErrDisabled = errors.New("geocoding disabled")
)

// Geocoder resolves an address string to a coordinate.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (models.Point, error)
}

// GoogleGeocoder resolves addresses with the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client  *maps.Client
	timeout time.Duration
}

// NewGoogleGeocoder builds a geocoder for the given key. Extra client options
// are appended after the key, so tests can point the client at a fake server
// with maps.WithBaseURL.
func NewGoogleGeocoder(cfg config.GeocodingConfig, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("geocoding API key is required")
	}

	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	return &GoogleGeocoder{client: client, timeout: cfg.Timeout}, nil
}

// Resolve returns the coordinate of the best match for address.
func (g *GoogleGeocoder) Resolve(ctx context.Context, address string) (models.Point, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return models.Point{}, fmt.Errorf("%w: empty address", ErrNoResults)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return models.Point{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return models.Point{}, fmt.Errorf("%w for %q", ErrNoResults, address)
	}

	loc := results[0].Geometry.Location
	return models.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// Disabled is the Geocoder used when no provider is configured. Every call
// fails, which callers treat like any other geocoding failure.
type Disabled struct{}

// Resolve always returns ErrDisabled.
func (Disabled) Resolve(context.Context, string) (models.Point, error) {
	return models.Point{}, ErrDisabled
}

// New returns a GoogleGeocoder when an API key is configured and Disabled otherwise.
func New(cfg config.GeocodingConfig) (Geocoder, error) {
	if cfg.APIKey == "" {
		return Disabled{}, nil
	}
	return NewGoogleGeocoder(cfg)
}

// ZoneFor returns the IANA time zone at p, or nil when the point is at sea
// or otherwise unknown.
func ZoneFor(p models.Point) *string {
	name := latlong.LookupZoneName(p.Lat, p.Lng)
	if name == "" {
		return nil
	}
	return &name
}

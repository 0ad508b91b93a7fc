package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/estatehub/internal/config"
	"github.com/stwalsh4118/estatehub/internal/models"
	"googlemaps.github.io/maps"
)

const testKey = "AIzaTestKey"

// newFakeMaps serves the geocode endpoint with a canned body and records the
// address it was asked for.
func newFakeMaps(t *testing.T, body string, gotAddress *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/geocode/json" {
			http.NotFound(w, r)
			return
		}
		if gotAddress != nil {
			*gotAddress = r.URL.Query().Get("address")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGeocoder(t *testing.T, srv *httptest.Server) *GoogleGeocoder {
	t.Helper()
	g, err := NewGoogleGeocoder(
		config.GeocodingConfig{APIKey: testKey, Timeout: 2 * time.Second},
		maps.WithBaseURL(srv.URL),
	)
	require.NoError(t, err)
	return g
}

func TestGoogleGeocoder_Resolve(t *testing.T) {
	var asked string
	srv := newFakeMaps(t, `{
		"status": "OK",
		"results": [{"geometry": {"location": {"lat": 30.2672, "lng": -97.7431}}}]
	}`, &asked)
	g := newTestGeocoder(t, srv)

	p, err := g.Resolve(context.Background(), "100 Congress Ave, Austin, TX")

	require.NoError(t, err)
	assert.InDelta(t, 30.2672, p.Lat, 1e-9)
	assert.InDelta(t, -97.7431, p.Lng, 1e-9)
	assert.Equal(t, "100 Congress Ave, Austin, TX", asked)
}

func TestGoogleGeocoder_ZeroResults(t *testing.T) {
	srv := newFakeMaps(t, `{"status": "ZERO_RESULTS", "results": []}`, nil)
	g := newTestGeocoder(t, srv)

	_, err := g.Resolve(context.Background(), "nowhere at all")

	assert.ErrorIs(t, err, ErrNoResults)
}

func TestGoogleGeocoder_ProviderError(t *testing.T) {
	srv := newFakeMaps(t, `{"status": "REQUEST_DENIED", "error_message": "bad key", "results": []}`, nil)
	g := newTestGeocoder(t, srv)

	_, err := g.Resolve(context.Background(), "100 Congress Ave, Austin, TX")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoResults)
}

func TestGoogleGeocoder_EmptyAddress(t *testing.T) {
	srv := newFakeMaps(t, `{"status": "OK", "results": []}`, nil)
	g := newTestGeocoder(t, srv)

	_, err := g.Resolve(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrNoResults)
}

func TestNew(t *testing.T) {
	t.Run("empty key disables geocoding", func(t *testing.T) {
		g, err := New(config.GeocodingConfig{})
		require.NoError(t, err)

		_, err = g.Resolve(context.Background(), "anything")
		assert.ErrorIs(t, err, ErrDisabled)
	})

	t.Run("key selects google", func(t *testing.T) {
		g, err := New(config.GeocodingConfig{APIKey: testKey, Timeout: time.Second})
		require.NoError(t, err)
		assert.IsType(t, &GoogleGeocoder{}, g)
	})
}

func TestZoneFor(t *testing.T) {
	zone := ZoneFor(models.Point{Lat: 30.2672, Lng: -97.7431})
	require.NotNil(t, zone)
	assert.Equal(t, "America/Chicago", *zone)

	zone = ZoneFor(models.Point{Lat: 51.5074, Lng: -0.1278})
	require.NotNil(t, zone)
	assert.Equal(t, "Europe/London", *zone)
}

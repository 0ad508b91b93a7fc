// Package geo validates coordinates and computes great-circle distances.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/stwalsh4118/estatehub/internal/models"
	"github.com/umahmood/haversine"
)

// Coordinate bounds
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// ErrInvalidArgument marks missing or out-of-range geospatial parameters.
var ErrInvalidArgument = errors.New("invalid argument")

// RadiusQuery is a validated center point and search radius.
type RadiusQuery struct {
	Center   models.Point
	RadiusKm float64
}

// NewRadiusQuery validates the raw parameters of a radius search. Every
// parameter is required.
func NewRadiusQuery(lat, lng, radiusKm *float64) (RadiusQuery, error) {
	if lat == nil || lng == nil || radiusKm == nil {
		return RadiusQuery{}, fmt.Errorf("%w: latitude, longitude and radius are required", ErrInvalidArgument)
	}
	if err := ValidatePoint(*lat, *lng); err != nil {
		return RadiusQuery{}, err
	}
	// NaN fails every comparison, so it is rejected explicitly
	if !finite(*radiusKm) || *radiusKm <= 0 {
		return RadiusQuery{}, fmt.Errorf("%w: radius must be positive, got %g", ErrInvalidArgument, *radiusKm)
	}
	return RadiusQuery{Center: models.Point{Lat: *lat, Lng: *lng}, RadiusKm: *radiusKm}, nil
}

// ValidatePoint checks latitude and longitude bounds. NaN and infinite
// values are out of range.
func ValidatePoint(lat, lng float64) error {
	if !finite(lat) || lat < MinLatitude || lat > MaxLatitude {
		return fmt.Errorf("%w: latitude must be between %g and %g, got %g",
			ErrInvalidArgument, MinLatitude, MaxLatitude, lat)
	}
	if !finite(lng) || lng < MinLongitude || lng > MaxLongitude {
		return fmt.Errorf("%w: longitude must be between %g and %g, got %g",
			ErrInvalidArgument, MinLongitude, MaxLongitude, lng)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DistanceKm is the haversine distance between two points.
func DistanceKm(a, b models.Point) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lng},
		haversine.Coord{Lat: b.Lat, Lon: b.Lng},
	)
	return km
}

// RadiusMeters converts the radius for PostGIS geography functions.
func (q RadiusQuery) RadiusMeters() float64 {
	return q.RadiusKm * 1000
}

// Contains reports whether p lies within the query radius of the center.
func (q RadiusQuery) Contains(p models.Point) bool {
	return DistanceKm(q.Center, p) <= q.RadiusKm
}

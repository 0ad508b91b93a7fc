package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Point is a WGS84 coordinate (SRID 4326).
// It is stored in PostGIS as geography(Point) and exchanged as GeoJSON.
type Point struct {
	Lat float64
	Lng float64
}

type geoJSONPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Scan implements sql.Scanner for values selected with ST_AsGeoJSON.
func (p *Point) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan Point: expected []byte or string, got %T", value)
	}

	var geom geoJSONPoint
	if err := json.Unmarshal(raw, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal point geometry: %w", err)
	}
	if geom.Type != "Point" {
		return fmt.Errorf("expected Point type, got %s", geom.Type)
	}

	// GeoJSON order is [lng, lat]
	p.Lng = geom.Coordinates[0]
	p.Lat = geom.Coordinates[1]
	return nil
}

// Value implements driver.Valuer. The GeoJSON text is meant for
// ST_GeomFromGeoJSON in raw SQL.
func (p Point) Value() (driver.Value, error) {
	b, err := json.Marshal(geoJSONPoint{Type: "Point", Coordinates: [2]float64{p.Lng, p.Lat}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal point to GeoJSON: %w", err)
	}
	return string(b), nil
}

// MarshalJSON renders the point as {"latitude":..,"longitude":..}.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}{p.Lat, p.Lng})
}

// UnmarshalJSON accepts either the latitude/longitude object or a GeoJSON Point.
func (p *Point) UnmarshalJSON(data []byte) error {
	var obj struct {
		Type        string      `json:"type"`
		Coordinates *[2]float64 `json:"coordinates"`
		Latitude    *float64    `json:"latitude"`
		Longitude   *float64    `json:"longitude"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("failed to unmarshal point: %w", err)
	}

	switch {
	case obj.Coordinates != nil:
		if obj.Type != "" && obj.Type != "Point" {
			return fmt.Errorf("expected Point type, got %s", obj.Type)
		}
		p.Lng, p.Lat = obj.Coordinates[0], obj.Coordinates[1]
	case obj.Latitude != nil && obj.Longitude != nil:
		p.Lat, p.Lng = *obj.Latitude, *obj.Longitude
	default:
		return fmt.Errorf("point requires latitude and longitude")
	}
	return nil
}

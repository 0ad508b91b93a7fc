package models

import (
	"strings"
	"time"
)

// Location is the postal address and coordinate of a listing.
// Coordinates is nil when geocoding has not resolved the address.
type Location struct {
	ID          int64     `json:"id"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Country     string    `json:"country"`
	PostalCode  string    `json:"postalCode"`
	Coordinates *Point    `json:"coordinates"`
	TimeZone    *string   `json:"timeZone,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GeocodeQuery is the "address, city, state" string sent to the geocoder.
func (l *Location) GeocodeQuery() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Address, l.City, l.State} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

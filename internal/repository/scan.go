package repository

import (
	"fmt"

	"github.com/stwalsh4118/estatehub/internal/models"
)

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const listingColumns = `
	l.id, l.name, l.description, l.price_per_month, l.security_deposit, l.application_fee,
	l.photo_urls, l.amenities, l.highlights, l.is_pets_allowed, l.is_parking_included,
	l.beds, l.baths, l.square_feet, l.property_type, l.posted_date, l.average_rating,
	l.number_of_reviews, l.is_available, l.manager_key, l.location_id, l.archived_at,
	l.created_at, l.updated_at`

// Coordinates come back as GeoJSON text (or NULL when never geocoded).
const locationColumns = `
	loc.id, loc.address, loc.city, loc.state, loc.country, loc.postal_code,
	ST_AsGeoJSON(loc.coordinates::geometry), loc.time_zone, loc.created_at, loc.updated_at`

func listingDest(l *models.Listing) []any {
	return []any{
		&l.ID, &l.Name, &l.Description, &l.PricePerMonth, &l.SecurityDeposit, &l.ApplicationFee,
		&l.PhotoURLs, &l.Amenities, &l.Highlights, &l.IsPetsAllowed, &l.IsParkingIncluded,
		&l.Beds, &l.Baths, &l.SquareFeet, &l.PropertyType, &l.PostedDate, &l.AverageRating,
		&l.NumberOfReviews, &l.IsAvailable, &l.ManagerKey, &l.LocationID, &l.ArchivedAt,
		&l.CreatedAt, &l.UpdatedAt,
	}
}

func locationDest(loc *models.Location, coordsJSON **string) []any {
	return []any{
		&loc.ID, &loc.Address, &loc.City, &loc.State, &loc.Country, &loc.PostalCode,
		coordsJSON, &loc.TimeZone, &loc.CreatedAt, &loc.UpdatedAt,
	}
}

// applyCoordinates parses the GeoJSON selected for a location.
func applyCoordinates(loc *models.Location, coordsJSON *string) error {
	if coordsJSON == nil {
		loc.Coordinates = nil
		return nil
	}
	var p models.Point
	if err := p.Scan(*coordsJSON); err != nil {
		return fmt.Errorf("failed to parse coordinates for location %d: %w", loc.ID, err)
	}
	loc.Coordinates = &p
	return nil
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var l models.Listing
	if err := row.Scan(listingDest(&l)...); err != nil {
		return nil, err
	}
	normalizeListing(&l)
	return &l, nil
}

func scanListingDetail(row rowScanner, extra ...any) (*models.ListingDetail, error) {
	var d models.ListingDetail
	var coordsJSON *string

	dest := append(listingDest(&d.Listing), locationDest(&d.Location, &coordsJSON)...)
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := applyCoordinates(&d.Location, coordsJSON); err != nil {
		return nil, err
	}
	normalizeListing(&d.Listing)
	return &d, nil
}

// normalizeListing keeps list fields non-nil so they render as [] in JSON.
func normalizeListing(l *models.Listing) {
	if l.PhotoURLs == nil {
		l.PhotoURLs = []string{}
	}
	if l.Amenities == nil {
		l.Amenities = []string{}
	}
	if l.Highlights == nil {
		l.Highlights = []string{}
	}
}

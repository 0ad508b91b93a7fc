package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/estatehub/internal/database"
	"github.com/stwalsh4118/estatehub/internal/models"
)

// LocationRepository defines the data access operations for listing locations.
type LocationRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Location, error)
	Create(ctx context.Context, loc *models.Location) error
	Save(ctx context.Context, loc *models.Location) error
}

type locationRepository struct {
	db *database.Database
}

// NewLocationRepository creates a new instance of LocationRepository.
func NewLocationRepository(db *database.Database) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) FindByID(ctx context.Context, id int64) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations loc WHERE loc.id = $1`

	var loc models.Location
	var coordsJSON *string
	err := r.db.Conn(ctx).QueryRow(ctx, query, id).Scan(locationDest(&loc, &coordsJSON)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query location %d: %w", id, err)
	}
	if err := applyCoordinates(&loc, coordsJSON); err != nil {
		return nil, err
	}
	return &loc, nil
}

// Create inserts the location. A nil Coordinates is stored as NULL.
func (r *locationRepository) Create(ctx context.Context, loc *models.Location) error {
	query := `
		INSERT INTO locations (address, city, state, country, postal_code, coordinates, time_zone)
		VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_GeomFromGeoJSON($6::text), 4326)::geography, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.Conn(ctx).QueryRow(ctx, query,
		loc.Address, loc.City, loc.State, loc.Country, loc.PostalCode,
		loc.Coordinates, loc.TimeZone,
	).Scan(&loc.ID, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}

func (r *locationRepository) Save(ctx context.Context, loc *models.Location) error {
	query := `
		UPDATE locations SET
			address = $2, city = $3, state = $4, country = $5, postal_code = $6,
			coordinates = ST_SetSRID(ST_GeomFromGeoJSON($7::text), 4326)::geography,
			time_zone = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.Conn(ctx).QueryRow(ctx, query,
		loc.ID, loc.Address, loc.City, loc.State, loc.Country, loc.PostalCode,
		loc.Coordinates, loc.TimeZone,
	).Scan(&loc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("location %d no longer exists", loc.ID)
		}
		return fmt.Errorf("failed to update location %d: %w", loc.ID, err)
	}
	return nil
}

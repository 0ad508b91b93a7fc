package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/estatehub/internal/database"
	"github.com/stwalsh4118/estatehub/internal/filter"
	"github.com/stwalsh4118/estatehub/internal/geo"
	"github.com/stwalsh4118/estatehub/internal/models"
)

// ListingRepository defines the data access operations for listings.
// Lookups return nil, nil when the row does not exist.
type ListingRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Listing, error)

	// FindByIDForUpdate locks the listing row until the surrounding
	// transaction ends. Must be called inside database.WithinTx.
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Listing, error)

	FindDetailByID(ctx context.Context, id int64) (*models.ListingDetail, error)
	Create(ctx context.Context, listing *models.Listing) error
	Save(ctx context.Context, listing *models.Listing) error

	// FindMatching returns one page of unarchived listings matching pred
	// together with the total number of matches.
	FindMatching(ctx context.Context, pred filter.Predicate, page filter.Page) ([]models.ListingDetail, int64, error)

	// FindWithinRadius returns every unarchived listing whose coordinates lie
	// within the query radius (geodesic distance). Order is unspecified.
	FindWithinRadius(ctx context.Context, q geo.RadiusQuery) ([]models.ListingDetail, error)

	FindByManager(ctx context.Context, managerKey string) ([]models.ListingDetail, error)
	CountByManager(ctx context.Context, managerKey string) (int64, error)
	StatisticsByManager(ctx context.Context, managerKey string) (*models.ListingStatistics, error)

	// FindArchiveCandidates returns ids of unavailable, unarchived listings
	// not updated since the given time.
	FindArchiveCandidates(ctx context.Context, inactiveSince time.Time) ([]int64, error)
	Archive(ctx context.Context, id int64, at time.Time) error
}

type listingRepository struct {
	db *database.Database
}

// NewListingRepository creates a new instance of ListingRepository.
func NewListingRepository(db *database.Database) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) FindByID(ctx context.Context, id int64) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.id = $1`

	listing, err := scanListing(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query listing %d: %w", id, err)
	}
	return listing, nil
}

func (r *listingRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.id = $1 FOR UPDATE`

	listing, err := scanListing(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock listing %d: %w", id, err)
	}
	return listing, nil
}

func (r *listingRepository) FindDetailByID(ctx context.Context, id int64) (*models.ListingDetail, error) {
	query := `
		SELECT ` + listingColumns + `, ` + locationColumns + `
		FROM listings l
		JOIN locations loc ON loc.id = l.location_id
		WHERE l.id = $1`

	detail, err := scanListingDetail(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query listing detail %d: %w", id, err)
	}
	return detail, nil
}

func (r *listingRepository) Create(ctx context.Context, l *models.Listing) error {
	query := `
		INSERT INTO listings (
			name, description, price_per_month, security_deposit, application_fee,
			photo_urls, amenities, highlights, is_pets_allowed, is_parking_included,
			beds, baths, square_feet, property_type, posted_date, average_rating,
			number_of_reviews, is_available, manager_key, location_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		RETURNING id, created_at, updated_at`

	normalizeListing(l)
	err := r.db.Conn(ctx).QueryRow(ctx, query,
		l.Name, l.Description, l.PricePerMonth, l.SecurityDeposit, l.ApplicationFee,
		l.PhotoURLs, l.Amenities, l.Highlights, l.IsPetsAllowed, l.IsParkingIncluded,
		l.Beds, l.Baths, l.SquareFeet, string(l.PropertyType), l.PostedDate, l.AverageRating,
		l.NumberOfReviews, l.IsAvailable, l.ManagerKey, l.LocationID,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

// Save writes every mutable column. posted_date, manager_key and location_id
// are fixed at creation.
func (r *listingRepository) Save(ctx context.Context, l *models.Listing) error {
	query := `
		UPDATE listings SET
			name = $2, description = $3, price_per_month = $4, security_deposit = $5,
			application_fee = $6, photo_urls = $7, amenities = $8, highlights = $9,
			is_pets_allowed = $10, is_parking_included = $11, beds = $12, baths = $13,
			square_feet = $14, property_type = $15, average_rating = $16,
			number_of_reviews = $17, is_available = $18, archived_at = $19,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	normalizeListing(l)
	err := r.db.Conn(ctx).QueryRow(ctx, query,
		l.ID, l.Name, l.Description, l.PricePerMonth, l.SecurityDeposit,
		l.ApplicationFee, l.PhotoURLs, l.Amenities, l.Highlights,
		l.IsPetsAllowed, l.IsParkingIncluded, l.Beds, l.Baths,
		l.SquareFeet, string(l.PropertyType), l.AverageRating,
		l.NumberOfReviews, l.IsAvailable, l.ArchivedAt,
	).Scan(&l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("listing %d no longer exists", l.ID)
		}
		return fmt.Errorf("failed to update listing %d: %w", l.ID, err)
	}
	return nil
}

func (r *listingRepository) FindMatching(ctx context.Context, pred filter.Predicate, page filter.Page) ([]models.ListingDetail, int64, error) {
	where, args := pred.SQL(1)
	from := `
		FROM listings l
		JOIN locations loc ON loc.id = l.location_id
		WHERE l.archived_at IS NULL AND (` + where + `)`

	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, `SELECT COUNT(*) `+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count matching listings: %w", err)
	}

	n := len(args)
	query := `SELECT ` + listingColumns + `, ` + locationColumns + from +
		fmt.Sprintf(` ORDER BY %s LIMIT $%d OFFSET $%d`, page.OrderBy(), n+1, n+2)
	args = append(args, page.Size, page.Offset())

	items, err := r.queryDetails(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query matching listings: %w", err)
	}
	return items, total, nil
}

// FindWithinRadius delegates the geodesic test to PostGIS.
// Note: PostGIS functions expect (longitude, latitude) order.
func (r *listingRepository) FindWithinRadius(ctx context.Context, q geo.RadiusQuery) ([]models.ListingDetail, error) {
	query := `
		SELECT ` + listingColumns + `, ` + locationColumns + `
		FROM listings l
		JOIN locations loc ON loc.id = l.location_id
		WHERE l.archived_at IS NULL
		  AND loc.coordinates IS NOT NULL
		  AND ST_DWithin(
				loc.coordinates,
				ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
				$3
		  )`

	items, err := r.queryDetails(ctx, query, q.Center.Lng, q.Center.Lat, q.RadiusMeters())
	if err != nil {
		return nil, fmt.Errorf("failed to query listings within %gkm of (lat=%f, lng=%f): %w",
			q.RadiusKm, q.Center.Lat, q.Center.Lng, err)
	}
	return items, nil
}

func (r *listingRepository) FindByManager(ctx context.Context, managerKey string) ([]models.ListingDetail, error) {
	query := `
		SELECT ` + listingColumns + `, ` + locationColumns + `
		FROM listings l
		JOIN locations loc ON loc.id = l.location_id
		WHERE l.manager_key = $1
		ORDER BY l.posted_date DESC, l.id DESC`

	items, err := r.queryDetails(ctx, query, managerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings for manager: %w", err)
	}
	return items, nil
}

func (r *listingRepository) CountByManager(ctx context.Context, managerKey string) (int64, error) {
	var count int64
	err := r.db.Conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM listings WHERE manager_key = $1`, managerKey,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count listings for manager: %w", err)
	}
	return count, nil
}

func (r *listingRepository) StatisticsByManager(ctx context.Context, managerKey string) (*models.ListingStatistics, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE archived_at IS NULL AND is_available),
			COUNT(*) FILTER (WHERE archived_at IS NULL AND NOT is_available),
			COUNT(*) FILTER (WHERE archived_at IS NOT NULL),
			COALESCE(ROUND(AVG(price_per_month) FILTER (WHERE archived_at IS NULL), 2), 0),
			COALESCE(ROUND(AVG(average_rating) FILTER (WHERE archived_at IS NULL AND number_of_reviews > 0), 2), 0),
			COALESCE(SUM(number_of_reviews), 0)
		FROM listings
		WHERE manager_key = $1`

	stats := models.ListingStatistics{ManagerKey: managerKey}
	err := r.db.Conn(ctx).QueryRow(ctx, query, managerKey).Scan(
		&stats.TotalListings,
		&stats.AvailableListings,
		&stats.UnavailableListings,
		&stats.ArchivedListings,
		&stats.AveragePrice,
		&stats.AverageRating,
		&stats.TotalReviews,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute listing statistics: %w", err)
	}
	return &stats, nil
}

func (r *listingRepository) FindArchiveCandidates(ctx context.Context, inactiveSince time.Time) ([]int64, error) {
	query := `
		SELECT id FROM listings
		WHERE archived_at IS NULL
		  AND NOT is_available
		  AND updated_at < $1
		ORDER BY id`

	rows, err := r.db.Conn(ctx).Query(ctx, query, inactiveSince)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive candidates: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan archive candidates: %w", err)
	}
	return ids, nil
}

func (r *listingRepository) Archive(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE listings SET archived_at = $2, updated_at = NOW() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to archive listing %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing %d no longer exists", id)
	}
	return nil
}

func (r *listingRepository) queryDetails(ctx context.Context, query string, args ...any) ([]models.ListingDetail, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.ListingDetail{}
	for rows.Next() {
		detail, err := scanListingDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		results = append(results, *detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing rows: %w", err)
	}
	return results, nil
}

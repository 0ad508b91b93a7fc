package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/estatehub/internal/database"
	"github.com/stwalsh4118/estatehub/internal/models"
)

// ReviewRepository reads the reviews left on listings.
type ReviewRepository interface {
	ListByListing(ctx context.Context, listingID int64) ([]models.Review, error)
}

type reviewRepository struct {
	db *database.Database
}

// NewReviewRepository creates a new instance of ReviewRepository.
func NewReviewRepository(db *database.Database) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) ListByListing(ctx context.Context, listingID int64) ([]models.Review, error) {
	query := `
		SELECT id, listing_id, rating, verified, created_at
		FROM reviews
		WHERE listing_id = $1
		ORDER BY id`

	rows, err := r.db.Conn(ctx).Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews for listing %d: %w", listingID, err)
	}

	reviews, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.Review])
	if err != nil {
		return nil, fmt.Errorf("failed to scan reviews for listing %d: %w", listingID, err)
	}
	return reviews, nil
}

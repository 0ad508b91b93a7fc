package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/stwalsh4118/estatehub/internal/database"
	"github.com/stwalsh4118/estatehub/internal/models"
)

// LeaseRepository defines the data access operations for leases.
type LeaseRepository interface {
	HasActiveLease(ctx context.Context, listingID int64) (bool, error)
	CountActive(ctx context.Context) (int64, error)
	CountActiveByManager(ctx context.Context, managerKey string) (int64, error)
	ListByListing(ctx context.Context, listingID int64) ([]models.Lease, error)

	// ExpireOverdue moves active leases whose end date is before today to
	// expired and returns how many were changed.
	ExpireOverdue(ctx context.Context, today time.Time) (int64, error)
}

type leaseRepository struct {
	db *database.Database
}

// NewLeaseRepository creates a new instance of LeaseRepository.
func NewLeaseRepository(db *database.Database) LeaseRepository {
	return &leaseRepository{db: db}
}

func (r *leaseRepository) HasActiveLease(ctx context.Context, listingID int64) (bool, error) {
	var exists bool
	err := r.db.Conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM leases WHERE listing_id = $1 AND status = $2)`,
		listingID, string(models.LeaseStatusActive),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active leases for listing %d: %w", listingID, err)
	}
	return exists, nil
}

func (r *leaseRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM leases WHERE status = $1`, string(models.LeaseStatusActive),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active leases: %w", err)
	}
	return count, nil
}

func (r *leaseRepository) CountActiveByManager(ctx context.Context, managerKey string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM leases le
		JOIN listings l ON l.id = le.listing_id
		WHERE le.status = $1 AND l.manager_key = $2`

	var count int64
	err := r.db.Conn(ctx).QueryRow(ctx, query, string(models.LeaseStatusActive), managerKey).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active leases for manager: %w", err)
	}
	return count, nil
}

func (r *leaseRepository) ListByListing(ctx context.Context, listingID int64) ([]models.Lease, error) {
	query := `
		SELECT id, start_date, end_date, monthly_rent, security_deposit, status,
		       listing_id, tenant_id, application_id, created_at, updated_at
		FROM leases
		WHERE listing_id = $1
		ORDER BY start_date DESC, id DESC`

	rows, err := r.db.Conn(ctx).Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leases for listing %d: %w", listingID, err)
	}
	defer rows.Close()

	leases := []models.Lease{}
	for rows.Next() {
		var (
			le     models.Lease
			status string
		)
		if err := rows.Scan(
			&le.ID, &le.StartDate, &le.EndDate, &le.MonthlyRent, &le.SecurityDeposit, &status,
			&le.ListingID, &le.TenantID, &le.ApplicationID, &le.CreatedAt, &le.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lease row: %w", err)
		}
		if le.Status, err = models.ParseLeaseStatus(status); err != nil {
			return nil, fmt.Errorf("lease %d: %w", le.ID, err)
		}
		leases = append(leases, le)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lease rows: %w", err)
	}
	return leases, nil
}

func (r *leaseRepository) ExpireOverdue(ctx context.Context, today time.Time) (int64, error) {
	query := `
		UPDATE leases
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND end_date < $3::date`

	y, m, d := today.Date()
	tag, err := r.db.Conn(ctx).Exec(ctx, query,
		string(models.LeaseStatusExpired), string(models.LeaseStatusActive),
		time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire overdue leases: %w", err)
	}
	return tag.RowsAffected(), nil
}

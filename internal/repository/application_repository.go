package repository

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/estatehub/internal/database"
	"github.com/stwalsh4118/estatehub/internal/models"
)

// ApplicationRepository reads rental applications. Applications are written
// by the tenant-facing side of the system.
type ApplicationRepository interface {
	ListByListing(ctx context.Context, listingID int64) ([]models.Application, error)

	// CountByStatusForManager counts applications on the manager's listings
	// grouped by status. Statuses with no applications are absent.
	CountByStatusForManager(ctx context.Context, managerKey string) (map[models.ApplicationStatus]int64, error)
}

type applicationRepository struct {
	db *database.Database
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
func NewApplicationRepository(db *database.Database) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) ListByListing(ctx context.Context, listingID int64) ([]models.Application, error) {
	query := `
		SELECT id, application_date, status, name, email, phone_number, message, listing_id, tenant_id
		FROM applications
		WHERE listing_id = $1
		ORDER BY application_date DESC, id DESC`

	rows, err := r.db.Conn(ctx).Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications for listing %d: %w", listingID, err)
	}
	defer rows.Close()

	applications := []models.Application{}
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(
			&a.ID, &a.ApplicationDate, &a.Status, &a.Name, &a.Email,
			&a.PhoneNumber, &a.Message, &a.ListingID, &a.TenantID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application row: %w", err)
		}
		applications = append(applications, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}
	return applications, nil
}

func (r *applicationRepository) CountByStatusForManager(ctx context.Context, managerKey string) (map[models.ApplicationStatus]int64, error) {
	query := `
		SELECT a.status, COUNT(*)
		FROM applications a
		JOIN listings l ON l.id = a.listing_id
		WHERE l.manager_key = $1
		GROUP BY a.status`

	rows, err := r.db.Conn(ctx).Query(ctx, query, managerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications for manager: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ApplicationStatus]int64)
	for rows.Next() {
		var (
			raw   string
			count int64
		)
		if err := rows.Scan(&raw, &count); err != nil {
			return nil, fmt.Errorf("failed to scan application count: %w", err)
		}
		status, err := models.ParseApplicationStatus(raw)
		if err != nil {
			return nil, err
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application counts: %w", err)
	}
	return counts, nil
}

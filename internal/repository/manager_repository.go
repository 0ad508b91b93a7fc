package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stwalsh4118/estatehub/internal/database"
	"github.com/stwalsh4118/estatehub/internal/models"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// ManagerRepository defines the data access operations for managers.
type ManagerRepository interface {
	FindByKey(ctx context.Context, key string) (*models.Manager, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, m *models.Manager) error
}

type managerRepository struct {
	db *database.Database
}

// NewManagerRepository creates a new instance of ManagerRepository.
func NewManagerRepository(db *database.Database) ManagerRepository {
	return &managerRepository{db: db}
}

func (r *managerRepository) FindByKey(ctx context.Context, key string) (*models.Manager, error) {
	query := `
		SELECT external_key, name, email, phone_number, created_at, updated_at
		FROM managers
		WHERE external_key = $1`

	var m models.Manager
	err := r.db.Conn(ctx).QueryRow(ctx, query, key).Scan(
		&m.Key, &m.Name, &m.Email, &m.PhoneNumber, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query manager: %w", err)
	}
	return &m, nil
}

func (r *managerRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := r.db.Conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM managers WHERE lower(email) = lower($1::text))`, email,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check manager email: %w", err)
	}
	return taken, nil
}

func (r *managerRepository) Create(ctx context.Context, m *models.Manager) error {
	query := `
		INSERT INTO managers (external_key, name, email, phone_number)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.Conn(ctx).QueryRow(ctx, query, m.Key, m.Name, m.Email, m.PhoneNumber).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: manager %s", ErrDuplicate, pgErr.ConstraintName)
		}
		return fmt.Errorf("failed to insert manager: %w", err)
	}
	return nil
}

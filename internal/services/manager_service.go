package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/estatehub/internal/logger"
	"github.com/stwalsh4118/estatehub/internal/models"
	"github.com/stwalsh4118/estatehub/internal/repository"
)

// ManagerService registers and looks up managers.
type ManagerService interface {
	// Register records the caller as a manager. Returns ErrConflict when the
	// key is already registered or the email is taken.
	Register(ctx context.Context, key string, in RegisterManagerInput) (*models.Manager, error)
	Get(ctx context.Context, key string) (*models.Manager, error)
}

type managerService struct {
	managers repository.ManagerRepository
	validate *validator.Validate
	log      *logger.Logger
}

// NewManagerService creates a new instance of ManagerService.
func NewManagerService(managers repository.ManagerRepository, log *logger.Logger) ManagerService {
	return &managerService{
		managers: managers,
		validate: newValidator(),
		log:      log.WithComponent("manager_service"),
	}
}

func (s *managerService) Register(ctx context.Context, key string, in RegisterManagerInput) (*models.Manager, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, &ValidationError{Fields: map[string]string{"key": "is required"}}
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := validateStruct(s.validate, in); err != nil {
		s.log.Warn("Rejected manager registration", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	existing, err := s.managers.FindByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load manager: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: manager already registered", ErrConflict)
	}

	taken, err := s.managers.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check manager email: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: email %s is already in use", ErrConflict, in.Email)
	}

	m := &models.Manager{Key: key, Name: in.Name, Email: in.Email, PhoneNumber: in.PhoneNumber}
	if err := s.managers.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		s.log.Error("Failed to register manager", err, nil)
		return nil, fmt.Errorf("failed to register manager: %w", err)
	}

	s.log.Info("Manager registered", map[string]interface{}{"manager_key": key})
	return m, nil
}

func (s *managerService) Get(ctx context.Context, key string) (*models.Manager, error) {
	m, err := s.managers.FindByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load manager: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: manager %q", ErrNotFound, key)
	}
	return m, nil
}

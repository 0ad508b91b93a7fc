package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/estatehub/internal/filter"
	"github.com/stwalsh4118/estatehub/internal/models"
	"github.com/stwalsh4118/estatehub/internal/services"
)

// MockListingService is a mock implementation of services.ListingService.
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Search(ctx context.Context, f filter.ListingFilter, page filter.Page) (*models.Page[models.ListingDetail], error) {
	args := m.Called(ctx, f, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.ListingDetail]), args.Error(1)
}

func (m *MockListingService) GetByID(ctx context.Context, id int64) (*models.ListingDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingDetail), args.Error(1)
}

func (m *MockListingService) Create(ctx context.Context, managerKey string, in services.CreateListingInput) (*models.ListingDetail, error) {
	args := m.Called(ctx, managerKey, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingDetail), args.Error(1)
}

func (m *MockListingService) Update(ctx context.Context, id int64, managerKey string, u services.ListingUpdate) (*models.ListingDetail, error) {
	args := m.Called(ctx, id, managerKey, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingDetail), args.Error(1)
}

func (m *MockListingService) Delete(ctx context.Context, id int64, managerKey string) error {
	args := m.Called(ctx, id, managerKey)
	return args.Error(0)
}

func (m *MockListingService) SearchByRadius(ctx context.Context, lat, lng, radiusKm *float64) ([]models.ListingDetail, error) {
	args := m.Called(ctx, lat, lng, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ListingDetail), args.Error(1)
}

func (m *MockListingService) MarkUnavailable(ctx context.Context, id int64, managerKey string) (*models.Listing, error) {
	args := m.Called(ctx, id, managerKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) MarkAvailable(ctx context.Context, id int64, managerKey string) (*models.Listing, error) {
	args := m.Called(ctx, id, managerKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) UpdatePhotos(ctx context.Context, id int64, managerKey string, photos []string) (*models.Listing, error) {
	args := m.Called(ctx, id, managerKey, photos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) UpdateAverageRating(ctx context.Context, id int64) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Statistics(ctx context.Context, managerKey string) (*models.ListingStatistics, error) {
	args := m.Called(ctx, managerKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingStatistics), args.Error(1)
}

func (m *MockListingService) VerifyOwnership(ctx context.Context, id int64, managerKey string) (bool, error) {
	args := m.Called(ctx, id, managerKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockListingService) ListByManager(ctx context.Context, managerKey string) ([]models.ListingDetail, error) {
	args := m.Called(ctx, managerKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ListingDetail), args.Error(1)
}

func (m *MockListingService) CountByManager(ctx context.Context, managerKey string) (int64, error) {
	args := m.Called(ctx, managerKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingService) IsAvailableForApplications(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockListingService) ListLeases(ctx context.Context, id int64, managerKey string) ([]services.LeaseSummary, error) {
	args := m.Called(ctx, id, managerKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.LeaseSummary), args.Error(1)
}

func (m *MockListingService) ListApplications(ctx context.Context, id int64, managerKey string) ([]models.Application, error) {
	args := m.Called(ctx, id, managerKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Application), args.Error(1)
}

func (m *MockListingService) ArchiveInactive(ctx context.Context, opts services.ArchiveOptions) (*services.ArchiveReport, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ArchiveReport), args.Error(1)
}

// MockManagerService is a mock implementation of services.ManagerService.
type MockManagerService struct {
	mock.Mock
}

func (m *MockManagerService) Register(ctx context.Context, key string, in services.RegisterManagerInput) (*models.Manager, error) {
	args := m.Called(ctx, key, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Manager), args.Error(1)
}

func (m *MockManagerService) Get(ctx context.Context, key string) (*models.Manager, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Manager), args.Error(1)
}

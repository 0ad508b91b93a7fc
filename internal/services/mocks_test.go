package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/estatehub/internal/filter"
	"github.com/stwalsh4118/estatehub/internal/geo"
	"github.com/stwalsh4118/estatehub/internal/models"
)

// MockListingRepository is a mock implementation of ListingRepository for testing
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) listing(args mock.Arguments) (*models.Listing, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) FindByID(ctx context.Context, id int64) (*models.Listing, error) {
	return m.listing(m.Called(ctx, id))
}

func (m *MockListingRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Listing, error) {
	return m.listing(m.Called(ctx, id))
}

func (m *MockListingRepository) FindDetailByID(ctx context.Context, id int64) (*models.ListingDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingDetail), args.Error(1)
}

func (m *MockListingRepository) Create(ctx context.Context, l *models.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockListingRepository) Save(ctx context.Context, l *models.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockListingRepository) FindMatching(ctx context.Context, pred filter.Predicate, page filter.Page) ([]models.ListingDetail, int64, error) {
	args := m.Called(ctx, pred, page)
	items, _ := args.Get(0).([]models.ListingDetail)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockListingRepository) FindWithinRadius(ctx context.Context, q geo.RadiusQuery) ([]models.ListingDetail, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]models.ListingDetail)
	return items, args.Error(1)
}

func (m *MockListingRepository) FindByManager(ctx context.Context, managerKey string) ([]models.ListingDetail, error) {
	args := m.Called(ctx, managerKey)
	items, _ := args.Get(0).([]models.ListingDetail)
	return items, args.Error(1)
}

func (m *MockListingRepository) CountByManager(ctx context.Context, managerKey string) (int64, error) {
	args := m.Called(ctx, managerKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepository) StatisticsByManager(ctx context.Context, managerKey string) (*models.ListingStatistics, error) {
	args := m.Called(ctx, managerKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingStatistics), args.Error(1)
}

func (m *MockListingRepository) FindArchiveCandidates(ctx context.Context, inactiveSince time.Time) ([]int64, error) {
	args := m.Called(ctx, inactiveSince)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *MockListingRepository) Archive(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// MockLocationRepository is a mock implementation of LocationRepository for testing
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) FindByID(ctx context.Context, id int64) (*models.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationRepository) Create(ctx context.Context, loc *models.Location) error {
	return m.Called(ctx, loc).Error(0)
}

func (m *MockLocationRepository) Save(ctx context.Context, loc *models.Location) error {
	return m.Called(ctx, loc).Error(0)
}

// MockManagerRepository is a mock implementation of ManagerRepository for testing
type MockManagerRepository struct {
	mock.Mock
}

func (m *MockManagerRepository) FindByKey(ctx context.Context, key string) (*models.Manager, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Manager), args.Error(1)
}

func (m *MockManagerRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockManagerRepository) Create(ctx context.Context, mgr *models.Manager) error {
	return m.Called(ctx, mgr).Error(0)
}

// MockLeaseRepository is a mock implementation of LeaseRepository for testing
type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) HasActiveLease(ctx context.Context, listingID int64) (bool, error) {
	args := m.Called(ctx, listingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeaseRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaseRepository) CountActiveByManager(ctx context.Context, managerKey string) (int64, error) {
	args := m.Called(ctx, managerKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaseRepository) ListByListing(ctx context.Context, listingID int64) ([]models.Lease, error) {
	args := m.Called(ctx, listingID)
	leases, _ := args.Get(0).([]models.Lease)
	return leases, args.Error(1)
}

func (m *MockLeaseRepository) ExpireOverdue(ctx context.Context, today time.Time) (int64, error) {
	args := m.Called(ctx, today)
	return args.Get(0).(int64), args.Error(1)
}

// MockReviewRepository is a mock implementation of ReviewRepository for testing
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) ListByListing(ctx context.Context, listingID int64) ([]models.Review, error) {
	args := m.Called(ctx, listingID)
	reviews, _ := args.Get(0).([]models.Review)
	return reviews, args.Error(1)
}

// MockApplicationRepository is a mock implementation of ApplicationRepository for testing
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) ListByListing(ctx context.Context, listingID int64) ([]models.Application, error) {
	args := m.Called(ctx, listingID)
	apps, _ := args.Get(0).([]models.Application)
	return apps, args.Error(1)
}

func (m *MockApplicationRepository) CountByStatusForManager(ctx context.Context, managerKey string) (map[models.ApplicationStatus]int64, error) {
	args := m.Called(ctx, managerKey)
	counts, _ := args.Get(0).(map[models.ApplicationStatus]int64)
	return counts, args.Error(1)
}

// MockGeocoder is a mock implementation of geocoding.Geocoder for testing
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Resolve(ctx context.Context, address string) (models.Point, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(models.Point), args.Error(1)
}

// MockFileStore is a mock implementation of storage.FileStore for testing
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// fakeTx runs the function directly and counts transactions.
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

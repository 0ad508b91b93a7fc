package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/estatehub/internal/filter"
	"github.com/stwalsh4118/estatehub/internal/geo"
	"github.com/stwalsh4118/estatehub/internal/geocoding"
	"github.com/stwalsh4118/estatehub/internal/logger"
	"github.com/stwalsh4118/estatehub/internal/models"
	"github.com/stwalsh4118/estatehub/internal/repository"
	"github.com/stwalsh4118/estatehub/internal/storage"
)

// TxRunner runs fn inside one storage transaction. *database.Database
// satisfies it.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ListingService defines the interface for listing business logic operations.
//
// Mutating operations take the caller's manager key. They resolve the listing
// (ErrNotFound), compare its owner by exact key equality (ErrUnauthorized) and
// mutate inside one transaction holding the listing row lock.
type ListingService interface {
	// Search returns one page of unarchived listings matching the filter.
	Search(ctx context.Context, f filter.ListingFilter, page filter.Page) (*models.Page[models.ListingDetail], error)

	GetByID(ctx context.Context, id int64) (*models.ListingDetail, error)

	// Create posts a new available listing for a registered manager. A
	// geocoding failure leaves the coordinate unset and does not fail the call.
	Create(ctx context.Context, managerKey string, in CreateListingInput) (*models.ListingDetail, error)

	// Update merges a sparse update. Changing address, city or state
	// re-resolves the coordinate; on geocoding failure the previous one is kept.
	Update(ctx context.Context, id int64, managerKey string, u ListingUpdate) (*models.ListingDetail, error)

	// Delete marks the listing unavailable. Returns ErrConflict when the
	// listing has an active lease.
	Delete(ctx context.Context, id int64, managerKey string) error

	// SearchByRadius returns every unarchived listing within radiusKm of the
	// point. All three arguments are required (ErrInvalidArgument).
	SearchByRadius(ctx context.Context, lat, lng, radiusKm *float64) ([]models.ListingDetail, error)

	MarkUnavailable(ctx context.Context, id int64, managerKey string) (*models.Listing, error)

	// MarkAvailable also restores an archived listing.
	MarkAvailable(ctx context.Context, id int64, managerKey string) (*models.Listing, error)

	// UpdatePhotos replaces the photo list. Photos no longer referenced are
	// removed from file storage after commit, best-effort.
	UpdatePhotos(ctx context.Context, id int64, managerKey string, photos []string) (*models.Listing, error)

	// UpdateAverageRating recomputes rating and review count from verified
	// reviews. Idempotent.
	UpdateAverageRating(ctx context.Context, id int64) (*models.Listing, error)

	Statistics(ctx context.Context, managerKey string) (*models.ListingStatistics, error)
	VerifyOwnership(ctx context.Context, id int64, managerKey string) (bool, error)
	ListByManager(ctx context.Context, managerKey string) ([]models.ListingDetail, error)
	CountByManager(ctx context.Context, managerKey string) (int64, error)
	IsAvailableForApplications(ctx context.Context, id int64) (bool, error)

	// ListLeases returns the listing's leases with derived facts. Owner only.
	ListLeases(ctx context.Context, id int64, managerKey string) ([]LeaseSummary, error)

	// ListApplications returns the applications received by the listing,
	// newest first. Owner only.
	ListApplications(ctx context.Context, id int64, managerKey string) ([]models.Application, error)

	// ArchiveInactive archives unavailable listings untouched for
	// opts.InactiveDays, skipping any with an active lease. When ctx is
	// canceled the sweep finishes the listing in progress and returns the
	// partial report with ctx.Err().
	ArchiveInactive(ctx context.Context, opts ArchiveOptions) (*ArchiveReport, error)
}

// ListingDeps are the collaborators of the listing service.
type ListingDeps struct {
	Tx           TxRunner
	Listings     repository.ListingRepository
	Locations    repository.LocationRepository
	Managers     repository.ManagerRepository
	Leases       repository.LeaseRepository
	Reviews      repository.ReviewRepository
	Applications repository.ApplicationRepository
	Geocoder     geocoding.Geocoder
	Files        storage.FileStore

	// Now defaults to time.Now.
	Now func() time.Time
}

// listingService is the concrete implementation of ListingService.
type listingService struct {
	tx           TxRunner
	listings     repository.ListingRepository
	locations    repository.LocationRepository
	managers     repository.ManagerRepository
	leases       repository.LeaseRepository
	reviews      repository.ReviewRepository
	applications repository.ApplicationRepository
	geocoder     geocoding.Geocoder
	files        storage.FileStore
	now          func() time.Time
	validate     *validator.Validate
	log          *logger.Logger
}

// NewListingService creates a new instance of ListingService.
func NewListingService(deps ListingDeps, log *logger.Logger) ListingService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &listingService{
		tx:           deps.Tx,
		listings:     deps.Listings,
		locations:    deps.Locations,
		managers:     deps.Managers,
		leases:       deps.Leases,
		reviews:      deps.Reviews,
		applications: deps.Applications,
		geocoder:     deps.Geocoder,
		files:        deps.Files,
		now:          now,
		validate:     newValidator(),
		log:          log.WithComponent("listing_service"),
	}
}

func (s *listingService) Search(ctx context.Context, f filter.ListingFilter, page filter.Page) (*models.Page[models.ListingDetail], error) {
	pred := filter.Compose(f)

	s.log.Debug("Searching listings", map[string]interface{}{
		"clauses": pred.Len(),
		"page":    page.Number,
		"size":    page.Size,
		"sort":    page.SortBy,
	})

	items, total, err := s.listings.FindMatching(ctx, pred, page)
	if err != nil {
		s.log.Error("Failed to search listings", err, map[string]interface{}{"clauses": pred.Len()})
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}

	result := models.NewPage(items, total, page.Number, page.Size)
	return &result, nil
}

func (s *listingService) GetByID(ctx context.Context, id int64) (*models.ListingDetail, error) {
	detail, err := s.listings.FindDetailByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to load listing", err, map[string]interface{}{"listing_id": id})
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if detail == nil {
		return nil, listingNotFound(id)
	}
	return detail, nil
}

func (s *listingService) Create(ctx context.Context, managerKey string, in CreateListingInput) (*models.ListingDetail, error) {
	// Tags first, then scale and precision of the decimal columns
	err := validateStruct(s.validate, in)
	if err == nil {
		err = in.checkPrecision()
	}
	if err != nil {
		s.log.Warn("Rejected listing create", map[string]interface{}{
			"manager_key": managerKey,
			"error":       err.Error(),
		})
		return nil, err
	}
	pt, err := models.ParsePropertyType(in.PropertyType)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"propertyType": "must be one of " + propertyTypeList()}}
	}

	// Only registered managers may post listings
	manager, err := s.managers.FindByKey(ctx, managerKey)
	if err != nil {
		s.log.Error("Failed to load manager", err, map[string]interface{}{"manager_key": managerKey})
		return nil, fmt.Errorf("failed to load manager: %w", err)
	}
	if manager == nil {
		return nil, fmt.Errorf("%w: manager %q is not registered", ErrNotFound, managerKey)
	}

	// Geocode outside the transaction; a failure leaves the coordinate empty
	loc := in.location()
	s.resolveCoordinates(ctx, &loc)

	listing := in.listing(pt)
	listing.ManagerKey = manager.Key
	listing.PostedDate = s.now().UTC()
	listing.AverageRating = decimal.Zero
	listing.NumberOfReviews = 0
	listing.IsAvailable = true

	// Location and listing are written together
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.locations.Create(ctx, &loc); err != nil {
			return err
		}
		listing.LocationID = loc.ID
		return s.listings.Create(ctx, &listing)
	})
	if err != nil {
		s.log.Error("Failed to create listing", err, map[string]interface{}{"manager_key": managerKey})
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.log.Info("Listing created", map[string]interface{}{
		"listing_id":  listing.ID,
		"manager_key": managerKey,
		"geocoded":    loc.Coordinates != nil,
	})
	return &models.ListingDetail{Listing: listing, Location: loc}, nil
}

func (s *listingService) Update(ctx context.Context, id int64, managerKey string, u ListingUpdate) (*models.ListingDetail, error) {
	if err := u.Validate(); err != nil {
		s.log.Warn("Rejected listing update", map[string]interface{}{
			"listing_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	var detail models.ListingDetail
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		listing, err := s.guard(ctx, id, managerKey)
		if err != nil {
			return err
		}
		loc, err := s.locations.FindByID(ctx, listing.LocationID)
		if err != nil {
			return fmt.Errorf("failed to load location: %w", err)
		}
		if loc == nil {
			return fmt.Errorf("%w: location %d of listing %d", ErrNotFound, listing.LocationID, id)
		}

		// Nothing to merge, return the current state
		if u.IsEmpty() {
			detail = models.ListingDetail{Listing: *listing, Location: *loc}
			return nil
		}

		// Merge present fields, re-geocoding only when the address moved
		if u.apply(listing, loc) {
			s.resolveCoordinates(ctx, loc)
		}
		if u.touchesLocation() {
			if err := s.locations.Save(ctx, loc); err != nil {
				return err
			}
		}
		if err := s.listings.Save(ctx, listing); err != nil {
			return err
		}
		detail = models.ListingDetail{Listing: *listing, Location: *loc}
		return nil
	})
	if err != nil {
		return nil, s.mutationFailed("update", id, managerKey, err)
	}

	s.log.Info("Listing updated", map[string]interface{}{"listing_id": id, "manager_key": managerKey})
	return &detail, nil
}

func (s *listingService) Delete(ctx context.Context, id int64, managerKey string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		listing, err := s.guard(ctx, id, managerKey)
		if err != nil {
			return err
		}

		// Listings under an active lease stay put
		active, err := s.leases.HasActiveLease(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check leases: %w", err)
		}
		if active {
			return fmt.Errorf("%w: listing %d has active leases", ErrConflict, id)
		}

		// Soft delete
		listing.IsAvailable = false
		return s.listings.Save(ctx, listing)
	})
	if err != nil {
		return s.mutationFailed("delete", id, managerKey, err)
	}

	s.log.Info("Listing deleted", map[string]interface{}{"listing_id": id, "manager_key": managerKey})
	return nil
}

func (s *listingService) SearchByRadius(ctx context.Context, lat, lng, radiusKm *float64) ([]models.ListingDetail, error) {
	// Validate center and radius before touching storage
	q, err := geo.NewRadiusQuery(lat, lng, radiusKm)
	if err != nil {
		s.log.Warn("Invalid radius search", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	// Log the query
	s.log.Info("Querying listings by radius", map[string]interface{}{
		"lat":       q.Center.Lat,
		"lng":       q.Center.Lng,
		"radius_km": q.RadiusKm,
	})

	// Query repository
	listings, err := s.listings.FindWithinRadius(ctx, q)
	if err != nil {
		s.log.Error("Failed to query listings by radius", err, map[string]interface{}{
			"lat":       q.Center.Lat,
			"lng":       q.Center.Lng,
			"radius_km": q.RadiusKm,
		})
		return nil, fmt.Errorf("failed to query listings by radius: %w", err)
	}

	// Storage measures on the spheroid. Keep only listings inside the
	// haversine radius so reported distances never exceed it.
	kept := listings[:0]
	for _, l := range listings {
		if l.Location.Coordinates != nil && q.Contains(*l.Location.Coordinates) {
			kept = append(kept, l)
		}
	}

	// Log results
	s.log.Info("Radius search complete", map[string]interface{}{
		"radius_km": q.RadiusKm,
		"count":     len(kept),
		"dropped":   len(listings) - len(kept),
	})
	return kept, nil
}

func (s *listingService) MarkUnavailable(ctx context.Context, id int64, managerKey string) (*models.Listing, error) {
	return s.setAvailability(ctx, id, managerKey, false)
}

func (s *listingService) MarkAvailable(ctx context.Context, id int64, managerKey string) (*models.Listing, error) {
	return s.setAvailability(ctx, id, managerKey, true)
}

func (s *listingService) setAvailability(ctx context.Context, id int64, managerKey string, available bool) (*models.Listing, error) {
	var result *models.Listing
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		listing, err := s.guard(ctx, id, managerKey)
		if err != nil {
			return err
		}
		listing.IsAvailable = available
		if available {
			listing.ArchivedAt = nil
		}
		if err := s.listings.Save(ctx, listing); err != nil {
			return err
		}
		result = listing
		return nil
	})
	if err != nil {
		return nil, s.mutationFailed("set availability", id, managerKey, err)
	}

	s.log.Info("Listing availability changed", map[string]interface{}{
		"listing_id": id,
		"available":  available,
	})
	return result, nil
}

func (s *listingService) UpdatePhotos(ctx context.Context, id int64, managerKey string, photos []string) (*models.Listing, error) {
	fields := fieldErrors{}
	for i, p := range photos {
		if p == "" {
			fields.add(fmt.Sprintf("photoUrls[%d]", i), "is required")
		}
	}
	if err := fields.err(); err != nil {
		return nil, err
	}

	var (
		result  *models.Listing
		removed []string
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		listing, err := s.guard(ctx, id, managerKey)
		if err != nil {
			return err
		}
		removed = unreferenced(listing.PhotoURLs, photos)
		listing.PhotoURLs = cloneStrings(photos)
		if err := s.listings.Save(ctx, listing); err != nil {
			return err
		}
		result = listing
		return nil
	})
	if err != nil {
		return nil, s.mutationFailed("update photos", id, managerKey, err)
	}

	// Best-effort cleanup after commit
	for _, key := range removed {
		if err := s.files.Delete(ctx, key); err != nil {
			s.log.Warn("Failed to delete replaced photo", map[string]interface{}{
				"listing_id": id,
				"photo":      key,
				"error":      err.Error(),
			})
		}
	}

	s.log.Info("Listing photos replaced", map[string]interface{}{
		"listing_id": id,
		"photos":     len(photos),
		"removed":    len(removed),
	})
	return result, nil
}

func (s *listingService) UpdateAverageRating(ctx context.Context, id int64) (*models.Listing, error) {
	var result *models.Listing
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		listing, err := s.listings.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load listing: %w", err)
		}
		if listing == nil {
			return listingNotFound(id)
		}

		reviews, err := s.reviews.ListByListing(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load reviews: %w", err)
		}

		// Only verified reviews count
		listing.AverageRating, listing.NumberOfReviews = verifiedAverage(reviews)
		if err := s.listings.Save(ctx, listing); err != nil {
			return err
		}
		result = listing
		return nil
	})
	if err != nil {
		return nil, s.mutationFailed("update rating", id, "", err)
	}

	s.log.Info("Listing rating recomputed", map[string]interface{}{
		"listing_id": id,
		"rating":     result.AverageRating.String(),
		"reviews":    result.NumberOfReviews,
	})
	return result, nil
}

// verifiedAverage is the mean of verified ratings rounded to two places, and
// how many reviews contributed.
func verifiedAverage(reviews []models.Review) (decimal.Decimal, int) {
	var sum int64
	count := 0
	for _, r := range reviews {
		if !r.Verified {
			continue
		}
		sum += int64(r.Rating)
		count++
	}
	if count == 0 {
		return decimal.Zero, 0
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(count))).Round(2), count
}

func (s *listingService) Statistics(ctx context.Context, managerKey string) (*models.ListingStatistics, error) {
	manager, err := s.managers.FindByKey(ctx, managerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load manager: %w", err)
	}
	if manager == nil {
		return nil, fmt.Errorf("%w: manager %q is not registered", ErrNotFound, managerKey)
	}

	stats, err := s.listings.StatisticsByManager(ctx, managerKey)
	if err != nil {
		s.log.Error("Failed to compute statistics", err, map[string]interface{}{"manager_key": managerKey})
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}
	active, err := s.leases.CountActiveByManager(ctx, managerKey)
	if err != nil {
		s.log.Error("Failed to count active leases", err, map[string]interface{}{"manager_key": managerKey})
		return nil, fmt.Errorf("failed to count active leases: %w", err)
	}
	stats.ActiveLeases = active

	// Open applications are the pending ones
	byStatus, err := s.applications.CountByStatusForManager(ctx, managerKey)
	if err != nil {
		s.log.Error("Failed to count applications", err, map[string]interface{}{"manager_key": managerKey})
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	for status, n := range byStatus {
		if status.IsOpen() {
			stats.OpenApplications += n
		}
	}
	return stats, nil
}

func (s *listingService) VerifyOwnership(ctx context.Context, id int64, managerKey string) (bool, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to load listing: %w", err)
	}
	if listing == nil {
		return false, listingNotFound(id)
	}
	return listing.OwnedBy(managerKey), nil
}

func (s *listingService) ListByManager(ctx context.Context, managerKey string) ([]models.ListingDetail, error) {
	listings, err := s.listings.FindByManager(ctx, managerKey)
	if err != nil {
		s.log.Error("Failed to list manager listings", err, map[string]interface{}{"manager_key": managerKey})
		return nil, fmt.Errorf("failed to list manager listings: %w", err)
	}
	return listings, nil
}

func (s *listingService) CountByManager(ctx context.Context, managerKey string) (int64, error) {
	count, err := s.listings.CountByManager(ctx, managerKey)
	if err != nil {
		return 0, fmt.Errorf("failed to count manager listings: %w", err)
	}
	return count, nil
}

func (s *listingService) IsAvailableForApplications(ctx context.Context, id int64) (bool, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to load listing: %w", err)
	}
	if listing == nil {
		return false, listingNotFound(id)
	}
	return listing.IsAvailable && !listing.IsArchived(), nil
}

func (s *listingService) ListLeases(ctx context.Context, id int64, managerKey string) ([]LeaseSummary, error) {
	ok, err := s.VerifyOwnership(ctx, id, managerKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Warn("Lease listing denied", map[string]interface{}{"listing_id": id, "manager_key": managerKey})
		return nil, fmt.Errorf("%w: listing %d", ErrUnauthorized, id)
	}

	leases, err := s.leases.ListByListing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list leases: %w", err)
	}

	now := s.now()
	summaries := make([]LeaseSummary, len(leases))
	for i := range leases {
		summaries[i] = summarizeLease(leases[i], now)
	}
	return summaries, nil
}

func (s *listingService) ListApplications(ctx context.Context, id int64, managerKey string) ([]models.Application, error) {
	ok, err := s.VerifyOwnership(ctx, id, managerKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Warn("Application listing denied", map[string]interface{}{"listing_id": id, "manager_key": managerKey})
		return nil, fmt.Errorf("%w: listing %d", ErrUnauthorized, id)
	}

	applications, err := s.applications.ListByListing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return applications, nil
}

// guard locks the listing and checks ownership. It must run inside WithinTx.
func (s *listingService) guard(ctx context.Context, id int64, managerKey string) (*models.Listing, error) {
	listing, err := s.listings.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if listing == nil {
		return nil, listingNotFound(id)
	}
	if !listing.OwnedBy(managerKey) {
		s.log.Warn("Ownership check failed", map[string]interface{}{
			"listing_id":  id,
			"manager_key": managerKey,
		})
		return nil, fmt.Errorf("%w: listing %d", ErrUnauthorized, id)
	}
	return listing, nil
}

// resolveCoordinates geocodes loc in place. Failures keep the current
// coordinate and are only logged.
func (s *listingService) resolveCoordinates(ctx context.Context, loc *models.Location) {
	query := loc.GeocodeQuery()

	p, err := s.geocoder.Resolve(ctx, query)
	if err == nil {
		err = geo.ValidatePoint(p.Lat, p.Lng)
	}
	if err != nil {
		s.log.Warn("Geocoding failed, keeping previous coordinates", map[string]interface{}{
			"address": query,
			"error":   err.Error(),
		})
		return
	}

	loc.Coordinates = &p
	loc.TimeZone = geocoding.ZoneFor(p)
}

// mutationFailed logs a failed guarded operation at the level its kind
// deserves and passes the error through.
func (s *listingService) mutationFailed(op string, id int64, managerKey string, err error) error {
	fields := map[string]interface{}{
		"operation":  op,
		"listing_id": id,
	}
	if managerKey != "" {
		fields["manager_key"] = managerKey
	}

	if isKnownKind(err) {
		fields["error"] = err.Error()
		s.log.Warn("Listing operation rejected", fields)
		return err
	}
	s.log.Error("Listing operation failed", err, fields)
	return fmt.Errorf("failed to %s listing: %w", op, err)
}

func listingNotFound(id int64) error {
	return fmt.Errorf("%w: listing %d", ErrNotFound, id)
}

// unreferenced returns the entries of old that are absent from current.
func unreferenced(old, current []string) []string {
	keep := make(map[string]struct{}, len(current))
	for _, p := range current {
		keep[p] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{}, len(old))
	for _, p := range old {
		if _, ok := keep[p]; ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

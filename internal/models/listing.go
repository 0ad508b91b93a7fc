package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is a rentable property record. Related records are referenced by
// identifier only: the owning manager by its external key and the location
// by its row id.
type Listing struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	Description       *string          `json:"description"`
	PricePerMonth     decimal.Decimal  `json:"pricePerMonth"`
	SecurityDeposit   *decimal.Decimal `json:"securityDeposit"`
	ApplicationFee    *decimal.Decimal `json:"applicationFee"`
	PhotoURLs         []string         `json:"photoUrls"`
	Amenities         []string         `json:"amenities"`
	Highlights        []string         `json:"highlights"`
	IsPetsAllowed     bool             `json:"isPetsAllowed"`
	IsParkingIncluded bool             `json:"isParkingIncluded"`
	Beds              int              `json:"beds"`
	Baths             decimal.Decimal  `json:"baths"`
	SquareFeet        *int             `json:"squareFeet"`
	PropertyType      PropertyType     `json:"propertyType"`
	PostedDate        time.Time        `json:"postedDate"`
	AverageRating     decimal.Decimal  `json:"averageRating"`
	NumberOfReviews   int              `json:"numberOfReviews"`
	IsAvailable       bool             `json:"isAvailable"`
	ManagerKey        string           `json:"managerKey"`
	LocationID        int64            `json:"locationId"`
	ArchivedAt        *time.Time       `json:"archivedAt,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// IsArchived reports whether the archival sweep has retired the listing.
func (l *Listing) IsArchived() bool {
	return l.ArchivedAt != nil
}

// OwnedBy reports whether managerKey is the listing's owner.
// Keys are opaque and compared exactly.
func (l *Listing) OwnedBy(managerKey string) bool {
	return l.ManagerKey == managerKey
}

// ListingDetail is a listing loaded together with its location.
type ListingDetail struct {
	Listing
	Location Location `json:"location"`
}

// ListingStatistics summarizes the listings owned by one manager.
type ListingStatistics struct {
	ManagerKey          string          `json:"managerKey"`
	TotalListings       int64           `json:"totalListings"`
	AvailableListings   int64           `json:"availableListings"`
	UnavailableListings int64           `json:"unavailableListings"`
	ArchivedListings    int64           `json:"archivedListings"`
	AveragePrice        decimal.Decimal `json:"averagePrice"`
	AverageRating       decimal.Decimal `json:"averageRating"`
	TotalReviews        int64           `json:"totalReviews"`
	ActiveLeases        int64           `json:"activeLeases"`
	OpenApplications    int64           `json:"openApplications"`
}

// Page is one page of a paginated result set.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalPages int   `json:"totalPages"`
}

// NewPage builds a Page and derives the page count from total and size.
func NewPage[T any](items []T, total int64, page, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
	}
}

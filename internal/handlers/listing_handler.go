package handlers

import (
	"cmp"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	apierrors "github.com/stwalsh4118/estatehub/internal/errors"
	"github.com/stwalsh4118/estatehub/internal/filter"
	"github.com/stwalsh4118/estatehub/internal/geo"
	"github.com/stwalsh4118/estatehub/internal/middleware"
	"github.com/stwalsh4118/estatehub/internal/models"
	"github.com/stwalsh4118/estatehub/internal/services"
)

// ListingHandler handles listing-related HTTP requests.
type ListingHandler struct {
	service services.ListingService
}

// NewListingHandler creates a new ListingHandler instance.
func NewListingHandler(service services.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// SearchRequest represents the query parameters for listing search.
// Decimal bounds arrive as strings so malformed numbers can be reported per field.
type SearchRequest struct {
	City            *string `form:"city"`
	State           *string `form:"state"`
	PropertyType    *string `form:"propertyType"`
	MinPrice        *string `form:"minPrice"`
	MaxPrice        *string `form:"maxPrice"`
	MinBeds         *int    `form:"minBeds"`
	MaxBeds         *int    `form:"maxBeds"`
	MinBaths        *string `form:"minBaths"`
	PetsAllowed     *bool   `form:"petsAllowed"`
	ParkingIncluded *bool   `form:"parkingIncluded"`
	Available       *bool   `form:"available"`
	PostedAfter     *string `form:"postedAfter"`
	MinRating       *string `form:"minRating"`

	Page    int    `form:"page" binding:"omitempty,gte=0"`
	Size    int    `form:"size" binding:"omitempty,gte=1,lte=100"`
	SortBy  string `form:"sortBy"`
	SortDir string `form:"sortDir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// RadiusRequest represents the query parameters for radius search. Presence
// and range checks happen in the service so they share one error shape.
type RadiusRequest struct {
	Lat    *float64 `form:"lat"`
	Lng    *float64 `form:"lng"`
	Radius *float64 `form:"radius"`
}

// PhotosRequest is the body of PUT /listings/:id/photos.
type PhotosRequest struct {
	PhotoURLs []string `json:"photoUrls" binding:"required"`
}

// AvailabilityResponse reports whether a listing accepts applications.
type AvailabilityResponse struct {
	ListingID int64 `json:"listingId"`
	Available bool  `json:"available"`
}

// OwnershipResponse reports whether the caller owns a listing.
type OwnershipResponse struct {
	ListingID int64 `json:"listingId"`
	Owned     bool  `json:"owned"`
}

// RadiusResult is a listing with its haversine distance from the search
// center in kilometers.
type RadiusResult struct {
	models.ListingDetail
	DistanceKm float64 `json:"distanceKm"`
}

// RadiusResponse wraps radius search results, nearest first.
type RadiusResponse struct {
	Listings []RadiusResult `json:"listings"`
	Count    int            `json:"count"`
}

// ApplicationResponse is an application with its status display name.
type ApplicationResponse struct {
	models.Application
	StatusName string `json:"statusName"`
}

// PropertyTypeResponse is one entry of the property type catalogue.
type PropertyTypeResponse struct {
	Value       models.PropertyType `json:"value"`
	DisplayName string              `json:"displayName"`
}

// Search handles GET /api/v1/listings.
func (h *ListingHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BindingError(c, err, "Invalid query parameters")
		return
	}

	f, details := req.toFilter()
	if len(details) > 0 {
		apierrors.BadRequest(c, "Invalid search filter", details)
		return
	}

	page, err := filter.NewPage(req.Page, req.Size, req.SortBy, req.SortDir)
	if err != nil {
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}

	result, err := h.service.Search(c.Request.Context(), f, page)
	if err != nil {
		apierrors.FromService(c, err, "Failed to search listings")
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchByRadius handles GET /api/v1/listings/search/radius.
func (h *ListingHandler) SearchByRadius(c *gin.Context) {
	var req RadiusRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BindingError(c, err, "Invalid query parameters")
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Processing radius search", map[string]interface{}{
			"lat":    req.Lat,
			"lng":    req.Lng,
			"radius": req.Radius,
		})
	}

	listings, err := h.service.SearchByRadius(c.Request.Context(), req.Lat, req.Lng, req.Radius)
	if err != nil {
		apierrors.FromService(c, err, "Failed to search listings by radius")
		return
	}

	center := models.Point{Lat: *req.Lat, Lng: *req.Lng}
	results := make([]RadiusResult, 0, len(listings))
	for _, l := range listings {
		r := RadiusResult{ListingDetail: l}
		if l.Location.Coordinates != nil {
			r.DistanceKm = math.Round(geo.DistanceKm(center, *l.Location.Coordinates)*1000) / 1000
		}
		results = append(results, r)
	}
	slices.SortStableFunc(results, func(a, b RadiusResult) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})

	c.JSON(http.StatusOK, RadiusResponse{Listings: results, Count: len(results)})
}

// GetByID handles GET /api/v1/listings/:id.
func (h *ListingHandler) GetByID(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	listing, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		apierrors.FromService(c, err, "Failed to load listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Availability handles GET /api/v1/listings/:id/availability.
func (h *ListingHandler) Availability(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	available, err := h.service.IsAvailableForApplications(c.Request.Context(), id)
	if err != nil {
		apierrors.FromService(c, err, "Failed to check availability")
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{ListingID: id, Available: available})
}

// Create handles POST /api/v1/listings.
func (h *ListingHandler) Create(c *gin.Context) {
	var in services.CreateListingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierrors.BindingError(c, err, "Invalid request body")
		return
	}

	listing, err := h.service.Create(c.Request.Context(), middleware.GetManagerKey(c), in)
	if err != nil {
		apierrors.FromService(c, err, "Failed to create listing")
		return
	}

	c.Header("Location", fmt.Sprintf("/api/v1/listings/%d", listing.ID))
	c.JSON(http.StatusCreated, listing)
}

// Update handles PATCH /api/v1/listings/:id. Keys left out of the body are
// untouched; keys sent as null clear nullable fields.
func (h *ListingHandler) Update(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var u services.ListingUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		apierrors.BindingError(c, err, "Invalid request body")
		return
	}

	listing, err := h.service.Update(c.Request.Context(), id, middleware.GetManagerKey(c), u)
	if err != nil {
		apierrors.FromService(c, err, "Failed to update listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Delete handles DELETE /api/v1/listings/:id.
func (h *ListingHandler) Delete(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, middleware.GetManagerKey(c)); err != nil {
		apierrors.FromService(c, err, "Failed to delete listing")
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkUnavailable handles PATCH /api/v1/listings/:id/unavailable.
func (h *ListingHandler) MarkUnavailable(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	listing, err := h.service.MarkUnavailable(c.Request.Context(), id, middleware.GetManagerKey(c))
	if err != nil {
		apierrors.FromService(c, err, "Failed to update availability")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// MarkAvailable handles PATCH /api/v1/listings/:id/available.
func (h *ListingHandler) MarkAvailable(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	listing, err := h.service.MarkAvailable(c.Request.Context(), id, middleware.GetManagerKey(c))
	if err != nil {
		apierrors.FromService(c, err, "Failed to update availability")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// UpdatePhotos handles PUT /api/v1/listings/:id/photos.
func (h *ListingHandler) UpdatePhotos(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var req PhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err, "Invalid request body")
		return
	}

	listing, err := h.service.UpdatePhotos(c.Request.Context(), id, middleware.GetManagerKey(c), req.PhotoURLs)
	if err != nil {
		apierrors.FromService(c, err, "Failed to update photos")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// RecomputeRating handles POST /api/v1/listings/:id/rating.
func (h *ListingHandler) RecomputeRating(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	listing, err := h.service.UpdateAverageRating(c.Request.Context(), id)
	if err != nil {
		apierrors.FromService(c, err, "Failed to update rating")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Ownership handles GET /api/v1/listings/:id/ownership.
func (h *ListingHandler) Ownership(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	owned, err := h.service.VerifyOwnership(c.Request.Context(), id, middleware.GetManagerKey(c))
	if err != nil {
		apierrors.FromService(c, err, "Failed to verify ownership")
		return
	}

	c.JSON(http.StatusOK, OwnershipResponse{ListingID: id, Owned: owned})
}

// Leases handles GET /api/v1/listings/:id/leases.
func (h *ListingHandler) Leases(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	leases, err := h.service.ListLeases(c.Request.Context(), id, middleware.GetManagerKey(c))
	if err != nil {
		apierrors.FromService(c, err, "Failed to load leases")
		return
	}

	c.JSON(http.StatusOK, gin.H{"leases": leases, "count": len(leases)})
}

// Applications handles GET /api/v1/listings/:id/applications.
func (h *ListingHandler) Applications(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	apps, err := h.service.ListApplications(c.Request.Context(), id, middleware.GetManagerKey(c))
	if err != nil {
		apierrors.FromService(c, err, "Failed to load applications")
		return
	}

	out := make([]ApplicationResponse, len(apps))
	for i, a := range apps {
		out[i] = ApplicationResponse{Application: a, StatusName: a.Status.DisplayName()}
	}
	c.JSON(http.StatusOK, gin.H{"applications": out, "count": len(out)})
}

// PropertyTypes handles GET /api/v1/property-types.
func (h *ListingHandler) PropertyTypes(c *gin.Context) {
	types := models.PropertyTypes()
	out := make([]PropertyTypeResponse, 0, len(types))
	for _, pt := range types {
		out = append(out, PropertyTypeResponse{Value: pt, DisplayName: pt.DisplayName()})
	}
	c.JSON(http.StatusOK, out)
}

// listingID parses the :id path parameter, writing a 400 when it is not a
// positive integer.
func listingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		apierrors.BadRequest(c, "Listing id must be a positive integer", map[string]interface{}{
			"id": c.Param("id"),
		})
		return 0, false
	}
	return id, true
}

// toFilter converts the query into a listing filter, collecting a message per
// malformed parameter.
func (r SearchRequest) toFilter() (filter.ListingFilter, map[string]interface{}) {
	details := map[string]interface{}{}
	f := filter.ListingFilter{
		City:            trimmed(r.City),
		State:           trimmed(r.State),
		MinBeds:         r.MinBeds,
		MaxBeds:         r.MaxBeds,
		PetsAllowed:     r.PetsAllowed,
		ParkingIncluded: r.ParkingIncluded,
		Available:       r.Available,
	}

	if r.PropertyType != nil {
		pt, err := models.ParsePropertyType(*r.PropertyType)
		if err != nil {
			details["propertyType"] = err.Error()
		} else {
			f.PropertyType = &pt
		}
	}

	f.MinPrice = parseDecimal(details, "minPrice", r.MinPrice)
	f.MaxPrice = parseDecimal(details, "maxPrice", r.MaxPrice)
	f.MinBaths = parseDecimal(details, "minBaths", r.MinBaths)
	f.MinRating = parseDecimal(details, "minRating", r.MinRating)

	if r.PostedAfter != nil {
		t, err := parseDate(*r.PostedAfter)
		if err != nil {
			details["postedAfter"] = "must be an RFC 3339 timestamp or a YYYY-MM-DD date"
		} else {
			f.PostedAfter = &t
		}
	}

	return f, details
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func parseDecimal(details map[string]interface{}, name string, s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*s))
	if err != nil {
		details[name] = "must be a number"
		return nil
	}
	return &d
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/estatehub/internal/errors"
	"github.com/stwalsh4118/estatehub/internal/filter"
	"github.com/stwalsh4118/estatehub/internal/middleware"
	"github.com/stwalsh4118/estatehub/internal/models"
	"github.com/stwalsh4118/estatehub/internal/services"
)

// ManagerHandler handles manager registration and manager-scoped listing views.
type ManagerHandler struct {
	managers services.ManagerService
	listings services.ListingService
}

// NewManagerHandler creates a new ManagerHandler instance.
func NewManagerHandler(managers services.ManagerService, listings services.ListingService) *ManagerHandler {
	return &ManagerHandler{managers: managers, listings: listings}
}

// ManagerListingsResponse is the body of GET /managers/:managerKey/listings.
// Total counts every listing of the manager; Listings holds those matching
// the query filters.
type ManagerListingsResponse struct {
	Listings []models.ListingDetail `json:"listings"`
	Matched  int                    `json:"matched"`
	Total    int64                  `json:"total"`
}

// Register handles POST /api/v1/managers. The caller's token subject becomes
// the manager key.
func (h *ManagerHandler) Register(c *gin.Context) {
	var in services.RegisterManagerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierrors.BindingError(c, err, "Invalid request body")
		return
	}

	manager, err := h.managers.Register(c.Request.Context(), middleware.GetManagerKey(c), in)
	if err != nil {
		apierrors.FromService(c, err, "Failed to register manager")
		return
	}

	c.JSON(http.StatusCreated, manager)
}

// Me handles GET /api/v1/managers/me.
func (h *ManagerHandler) Me(c *gin.Context) {
	manager, err := h.managers.Get(c.Request.Context(), middleware.GetManagerKey(c))
	if err != nil {
		apierrors.FromService(c, err, "Failed to load manager")
		return
	}

	c.JSON(http.StatusOK, manager)
}

// Listings handles GET /api/v1/managers/:managerKey/listings.
func (h *ManagerHandler) Listings(c *gin.Context) {
	key := c.Param("managerKey")

	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BindingError(c, err, "Invalid query parameters")
		return
	}
	f, details := req.toFilter()
	if len(details) > 0 {
		apierrors.BadRequest(c, "Invalid listing filter", details)
		return
	}

	listings, err := h.listings.ListByManager(c.Request.Context(), key)
	if err != nil {
		apierrors.FromService(c, err, "Failed to load manager listings")
		return
	}
	total, err := h.listings.CountByManager(c.Request.Context(), key)
	if err != nil {
		apierrors.FromService(c, err, "Failed to count manager listings")
		return
	}

	// A manager's portfolio is small, so filters run in process.
	pred := filter.Compose(f)
	matched := make([]models.ListingDetail, 0, len(listings))
	for _, l := range listings {
		if pred.Matches(l) {
			matched = append(matched, l)
		}
	}

	c.JSON(http.StatusOK, ManagerListingsResponse{Listings: matched, Matched: len(matched), Total: total})
}

// Statistics handles GET /api/v1/managers/:managerKey/statistics. Only the
// manager themself may read their statistics.
func (h *ManagerHandler) Statistics(c *gin.Context) {
	key := c.Param("managerKey")
	if key != middleware.GetManagerKey(c) {
		apierrors.Forbidden(c, "Statistics are only visible to their manager")
		return
	}

	stats, err := h.listings.Statistics(c.Request.Context(), key)
	if err != nil {
		apierrors.FromService(c, err, "Failed to load statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

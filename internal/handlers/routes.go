package handlers

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted under /api/v1.
type Handlers struct {
	Health   *HealthHandler
	Listings *ListingHandler
	Managers *ManagerHandler
}

// RegisterRoutes mounts health checks at the root and the API under /api/v1.
// Routes that act as a manager run behind auth.
func RegisterRoutes(router *gin.Engine, h Handlers, auth gin.HandlerFunc) {
	router.GET("/health", h.Health.Health)
	router.GET("/health/ready", h.Health.Ready)

	v1 := router.Group("/api/v1")
	v1.GET("/info", h.Health.Info)
	v1.GET("/property-types", h.Listings.PropertyTypes)

	listings := v1.Group("/listings")
	{
		listings.GET("", h.Listings.Search)
		listings.GET("/search/radius", h.Listings.SearchByRadius)
		listings.GET("/:id", h.Listings.GetByID)
		listings.GET("/:id/availability", h.Listings.Availability)
		listings.POST("/:id/rating", h.Listings.RecomputeRating)

		owned := listings.Group("", auth)
		owned.POST("", h.Listings.Create)
		owned.PATCH("/:id", h.Listings.Update)
		owned.DELETE("/:id", h.Listings.Delete)
		owned.PATCH("/:id/unavailable", h.Listings.MarkUnavailable)
		owned.PATCH("/:id/available", h.Listings.MarkAvailable)
		owned.PUT("/:id/photos", h.Listings.UpdatePhotos)
		owned.GET("/:id/ownership", h.Listings.Ownership)
		owned.GET("/:id/leases", h.Listings.Leases)
		owned.GET("/:id/applications", h.Listings.Applications)
	}

	managers := v1.Group("/managers")
	{
		managers.GET("/:managerKey/listings", h.Managers.Listings)
		managers.POST("", auth, h.Managers.Register)
		managers.GET("/me", auth, h.Managers.Me)
		managers.GET("/:managerKey/statistics", auth, h.Managers.Statistics)
	}
}

package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const corsMaxAge = 12 * time.Hour

// CORS allows browser clients from allowedOrigins to call the API. A "*"
// entry opens the API to any origin; credentials are then not allowed, since
// browsers refuse credentialed responses with a wildcard origin.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		// Location carries the URL of a newly created listing.
		ExposeHeaders: []string{RequestIDHeader, "Location"},
		MaxAge:        corsMaxAge,
	}

	if containsWildcard(allowedOrigins) {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
		config.AllowCredentials = true
	}

	return cors.New(config)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

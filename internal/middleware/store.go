package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aravind22s/MedTracker/internal/database"
)

const storePingTimeout = 1 * time.Second

// StoreAvailabilityMiddleware answers 503 before handlers run when the record
// store is unreachable. A 503 body is distinguishable from auth failures so
// the client can show a connectivity banner instead of logging the user out.
func StoreAvailabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), storePingTimeout)
		defer cancel()

		if err := database.Available(ctx); err != nil {
			log.Printf("Store unavailable: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "store_unavailable",
				"message": "The record store is not reachable. Please try again shortly.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

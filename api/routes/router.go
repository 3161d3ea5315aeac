// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"showtix/internal/bookings"
	"showtix/internal/shared/config"
	"showtix/internal/shared/database"
	"showtix/internal/shows"
	"showtix/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config         *config.Config
	db             *database.DB
	showService    shows.Service
	bookingService bookings.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB) *Router {
	return &Router{
		config: cfg,
		db:     db,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Show routes must be wired first; the booking service depends on
		// the show service for cache invalidation.
		r.setupShowRoutes(api)
		r.setupBookingRoutes(api)
	}
}

// BookingService exposes the booking service so the server can run the
// expiry reclaim job against the same instance the handlers use.
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "showtix-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "showtix-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupShowRoutes configures show catalog routes
func (r *Router) setupShowRoutes(rg *gin.RouterGroup) {
	showRepo := shows.NewRepository(r.db.GetPostgreSQL())
	showService := shows.NewService(showRepo)

	// Listing cache is optional; skip injection when Redis is down or disabled.
	if redisClient := r.db.GetRedisClient(); redisClient != nil {
		showService.SetCacheService(cache.NewService(redisClient))
	}

	showController := shows.NewController(showService)

	r.showService = showService

	shows.SetupShowRoutes(rg, showController)
}

// setupBookingRoutes configures seat booking routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	showRepo := shows.NewRepository(r.db.GetPostgreSQL())
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL(), showRepo, r.config.Booking.LockTimeout)
	bookingService := bookings.NewService(bookingRepo, r.showService, r.config.Booking.ReclaimAfter)
	bookingController := bookings.NewController(bookingService)

	r.bookingService = bookingService

	bookings.SetupBookingRoutes(rg, bookingController)
}

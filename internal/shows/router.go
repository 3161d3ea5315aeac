package shows

import (
	"github.com/gin-gonic/gin"
)

func SetupShowRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - browsing the catalog
	publicShows := router.Group("/shows")
	{
		publicShows.GET("", controller.ListShows)       // GET /api/v1/shows
		publicShows.GET("/:showId", controller.GetShow) // GET /api/v1/shows/:showId
	}

	// Admin routes - show creation. Authn/authz is out of scope here; the
	// group exists so a gateway can fence it off.
	adminShows := router.Group("/admin/shows")
	{
		adminShows.POST("", controller.CreateShow) // POST /api/v1/admin/shows
	}
}

package bookings

import (
	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(router *gin.RouterGroup, controller Controller) {
	router.POST("/book", controller.BookSeats) // POST /api/v1/book

	bookingGroup := router.Group("/bookings")
	{
		bookingGroup.GET("/:bookingId", controller.GetBooking) // GET /api/v1/bookings/:bookingId
	}
}

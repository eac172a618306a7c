package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bookloop/booking-engine/controllers"
	"github.com/bookloop/booking-engine/middleware"
)

// SetupBookingRoutes configures availability and booking routes. Availability
// and booking creation are public; listing and owner cancellation require the
// caller to own the business.
func SetupBookingRoutes(app *fiber.App) {
	business := app.Group("/businesses/:businessId")
	business.Get("/availability", controllers.GetAvailability)

	bookings := business.Group("/bookings")
	bookings.Post("/", controllers.CreateBooking)
	bookings.Post("/:id/cancel", controllers.CancelBooking)
	bookings.Get("/", middleware.Protected(), middleware.RequireBusinessOwner(), controllers.ListBookings)
	bookings.Post("/:id/owner-cancel", middleware.Protected(), middleware.RequireBusinessOwner(), controllers.CancelBooking)
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bookloop/booking-engine/controllers"
	"github.com/bookloop/booking-engine/middleware"
)

// SetupScheduleRoutes configures weekly availability, exception and timezone
// routes. All mutations are gated on business ownership.
func SetupScheduleRoutes(app *fiber.App) {
	business := app.Group("/businesses/:businessId")

	weekly := business.Group("/weekly-availability")
	weekly.Get("/", controllers.GetWeeklyAvailability)
	weekly.Put("/", middleware.Protected(), middleware.RequireBusinessOwner(), controllers.UpsertWeeklyAvailability)
	weekly.Delete("/:day", middleware.Protected(), middleware.RequireBusinessOwner(), controllers.DeleteWeeklyAvailability)

	exceptions := business.Group("/exceptions")
	exceptions.Get("/", controllers.ListExceptions)
	exceptions.Post("/", middleware.Protected(), middleware.RequireBusinessOwner(), controllers.CreateException)
	exceptions.Delete("/:id", middleware.Protected(), middleware.RequireBusinessOwner(), controllers.DeleteException)

	business.Patch("/timezone", middleware.Protected(), middleware.RequireBusinessOwner(), controllers.UpdateTimezone)
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bookloop/booking-engine/controllers"
	"github.com/bookloop/booking-engine/middleware"
)

func SetupServiceRoutes(app *fiber.App) {
	service := app.Group("/businesses/:businessId/services")
	service.Get("/", controllers.GetAllServices)
	service.Get("/:id", controllers.GetService)
	service.Post("/", middleware.Protected(), middleware.RequireBusinessOwner(), controllers.CreateService)
	service.Put("/:id", middleware.Protected(), middleware.RequireBusinessOwner(), controllers.UpdateService)
	service.Delete("/:id", middleware.Protected(), middleware.RequireBusinessOwner(), controllers.DeleteService)
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/avishkarm/clinic-scheduler/controllers"
	"github.com/avishkarm/clinic-scheduler/middleware"
)

// SetupAvailabilityRoutes configures all availability window related routes
func SetupAvailabilityRoutes(app *fiber.App) {
	availability := app.Group("/availability")
	availability.Get("/", controllers.GetAllAvailability)
	availability.Get("/:id", controllers.GetAvailability)
	availability.Post("/", middleware.Protected(), middleware.RequirePermission("availability", "create"), controllers.CreateAvailability)
	availability.Patch("/:id", middleware.Protected(), middleware.RequirePermission("availability", "update"), controllers.UpdateAvailability)
	availability.Delete("/:id", middleware.Protected(), middleware.RequirePermission("availability", "delete"), controllers.DisableAvailability)
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/avishkarm/clinic-scheduler/controllers"
	"github.com/avishkarm/clinic-scheduler/middleware"
)

// SetupBookingRoutes configures all booking related routes
func SetupBookingRoutes(app *fiber.App) {
	// Free-slot search is public and registered first so "free-slots" is not
	// parsed as a booking ID.
	app.Get("/bookings/free-slots", controllers.GetFreeSlots)

	booking := app.Group("/bookings", middleware.Protected())

	booking.Get("/", middleware.RequirePermission("bookings", "read"), controllers.GetAllBookings)
	booking.Get("/:id", middleware.RequirePermission("bookings", "read"), controllers.GetBooking)
	booking.Get("/:id/ics", middleware.RequirePermission("bookings", "read"), controllers.BookingICS)
	booking.Get("/provider/:id/ics", middleware.RequireRole("admin", "clinician", "staff"), controllers.ProviderICSFeed)

	// Staff-assisted creation lands directly on the calendar; self-service
	// requests wait for approval.
	booking.Post("/", middleware.RequirePermission("bookings", "create"), controllers.CreateBooking)
	booking.Post("/request", controllers.RequestBooking)

	booking.Post("/:id/reschedule", middleware.RequirePermission("bookings", "update"), controllers.RescheduleBooking)
	booking.Post("/:id/cancel", middleware.RequirePermission("bookings", "update"), controllers.CancelBooking)
	booking.Post("/:id/approve", middleware.RequireRole("admin", "clinician", "staff"), controllers.ApproveBooking)
	booking.Post("/:id/decline", middleware.RequireRole("admin", "clinician", "staff"), controllers.DeclineBooking)
	booking.Post("/:id/complete", middleware.RequireRole("admin", "clinician", "staff"), controllers.CompleteBooking)
}

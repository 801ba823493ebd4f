package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/models"
)

// SetupBookingRoutes configures bookings, the dashboard and notifications
func SetupBookingRoutes(app *fiber.App, h *Handlers) {
	bookings := app.Group("/bookings", h.Protected)
	bookings.Post("/", middleware.RequireRole(models.RoleClient), h.Bookings.CreateBooking)
	bookings.Get("/", h.Bookings.GetBookings)
	bookings.Get("/stats", h.Bookings.GetStats)
	bookings.Get("/:id", h.Bookings.GetBooking)
	bookings.Put("/:id", h.Bookings.UpdateBooking)
	bookings.Patch("/:id/status", h.Bookings.UpdateStatus)
	bookings.Delete("/:id", h.Bookings.DeleteBooking)

	app.Get("/dashboard", h.Protected, h.Dashboard.GetDashboard)

	notifications := app.Group("/notifications", h.Protected)
	notifications.Get("/", h.Notifications.GetNotifications)
	notifications.Post("/read", h.Notifications.MarkAllRead)
	notifications.Post("/:id/read", h.Notifications.MarkRead)
}

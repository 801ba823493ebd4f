package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/models"
)

// SetupCaregiverRoutes configures the caller's own caregiver workspace.
// Guards are per route since group middleware on /caregiver would also
// match the public /caregivers prefix.
func SetupCaregiverRoutes(app *fiber.App, h *Handlers) {
	role := middleware.RequireRole(models.RoleCaregiver)
	guarded := func(handler fiber.Handler) []fiber.Handler {
		return []fiber.Handler{h.Protected, role, handler}
	}
	own := app.Group("/caregiver")

	own.Post("/profile", guarded(h.Caregiver.CreateProfile)...)
	own.Get("/profile", guarded(h.Caregiver.GetProfile)...)
	own.Put("/profile", guarded(h.Caregiver.UpdateProfile)...)
	own.Delete("/profile", guarded(h.Caregiver.DeleteProfile)...)
	own.Get("/profile/completion", guarded(h.Caregiver.GetCompletion)...)
	own.Post("/profile/completion", guarded(h.Caregiver.UpdateCompletion)...)

	own.Get("/dashboard", guarded(h.Caregiver.GetDashboard)...)
	own.Get("/earnings", guarded(h.Caregiver.GetEarnings)...)
	own.Get("/clients", guarded(h.Caregiver.GetClients)...)
	own.Get("/bookings", guarded(h.Caregiver.GetBookings)...)
	own.Get("/schedule", guarded(h.Caregiver.GetSchedule)...)
	own.Get("/availability", guarded(h.Caregiver.GetAvailability)...)
	own.Put("/availability", guarded(h.Caregiver.SetAvailability)...)
}

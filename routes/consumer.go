package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/models"
)

// SetupConsumerRoutes configures the public caregiver directory and reviews
func SetupConsumerRoutes(app *fiber.App, h *Handlers) {
	caregivers := app.Group("/caregivers")

	// Static paths before /:id
	caregivers.Get("/public", h.Caregivers.GetPublicCaregivers)
	caregivers.Get("/search", h.Caregivers.SearchCaregivers)
	caregivers.Get("/featured", h.Caregivers.GetFeatured)
	caregivers.Get("/services", h.Caregivers.GetAvailableServices)

	caregivers.Get("/:id", h.Caregivers.GetCaregiver)
	caregivers.Get("/:id/availability", h.Caregivers.GetAvailability)
	caregivers.Get("/:id/reviews", h.Reviews.GetCaregiverReviews)

	app.Post("/reviews", h.Protected, middleware.RequireRole(models.RoleClient), h.Reviews.CreateReview)
}

package routes

import (
	"github.com/gofiber/fiber/v2"
)

// SetupServiceRoutes configures the public service catalog
func SetupServiceRoutes(app *fiber.App, h *Handlers) {
	services := app.Group("/services")
	services.Get("/", h.Services.GetServices)
	services.Get("/:id", h.Services.GetService)
}

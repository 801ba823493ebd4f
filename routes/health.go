package routes

import "github.com/gofiber/fiber/v2"

func SetupHealthRoutes(app *fiber.App, h *Handlers) {
	app.Get("/healthz", h.Health.Healthz)
	app.Get("/readyz", h.Health.Readyz)
}

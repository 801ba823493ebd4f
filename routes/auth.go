package routes

import (
	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes configures authentication and account routes
func SetupAuthRoutes(app *fiber.App, h *Handlers) {
	auth := app.Group("/auth")

	// Public routes
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Get("/verify-email", h.Auth.VerifyEmail)

	// Protected routes
	auth.Get("/me", h.Protected, h.Auth.Me)
	auth.Post("/logout", h.Protected, h.Auth.Logout)
	auth.Post("/refresh", h.Protected, h.Auth.RefreshToken)

	users := app.Group("/users", h.Protected)
	users.Put("/me", h.Users.UpdateMe)
	users.Put("/me/password", h.Auth.ChangePassword)
	users.Get("/:id", h.Users.Get)
}

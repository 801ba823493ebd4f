package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/meinhoongagan/carehub/config"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/utils"
	"github.com/rs/zerolog"
)

// NewApp builds the fiber app with the shared middleware stack. A nil
// limiter disables rate limiting.
func NewApp(cfg config.ServerConfig, limiter middleware.Limiter, logger *zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "carehub",
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          utils.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(middleware.AccessLog(logger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
	}))
	if limiter != nil {
		app.Use(middleware.RateLimit(limiter, logger))
	}
	return app
}

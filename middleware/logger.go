package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/metrics"
	"github.com/rs/zerolog"
)

// AccessLog logs each request and records it in the HTTP metrics.
func AccessLog(logger *zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Route().Path
		metrics.ObserveHTTP(c.Method(), route, status, elapsed)

		event := logger.Info()
		if status >= fiber.StatusInternalServerError {
			event = logger.Error().Err(chainErr)
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Str("ip", c.IP()).
			Msg("request")
		return nil
	}
}

package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthController struct {
	checks  map[string]Check
	timeout time.Duration
	logger  *zerolog.Logger
}

func NewHealthController(checks map[string]Check, logger *zerolog.Logger) *HealthController {
	return &HealthController{checks: checks, timeout: 2 * time.Second, logger: logger}
}

func (h *HealthController) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readyz runs every check and reports 503 when any fails
func (h *HealthController) Readyz(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	status := fiber.StatusOK
	results := make(map[string]checkResult, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn().Err(err).Str("check", name).Msg("readiness check failed")
			results[name] = checkResult{Status: "fail", Error: err.Error()}
			status = fiber.StatusServiceUnavailable
			continue
		}
		results[name] = checkResult{Status: "ok"}
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "unavailable"
	}
	return c.Status(status).JSON(fiber.Map{"status": overall, "checks": results})
}

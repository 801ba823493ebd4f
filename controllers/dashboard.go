package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/service"
)

type DashboardController struct {
	composer *service.DashboardComposer
}

func NewDashboardController(composer *service.DashboardComposer) *DashboardController {
	return &DashboardController{composer: composer}
}

// GetDashboard returns the role specific summary for the caller
func (d *DashboardController) GetDashboard(c *fiber.Ctx) error {
	summary, err := d.composer.Summary(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(summary.Body())
}

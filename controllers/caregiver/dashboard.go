package caregiver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/service"
)

func (p *Controller) GetDashboard(c *fiber.Ctx) error {
	id, err := p.ownProfileID(c)
	if err != nil {
		return err
	}
	data, err := p.caregivers.GetDashboardData(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(data)
}

// GetEarnings returns earnings for ?period=week|month|year
func (p *Controller) GetEarnings(c *fiber.Ctx) error {
	id, err := p.ownProfileID(c)
	if err != nil {
		return err
	}
	out, err := p.caregivers.Earnings(c.UserContext(), id, service.ParsePeriod(c.Query("period")))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (p *Controller) GetClients(c *fiber.Ctx) error {
	id, err := p.ownProfileID(c)
	if err != nil {
		return err
	}
	out, err := p.caregivers.GetClients(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

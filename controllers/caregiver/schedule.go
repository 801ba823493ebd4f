package caregiver

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/utils"
)

type slotInput struct {
	DayOfWeek   int    `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime   string `json:"start_time" validate:"required,len=5"`
	EndTime     string `json:"end_time" validate:"required,len=5"`
	IsAvailable *bool  `json:"is_available"`
}

type availabilityInput struct {
	Slots []slotInput `json:"slots" validate:"dive"`
}

func (p *Controller) GetBookings(c *fiber.Ctx) error {
	id, err := p.ownProfileID(c)
	if err != nil {
		return err
	}
	page, err := p.caregivers.GetBookings(c.UserContext(), id, models.BookingStatus(c.Query("status")), utils.Page(c), utils.Limit(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// GetSchedule lists booked work between ?start and ?end
func (p *Controller) GetSchedule(c *fiber.Ctx) error {
	start, err := utils.QueryDate(c, "start")
	if err != nil {
		return err
	}
	end, err := utils.QueryDate(c, "end")
	if err != nil {
		return err
	}
	id, err := p.ownProfileID(c)
	if err != nil {
		return err
	}
	out, err := p.caregivers.GetSchedule(c.UserContext(), id, start, end)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (p *Controller) GetAvailability(c *fiber.Ctx) error {
	id, err := p.ownProfileID(c)
	if err != nil {
		return err
	}
	slots, err := p.caregivers.GetAvailability(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(slots)
}

// SetAvailability replaces the weekly slots. Slots default to available.
func (p *Controller) SetAvailability(c *fiber.Ctx) error {
	var in availabilityInput
	if err := utils.BindJSON(c, &in); err != nil {
		return err
	}
	slots := make([]models.Availability, 0, len(in.Slots))
	for _, s := range in.Slots {
		available := s.IsAvailable == nil || *s.IsAvailable
		slots = append(slots, models.Availability{
			DayOfWeek:   time.Weekday(s.DayOfWeek),
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			IsAvailable: available,
		})
	}
	out, err := p.caregivers.SetAvailability(c.UserContext(), middleware.UserID(c), slots)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

package caregiver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/service"
	"github.com/meinhoongagan/carehub/utils"
)

// Controller serves the caller's own caregiver profile and its read models.
type Controller struct {
	profiles   *service.ProfileAggregator
	caregivers *service.CaregiverManager
}

func NewController(profiles *service.ProfileAggregator, caregivers *service.CaregiverManager) *Controller {
	return &Controller{profiles: profiles, caregivers: caregivers}
}

// ownProfileID resolves the caller's caregiver profile.
func (p *Controller) ownProfileID(c *fiber.Ctx) (string, error) {
	view, err := p.profiles.GetByUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return "", err
	}
	return view.ID, nil
}

func (p *Controller) CreateProfile(c *fiber.Ctx) error {
	var in service.ProfileInput
	if err := utils.BindJSON(c, &in); err != nil {
		return err
	}
	view, err := p.caregivers.CreateProfile(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (p *Controller) GetProfile(c *fiber.Ctx) error {
	view, err := p.profiles.GetByUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// UpdateProfile patches the profile; services and certifications are merged when present
func (p *Controller) UpdateProfile(c *fiber.Ctx) error {
	var patch service.ProfilePatch
	if err := utils.BindJSON(c, &patch); err != nil {
		return err
	}
	view, err := p.caregivers.UpdateProfile(c.UserContext(), middleware.UserID(c), patch)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (p *Controller) DeleteProfile(c *fiber.Ctx) error {
	if err := p.caregivers.DeleteProfile(c.UserContext(), middleware.UserID(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCompletion reports completion without storing it
func (p *Controller) GetCompletion(c *fiber.Ctx) error {
	return p.completion(c, false)
}

// UpdateCompletion recomputes and stores the completion score
func (p *Controller) UpdateCompletion(c *fiber.Ctx) error {
	return p.completion(c, true)
}

func (p *Controller) completion(c *fiber.Ctx, persist bool) error {
	id, err := p.ownProfileID(c)
	if err != nil {
		return err
	}
	out, err := p.profiles.UpdateProfileCompletion(c.UserContext(), id, persist)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

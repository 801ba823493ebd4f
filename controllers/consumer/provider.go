package consumer

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/service"
	"github.com/meinhoongagan/carehub/utils"
)

// CaregiverController serves the public caregiver directory.
type CaregiverController struct {
	search     *service.SearchEngine
	profiles   *service.ProfileAggregator
	caregivers *service.CaregiverManager
}

func NewCaregiverController(search *service.SearchEngine, profiles *service.ProfileAggregator, caregivers *service.CaregiverManager) *CaregiverController {
	return &CaregiverController{search: search, profiles: profiles, caregivers: caregivers}
}

func searchFilter(c *fiber.Ctx) (service.SearchFilter, error) {
	f := service.SearchFilter{
		Services: utils.QueryList(c, "services"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sortBy"),
		Page:     utils.Page(c),
		Limit:    utils.Limit(c),
	}
	var err error
	if f.MinRate, err = utils.QueryFloat(c, "minRate"); err != nil {
		return f, err
	}
	if f.MaxRate, err = utils.QueryFloat(c, "maxRate"); err != nil {
		return f, err
	}
	if f.MinRating, err = utils.QueryFloat(c, "minRating"); err != nil {
		return f, err
	}
	if raw := c.Query("minExperience"); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil {
			return f, apperr.BadRequest("minExperience must be an integer")
		}
		f.MinExperience = &years
	}
	return f, nil
}

// SearchCaregivers filters verified caregivers
func (cc *CaregiverController) SearchCaregivers(c *fiber.Ctx) error {
	f, err := searchFilter(c)
	if err != nil {
		return err
	}
	page, err := cc.search.Search(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// GetPublicCaregivers is the browse listing
func (cc *CaregiverController) GetPublicCaregivers(c *fiber.Ctx) error {
	f, err := searchFilter(c)
	if err != nil {
		return err
	}
	page, err := cc.search.PublicListings(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (cc *CaregiverController) GetFeatured(c *fiber.Ctx) error {
	featured, err := cc.search.Featured(c.UserContext(), utils.Limit(c))
	if err != nil {
		return err
	}
	return c.JSON(featured)
}

// GetAvailableServices lists active services with their caregiver counts
func (cc *CaregiverController) GetAvailableServices(c *fiber.Ctx) error {
	services, err := cc.search.AvailableServices(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(services)
}

func (cc *CaregiverController) GetCaregiver(c *fiber.Ctx) error {
	view, err := cc.profiles.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// GetAvailability expands weekly slots over the requested days
func (cc *CaregiverController) GetAvailability(c *fiber.Ctx) error {
	start, err := utils.QueryDate(c, "start")
	if err != nil {
		return err
	}
	days := c.QueryInt("days", 0)
	if days > 60 {
		days = 60
	}
	out, err := cc.caregivers.GetPublicAvailability(c.UserContext(), c.Params("id"), start, days)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

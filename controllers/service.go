package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/service"
	"github.com/meinhoongagan/carehub/utils"
)

// ServiceController exposes the service catalog.
type ServiceController struct {
	catalog *service.Catalog
}

func NewServiceController(catalog *service.Catalog) *ServiceController {
	return &ServiceController{catalog: catalog}
}

// GetServices lists active services, optionally by category
func (s *ServiceController) GetServices(c *fiber.Ctx) error {
	services, err := s.catalog.List(c.UserContext(), false, models.ServiceCategory(c.Query("category")))
	if err != nil {
		return err
	}
	return c.JSON(services)
}

// GetAllServices includes inactive services
func (s *ServiceController) GetAllServices(c *fiber.Ctx) error {
	services, err := s.catalog.List(c.UserContext(), true, models.ServiceCategory(c.Query("category")))
	if err != nil {
		return err
	}
	return c.JSON(services)
}

func (s *ServiceController) GetService(c *fiber.Ctx) error {
	svc, err := s.catalog.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(svc)
}

func (s *ServiceController) CreateService(c *fiber.Ctx) error {
	var in service.ServiceInput
	if err := utils.BindJSON(c, &in); err != nil {
		return err
	}
	svc, err := s.catalog.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(svc)
}

func (s *ServiceController) UpdateService(c *fiber.Ctx) error {
	var patch service.ServicePatch
	if err := utils.BindJSON(c, &patch); err != nil {
		return err
	}
	svc, err := s.catalog.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(svc)
}

type activeInput struct {
	Active *bool `json:"active" validate:"required"`
}

// SetActive activates or deactivates a service
func (s *ServiceController) SetActive(c *fiber.Ctx) error {
	var in activeInput
	if err := utils.BindJSON(c, &in); err != nil {
		return err
	}
	svc, err := s.catalog.SetActive(c.UserContext(), c.Params("id"), *in.Active)
	if err != nil {
		return err
	}
	return c.JSON(svc)
}

func (s *ServiceController) DeleteService(c *fiber.Ctx) error {
	if err := s.catalog.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

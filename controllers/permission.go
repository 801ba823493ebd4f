package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/service"
	"github.com/meinhoongagan/carehub/utils"
)

type adminInput struct {
	UserID    string           `json:"user_id" validate:"required"`
	AdminRole models.AdminRole `json:"admin_role" validate:"required,oneof=SUPER_ADMIN ADMIN MODERATOR"`
}

type permissionInput struct {
	Permission string `json:"permission" validate:"required"`
}

// PermissionController manages admin membership and permissions.
type PermissionController struct {
	admins *service.AdminService
}

func NewPermissionController(admins *service.AdminService) *PermissionController {
	return &PermissionController{admins: admins}
}

func (p *PermissionController) CreateAdmin(c *fiber.Ctx) error {
	var in adminInput
	if err := utils.BindJSON(c, &in); err != nil {
		return err
	}
	admin, err := p.admins.CreateAdmin(c.UserContext(), in.UserID, in.AdminRole)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(admin)
}

// RemoveAdmin demotes an admin back to a client
func (p *PermissionController) RemoveAdmin(c *fiber.Ctx) error {
	if err := p.admins.RemoveAdmin(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (p *PermissionController) ListAdmins(c *fiber.Ctx) error {
	admins, err := p.admins.ListAdmins(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(admins)
}

func (p *PermissionController) AddPermission(c *fiber.Ctx) error {
	var in permissionInput
	if err := utils.BindJSON(c, &in); err != nil {
		return err
	}
	admin, err := p.admins.AddPermission(c.UserContext(), c.Params("id"), in.Permission)
	if err != nil {
		return err
	}
	return c.JSON(admin)
}

func (p *PermissionController) RemovePermission(c *fiber.Ctx) error {
	admin, err := p.admins.RemovePermission(c.UserContext(), c.Params("id"), c.Params("permission"))
	if err != nil {
		return err
	}
	return c.JSON(admin)
}

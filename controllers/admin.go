package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/service"
	"github.com/meinhoongagan/carehub/utils"
)

// ApprovalController reviews caregiver profiles awaiting verification.
type ApprovalController struct {
	admins *service.AdminService
}

func NewApprovalController(admins *service.AdminService) *ApprovalController {
	return &ApprovalController{admins: admins}
}

func (a *ApprovalController) Pending(c *fiber.Ctx) error {
	page, err := a.admins.PendingCaregivers(c.UserContext(), utils.Page(c), utils.Limit(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (a *ApprovalController) Approved(c *fiber.Ctx) error {
	page, err := a.admins.ApprovedCaregivers(c.UserContext(), utils.Page(c), utils.Limit(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (a *ApprovalController) Approve(c *fiber.Ctx) error {
	view, err := a.admins.ApproveCaregiver(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (a *ApprovalController) Reject(c *fiber.Ctx) error {
	view, err := a.admins.RejectCaregiver(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

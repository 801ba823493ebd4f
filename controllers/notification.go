package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/service"
	"github.com/meinhoongagan/carehub/utils"
)

type NotificationController struct {
	notifier *service.Notifier
}

func NewNotificationController(notifier *service.Notifier) *NotificationController {
	return &NotificationController{notifier: notifier}
}

// GetNotifications lists the caller's notifications, newest first
func (n *NotificationController) GetNotifications(c *fiber.Ctx) error {
	page, err := n.notifier.List(c.UserContext(), middleware.UserID(c), c.QueryBool("unread"), utils.Page(c), utils.Limit(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (n *NotificationController) MarkRead(c *fiber.Ctx) error {
	if err := n.notifier.MarkRead(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (n *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	if err := n.notifier.MarkAllRead(c.UserContext(), middleware.UserID(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

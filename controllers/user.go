package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/service"
	"github.com/meinhoongagan/carehub/utils"
)

type UserController struct {
	users *service.UserService
}

func NewUserController(users *service.UserService) *UserController {
	return &UserController{users: users}
}

// UpdateMe patches the caller's names and phone
func (u *UserController) UpdateMe(c *fiber.Ctx) error {
	var patch service.UserPatch
	if err := utils.BindJSON(c, &patch); err != nil {
		return err
	}
	user, err := u.users.Update(c.UserContext(), middleware.UserID(c), patch)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (u *UserController) Verify(c *fiber.Ctx) error {
	user, err := u.users.Verify(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (u *UserController) Get(c *fiber.Ctx) error {
	user, err := u.users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// List returns users, optionally filtered by role
func (u *UserController) List(c *fiber.Ctx) error {
	page, err := u.users.List(c.UserContext(), models.Role(c.Query("role")), utils.Page(c), utils.Limit(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/service"
	"github.com/meinhoongagan/carehub/utils"
)

type statusInput struct {
	Status models.BookingStatus `json:"status" validate:"required"`
}

type BookingController struct {
	bookings *service.BookingManager
}

func NewBookingController(bookings *service.BookingManager) *BookingController {
	return &BookingController{bookings: bookings}
}

// CreateBooking books a caregiver for the calling client
func (b *BookingController) CreateBooking(c *fiber.Ctx) error {
	var in service.BookingInput
	if err := utils.BindJSON(c, &in); err != nil {
		return err
	}
	booking, err := b.bookings.Create(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func (b *BookingController) GetBooking(c *fiber.Ctx) error {
	booking, err := b.bookings.Get(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(booking)
}

// GetBookings lists the caller's bookings. Admins may filter by participant.
func (b *BookingController) GetBookings(c *fiber.Ctx) error {
	page, err := b.bookings.List(c.UserContext(), middleware.Actor(c), service.BookingFilter{
		ClientID:    c.Query("clientId"),
		CaregiverID: c.Query("caregiverId"),
		Status:      models.BookingStatus(c.Query("status")),
		Page:        utils.Page(c),
		Limit:       utils.Limit(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (b *BookingController) UpdateBooking(c *fiber.Ctx) error {
	var patch service.BookingPatch
	if err := utils.BindJSON(c, &patch); err != nil {
		return err
	}
	booking, err := b.bookings.Update(c.UserContext(), middleware.Actor(c), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(booking)
}

// UpdateStatus moves a booking along its lifecycle
func (b *BookingController) UpdateStatus(c *fiber.Ctx) error {
	var in statusInput
	if err := utils.BindJSON(c, &in); err != nil {
		return err
	}
	booking, err := b.bookings.UpdateStatus(c.UserContext(), middleware.Actor(c), c.Params("id"), in.Status)
	if err != nil {
		return err
	}
	return c.JSON(booking)
}

func (b *BookingController) DeleteBooking(c *fiber.Ctx) error {
	if err := b.bookings.Delete(c.UserContext(), middleware.Actor(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetStats returns booking counts and revenue in the caller's scope
func (b *BookingController) GetStats(c *fiber.Ctx) error {
	stats, err := b.bookings.Stats(c.UserContext(), middleware.Actor(c), service.StatsScope{
		ClientID:    c.Query("clientId"),
		CaregiverID: c.Query("caregiverId"),
	})
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

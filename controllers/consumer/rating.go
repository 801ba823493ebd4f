package consumer

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/service"
	"github.com/meinhoongagan/carehub/utils"
)

type ReviewController struct {
	reviews *service.ReviewService
}

func NewReviewController(reviews *service.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// CreateReview rates a completed booking
func (r *ReviewController) CreateReview(c *fiber.Ctx) error {
	var in service.ReviewInput
	if err := utils.BindJSON(c, &in); err != nil {
		return err
	}
	review, err := r.reviews.Create(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// GetCaregiverReviews retrieves a page of reviews with rating stats
func (r *ReviewController) GetCaregiverReviews(c *fiber.Ctx) error {
	page, err := r.reviews.List(c.UserContext(), c.Params("id"), utils.Page(c), utils.Limit(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/events"
	"github.com/meinhoongagan/carehub/metrics"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/rs/zerolog"
)

const (
	minReviewRating = 0
	maxReviewRating = 5
)

type ReviewInput struct {
	BookingID string  `json:"booking_id" validate:"required"`
	Rating    float64 `json:"rating" validate:"gte=0,lte=5"`
	Comment   string  `json:"comment" validate:"max=2000"`
}

type ReviewView struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"booking_id"`
	Rating     float64   `json:"rating"`
	Comment    string    `json:"comment"`
	ClientName string    `json:"client_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func newReviewView(r models.Review) ReviewView {
	return ReviewView{
		ID:         r.ID,
		BookingID:  r.BookingID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		ClientName: r.Client.FullName(),
		CreatedAt:  r.CreatedAt,
	}
}

type ReviewPage struct {
	Items              []ReviewView  `json:"items"`
	AverageRating      float64       `json:"average_rating"`
	RatingDistribution map[int]int64 `json:"rating_distribution"`
	Pagination
}

// ReviewService accepts reviews of completed bookings.
type ReviewService struct {
	store   repository.Store
	ratings *RatingAccumulator
	events  Publisher
	logger  *zerolog.Logger
}

func NewReviewService(store repository.Store, ratings *RatingAccumulator, events Publisher, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{store: store, ratings: ratings, events: events, logger: logger}
}

// Create stores the review and folds its rating into the caregiver profile in one transaction.
func (s *ReviewService) Create(ctx context.Context, clientID string, in ReviewInput) (*ReviewView, error) {
	if math.IsNaN(in.Rating) || in.Rating < minReviewRating || in.Rating > maxReviewRating {
		return nil, apperr.BadRequest("rating must be between %d and %d", minReviewRating, maxReviewRating)
	}
	// reviews store two decimals
	in.Rating = round2(in.Rating)

	var (
		review  *models.Review
		result  *RatingResult
		booking *models.Booking
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		booking, err = tx.GetBooking(ctx, in.BookingID)
		if err != nil {
			return storeErr(err, "get booking", "booking %s not found", in.BookingID)
		}
		if booking.ClientID != clientID {
			return apperr.BadRequest("booking %s does not belong to you", in.BookingID)
		}
		if booking.Status != models.StatusCompleted {
			return apperr.BadRequest("only completed bookings can be reviewed")
		}
		if _, err := tx.GetReviewByBooking(ctx, booking.ID); err == nil {
			return apperr.Conflict("booking %s has already been reviewed", booking.ID)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return apperr.Internal(err, "get review")
		}

		profile, err := tx.GetCaregiverProfileByUser(ctx, booking.CaregiverID)
		if err != nil {
			return storeErr(err, "get caregiver profile", "caregiver profile for user %s not found", booking.CaregiverID)
		}

		review = &models.Review{
			BookingID:   booking.ID,
			CaregiverID: profile.ID,
			ClientID:    clientID,
			Client:      booking.Client,
			Rating:      in.Rating,
			Comment:     strings.TrimSpace(in.Comment),
		}
		if err := tx.CreateReview(ctx, review); err != nil {
			return storeErr(err, "create review", "booking %s not found", booking.ID)
		}
		result, err = s.ratings.Apply(ctx, tx, profile.ID, in.Rating)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.IncReview()
	s.logger.Info().Str("review_id", review.ID).Str("caregiver_id", result.CaregiverID).Float64("rating", result.Rating).Msg("review submitted")
	if s.events != nil {
		payload := events.ReviewEventPayload{
			ReviewID:          review.ID,
			BookingID:         booking.ID,
			CaregiverUserID:   booking.CaregiverID,
			ClientName:        booking.Client.FullName(),
			Rating:            review.Rating,
			CaregiverRating:   result.Rating,
			CaregiverReviewed: result.ReviewCount,
		}
		if err := s.events.PublishJSON(ctx, events.EventReviewSubmitted, payload); err != nil {
			s.logger.Error().Err(err).Str("review_id", review.ID).Msg("failed to publish review event")
		}
	}

	view := newReviewView(*review)
	return &view, nil
}

// List pages a caregiver's reviews with the average and a 1..5 distribution.
func (s *ReviewService) List(ctx context.Context, caregiverID string, page, limit int) (*ReviewPage, error) {
	if _, err := s.store.GetCaregiverProfile(ctx, caregiverID); err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver %s not found", caregiverID)
	}
	page, limit, offset := normalizePage(page, limit, defaultPageLimit)

	reviews, total, err := s.store.ListReviews(ctx, caregiverID, offset, limit)
	if err != nil {
		return nil, apperr.Internal(err, "list reviews")
	}
	ratings, err := s.store.ListReviewRatings(ctx, caregiverID)
	if err != nil {
		return nil, apperr.Internal(err, "list review ratings")
	}

	out := &ReviewPage{
		Items:              make([]ReviewView, 0, len(reviews)),
		RatingDistribution: ratingDistribution(ratings),
		Pagination:         newPagination(total, page, limit),
	}
	for _, r := range reviews {
		out.Items = append(out.Items, newReviewView(r))
	}
	if len(ratings) > 0 {
		var sum float64
		for _, r := range ratings {
			sum += r
		}
		out.AverageRating = round2(sum / float64(len(ratings)))
	}
	return out, nil
}

// ratingDistribution buckets ratings to the nearest star; anything below
// one star counts as one.
func ratingDistribution(ratings []float64) map[int]int64 {
	dist := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range ratings {
		star := int(math.Round(r))
		if star < 1 {
			star = 1
		}
		if star > 5 {
			star = 5
		}
		dist[star]++
	}
	return dist
}

package service

import (
	"context"
	"math"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/rs/zerolog"
)

// RatingResult is the rating state after an update.
type RatingResult struct {
	CaregiverID string  `json:"caregiver_id"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// NextRating folds newRating into a running mean over count observations,
// rounded to two decimals.
func NextRating(current float64, count int, newRating float64) float64 {
	return round2((current*float64(count) + newRating) / float64(count+1))
}

// RatingAccumulator keeps rating and review count consistent.
type RatingAccumulator struct {
	store  repository.Store
	logger *zerolog.Logger
}

func NewRatingAccumulator(store repository.Store, logger *zerolog.Logger) *RatingAccumulator {
	return &RatingAccumulator{store: store, logger: logger}
}

// UpdateRating applies one rating inside its own transaction.
func (r *RatingAccumulator) UpdateRating(ctx context.Context, caregiverID string, newRating float64) (*RatingResult, error) {
	var result *RatingResult
	err := r.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		result, err = r.Apply(ctx, tx, caregiverID, newRating)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug().Str("caregiver_id", caregiverID).Float64("rating", result.Rating).Int("review_count", result.ReviewCount).Msg("rating updated")
	return result, nil
}

// Apply performs the locked read-modify-write on tx. Callers own the transaction.
func (r *RatingAccumulator) Apply(ctx context.Context, tx repository.Store, caregiverID string, newRating float64) (*RatingResult, error) {
	if math.IsNaN(newRating) || math.IsInf(newRating, 0) {
		return nil, apperr.BadRequest("rating must be a finite number")
	}

	profile, err := tx.LockCaregiverProfile(ctx, caregiverID)
	if err != nil {
		return nil, storeErr(err, "lock caregiver", "caregiver %s not found", caregiverID)
	}

	result := &RatingResult{
		CaregiverID: caregiverID,
		Rating:      NextRating(profile.Rating, profile.ReviewCount, newRating),
		ReviewCount: profile.ReviewCount + 1,
	}
	err = tx.UpdateCaregiverProfile(ctx, caregiverID, map[string]interface{}{
		"rating":       result.Rating,
		"review_count": result.ReviewCount,
	})
	if err != nil {
		return nil, storeErr(err, "update rating", "caregiver %s not found", caregiverID)
	}
	return result, nil
}

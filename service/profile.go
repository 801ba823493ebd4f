package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/rs/zerolog"
)

const completionChecks = 6

// CertificationView is the display form of a certification.
type CertificationView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	IssuedBy   string     `json:"issued_by"`
	IssuedDate time.Time  `json:"issued_date"`
	ExpiryDate *time.Time `json:"expiry_date"`
	IsVerified bool       `json:"is_verified"`
	Lapsed     bool       `json:"lapsed"`
}

// CaregiverView is the composite caregiver record handed to the HTTP layer.
type CaregiverView struct {
	ID                string              `json:"id"`
	UserID            string              `json:"user_id"`
	FirstName         string              `json:"first_name"`
	LastName          string              `json:"last_name"`
	Bio               string              `json:"bio"`
	Experience        int                 `json:"experience"`
	HourlyRate        float64             `json:"hourly_rate"`
	Rating            float64             `json:"rating"`
	ReviewCount       int                 `json:"review_count"`
	IsVerified        bool                `json:"is_verified"`
	ProfileCompletion int                 `json:"profile_completion"`
	Services          []string            `json:"services"`
	Certifications    []CertificationView `json:"certifications"`
	CreatedAt         time.Time           `json:"created_at"`
}

// CompletionResult reports the completion score and what is still missing.
type CompletionResult struct {
	ProfileCompletion int      `json:"profile_completion"`
	MissingFields     []string `json:"missing_fields"`
	Persisted         bool     `json:"persisted"`
}

// ProfileCompletion scores a profile over six presence checks.
func ProfileCompletion(p *models.CaregiverProfile) (int, []string) {
	missing := make([]string, 0, completionChecks)
	if strings.TrimSpace(p.Bio) == "" {
		missing = append(missing, "bio")
	}
	if p.Experience <= 0 {
		missing = append(missing, "experience")
	}
	if p.HourlyRate <= 0 {
		missing = append(missing, "hourly_rate")
	}
	if len(p.Services) == 0 {
		missing = append(missing, "services")
	}
	if len(p.Certifications) == 0 {
		missing = append(missing, "certifications")
	}
	if !p.IsVerified {
		missing = append(missing, "verification")
	}

	done := completionChecks - len(missing)
	return int(math.Round(float64(done) / completionChecks * 100)), missing
}

// ProfileAggregator composes caregiver read models from normalized rows.
type ProfileAggregator struct {
	store  repository.Store
	now    Clock
	logger *zerolog.Logger
}

func NewProfileAggregator(store repository.Store, now Clock, logger *zerolog.Logger) *ProfileAggregator {
	return &ProfileAggregator{store: store, now: now, logger: logger}
}

// Compose flattens a preloaded profile into its view.
func (a *ProfileAggregator) Compose(p *models.CaregiverProfile) CaregiverView {
	now := a.now()
	certs := make([]CertificationView, 0, len(p.Certifications))
	for _, c := range p.Certifications {
		certs = append(certs, CertificationView{
			ID:         c.ID,
			Name:       c.Name,
			IssuedBy:   c.IssuedBy,
			IssuedDate: c.IssuedDate,
			ExpiryDate: c.ExpiryDate,
			IsVerified: c.IsVerified,
			Lapsed:     c.Lapsed(now),
		})
	}

	completion, _ := ProfileCompletion(p)
	return CaregiverView{
		ID:                p.ID,
		UserID:            p.UserID,
		FirstName:         p.User.FirstName,
		LastName:          p.User.LastName,
		Bio:               p.Bio,
		Experience:        p.Experience,
		HourlyRate:        p.HourlyRate,
		Rating:            p.Rating,
		ReviewCount:       p.ReviewCount,
		IsVerified:        p.IsVerified,
		ProfileCompletion: completion,
		Services:          p.ServiceNames(),
		Certifications:    certs,
		CreatedAt:         p.CreatedAt,
	}
}

// Get builds the composite view for a caregiver profile id.
func (a *ProfileAggregator) Get(ctx context.Context, id string) (*CaregiverView, error) {
	profile, err := a.store.GetCaregiverProfile(ctx, id)
	if err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver %s not found", id)
	}
	view := a.Compose(profile)
	return &view, nil
}

// GetByUser builds the composite view for the caregiver owning userID.
func (a *ProfileAggregator) GetByUser(ctx context.Context, userID string) (*CaregiverView, error) {
	profile, err := a.store.GetCaregiverProfileByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver profile for user %s not found", userID)
	}
	view := a.Compose(profile)
	return &view, nil
}

// UpdateProfileCompletion recomputes the score and stores it only when persist is set.
func (a *ProfileAggregator) UpdateProfileCompletion(ctx context.Context, id string, persist bool) (*CompletionResult, error) {
	profile, err := a.store.GetCaregiverProfile(ctx, id)
	if err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver %s not found", id)
	}

	score, missing := ProfileCompletion(profile)
	result := &CompletionResult{ProfileCompletion: score, MissingFields: missing}
	if !persist {
		return result, nil
	}

	if err := a.store.UpdateCaregiverProfile(ctx, id, map[string]interface{}{"profile_completion": score}); err != nil {
		a.logger.Error().Err(err).Str("caregiver_id", id).Msg("failed to persist profile completion")
		return nil, storeErr(err, "update profile completion", "caregiver %s not found", id)
	}
	result.Persisted = true
	return result, nil
}

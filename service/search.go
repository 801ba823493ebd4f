package service

import (
	"context"
	"strings"

	"github.com/meinhoongagan/carehub/repository"
	"github.com/rs/zerolog"
)

const (
	featuredMinRating    = 4.5
	defaultFeaturedLimit = 6
)

// SearchFilter is a caregiver search request. Nil pointers impose no constraint.
type SearchFilter struct {
	Services      []string
	MinRate       *float64
	MaxRate       *float64
	MinRating     *float64
	MinExperience *int
	Search        string
	SortBy        string
	Page          int
	Limit         int
}

// CaregiverSummary is one search hit with booking derived fields.
type CaregiverSummary struct {
	CaregiverView
	CompletedJobs    int64 `json:"completed_jobs"`
	RepeatClientRate int   `json:"repeat_client_rate"`
}

// SearchPage is one page of caregiver summaries.
type SearchPage struct {
	Items []CaregiverSummary `json:"items"`
	Pagination
}

// ServiceAvailability counts verified caregivers offering a service.
type ServiceAvailability struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	CaregiverCount int64  `json:"caregiver_count"`
}

// SearchEngine turns filters into store queries and enriches the results.
type SearchEngine struct {
	store    repository.Store
	profiles *ProfileAggregator
	logger   *zerolog.Logger
}

func NewSearchEngine(store repository.Store, profiles *ProfileAggregator, logger *zerolog.Logger) *SearchEngine {
	return &SearchEngine{store: store, profiles: profiles, logger: logger}
}

// ParseSort maps a sortBy value onto a store ordering; unknown values sort by rating.
func ParseSort(sortBy string) repository.CaregiverSort {
	switch repository.CaregiverSort(strings.ToLower(strings.TrimSpace(sortBy))) {
	case repository.SortPriceLow:
		return repository.SortPriceLow
	case repository.SortPriceHigh:
		return repository.SortPriceHigh
	case repository.SortExperience:
		return repository.SortExperience
	case repository.SortNewest:
		return repository.SortNewest
	}
	return repository.SortRating
}

// Search runs a generic caregiver search, 10 per page by default.
func (e *SearchEngine) Search(ctx context.Context, f SearchFilter) (*SearchPage, error) {
	return e.run(ctx, f, defaultSearchLimit)
}

// PublicListings runs the public directory search, 12 per page by default.
func (e *SearchEngine) PublicListings(ctx context.Context, f SearchFilter) (*SearchPage, error) {
	return e.run(ctx, f, defaultListLimit)
}

func (e *SearchEngine) run(ctx context.Context, f SearchFilter, fallbackLimit int) (*SearchPage, error) {
	page, limit, offset := normalizePage(f.Page, f.Limit, fallbackLimit)

	services := make([]string, 0, len(f.Services))
	for _, name := range f.Services {
		if name = strings.TrimSpace(name); name != "" {
			services = append(services, name)
		}
	}

	profiles, total, err := e.store.SearchCaregivers(ctx, repository.CaregiverQuery{
		Services:      services,
		MinRate:       f.MinRate,
		MaxRate:       f.MaxRate,
		MinRating:     f.MinRating,
		MinExperience: f.MinExperience,
		Search:        f.Search,
		VerifiedOnly:  true,
		Sort:          ParseSort(f.SortBy),
		Offset:        offset,
		Limit:         limit,
	})
	if err != nil {
		e.logger.Error().Err(err).Msg("caregiver search failed")
		return nil, storeErr(err, "search caregivers", "no caregivers found")
	}

	userIDs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		userIDs = append(userIDs, p.UserID)
	}
	counts, err := e.store.BookingCountsByCaregiver(ctx, userIDs)
	if err != nil {
		return nil, storeErr(err, "count caregiver bookings", "no bookings found")
	}

	items := make([]CaregiverSummary, 0, len(profiles))
	for i := range profiles {
		c := counts[profiles[i].UserID]
		items = append(items, CaregiverSummary{
			CaregiverView:    e.profiles.Compose(&profiles[i]),
			CompletedJobs:    c.Completed,
			RepeatClientRate: percent(c.Completed, c.Total),
		})
	}

	return &SearchPage{Items: items, Pagination: newPagination(total, page, limit)}, nil
}

// Featured returns top rated verified caregivers.
func (e *SearchEngine) Featured(ctx context.Context, limit int) ([]CaregiverView, error) {
	if limit < 1 {
		limit = defaultFeaturedLimit
	}
	minRating := featuredMinRating
	profiles, _, err := e.store.SearchCaregivers(ctx, repository.CaregiverQuery{
		VerifiedOnly: true,
		MinRating:    &minRating,
		Sort:         repository.SortFeatured,
		Limit:        limit,
	})
	if err != nil {
		return nil, storeErr(err, "featured caregivers", "no caregivers found")
	}

	views := make([]CaregiverView, 0, len(profiles))
	for i := range profiles {
		views = append(views, e.profiles.Compose(&profiles[i]))
	}
	return views, nil
}

// AvailableServices lists active services with their verified caregiver counts.
func (e *SearchEngine) AvailableServices(ctx context.Context) ([]ServiceAvailability, error) {
	services, err := e.store.ListServices(ctx, true)
	if err != nil {
		return nil, storeErr(err, "list services", "no services found")
	}
	counts, err := e.store.CountCaregiversByService(ctx)
	if err != nil {
		return nil, storeErr(err, "count caregivers by service", "no services found")
	}

	out := make([]ServiceAvailability, 0, len(services))
	for _, s := range services {
		out = append(out, ServiceAvailability{
			ID:             s.ID,
			Name:           s.Name,
			Category:       string(s.Category),
			CaregiverCount: counts[s.ID],
		})
	}
	return out, nil
}

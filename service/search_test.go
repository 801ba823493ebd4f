package service_test

import (
	"context"
	"testing"

	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/meinhoongagan/carehub/repository/repotest"
	"github.com/meinhoongagan/carehub/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	tests := map[string]repository.CaregiverSort{
		"price-low":  repository.SortPriceLow,
		"PRICE-HIGH": repository.SortPriceHigh,
		"experience": repository.SortExperience,
		"newest":     repository.SortNewest,
		"rating":     repository.SortRating,
		"":           repository.SortRating,
		"cheapest":   repository.SortRating,
		"featured":   repository.SortRating,
	}
	for in, want := range tests {
		assert.Equal(t, want, service.ParseSort(in), in)
	}
}

func TestSearchEngine(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()
	profiles := service.NewProfileAggregator(store, clockAt(fixedNow), nopLogger)
	engine := service.NewSearchEngine(store, profiles, nopLogger)

	companionship := repotest.Service(t, conn, "Companionship")
	transport := repotest.Service(t, conn, "Transportation Services")

	var ids []string
	for i, rate := range []float64{18, 22, 25, 35} {
		p := repotest.Caregiver(t, conn, repotest.CaregiverOpts{
			FirstName:  []string{"Ann", "Bea", "Cid", "Dot"}[i],
			HourlyRate: rate,
			Rating:     float64(i + 1),
			Services:   []*models.Service{companionship},
		})
		ids = append(ids, p.ID)
	}
	driver := repotest.Caregiver(t, conn, repotest.CaregiverOpts{FirstName: "Eli", HourlyRate: 40, Rating: 4.9, ReviewCount: 3, Services: []*models.Service{transport}})
	top := repotest.Caregiver(t, conn, repotest.CaregiverOpts{FirstName: "Fay", HourlyRate: 45, Rating: 4.9, ReviewCount: 12})
	repotest.Caregiver(t, conn, repotest.CaregiverOpts{FirstName: "Gus", HourlyRate: 50, Rating: 4.6})
	repotest.Caregiver(t, conn, repotest.CaregiverOpts{FirstName: "Hid", HourlyRate: 30, Rating: 5, Unverified: true, Services: []*models.Service{transport}})

	t.Run("RateWindow", func(t *testing.T) {
		page, err := engine.Search(ctx, service.SearchFilter{MinRate: ptr(20.0), MaxRate: ptr(30.0), SortBy: "price-low"})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.EqualValues(t, 2, page.Total)
		assert.Equal(t, 22.0, page.Items[0].HourlyRate)
		assert.Equal(t, 25.0, page.Items[1].HourlyRate)
	})

	t.Run("DefaultsAndStablePaging", func(t *testing.T) {
		first, err := engine.Search(ctx, service.SearchFilter{Limit: 3})
		require.NoError(t, err)
		second, err := engine.Search(ctx, service.SearchFilter{Page: 2, Limit: 3})
		require.NoError(t, err)

		assert.EqualValues(t, 7, first.Total)
		assert.Equal(t, first.Total, second.Total)
		assert.EqualValues(t, 3, first.Pages)
		assert.Len(t, first.Items, 3)
		assert.Len(t, second.Items, 3)
		assert.NotEqual(t, first.Items[0].ID, second.Items[0].ID)

		all, err := engine.Search(ctx, service.SearchFilter{})
		require.NoError(t, err)
		assert.Equal(t, 10, all.Limit)
		assert.EqualValues(t, len(all.Items), all.Total)

		listing, err := engine.PublicListings(ctx, service.SearchFilter{})
		require.NoError(t, err)
		assert.Equal(t, 12, listing.Limit)
		assert.Equal(t, 1, listing.Page)
	})

	t.Run("ServiceFilterAndText", func(t *testing.T) {
		page, err := engine.Search(ctx, service.SearchFilter{Services: []string{"Transportation Services", " "}})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, driver.ID, page.Items[0].ID)

		page, err = engine.Search(ctx, service.SearchFilter{Search: "transport"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, driver.ID, page.Items[0].ID)
	})

	t.Run("Enrichment", func(t *testing.T) {
		client := repotest.User(t, conn, models.RoleClient, "Cli")
		bea, err := store.GetCaregiverProfile(ctx, ids[1])
		require.NoError(t, err)
		repotest.Booking(t, conn, client.ID, bea.UserID, companionship.ID, repotest.BookingOpts{Status: models.StatusCompleted, TotalAmount: 50})
		repotest.Booking(t, conn, client.ID, bea.UserID, companionship.ID, repotest.BookingOpts{Status: models.StatusCompleted, TotalAmount: 50})
		repotest.Booking(t, conn, client.ID, bea.UserID, companionship.ID, repotest.BookingOpts{Status: models.StatusCancelled})

		page, err := engine.Search(ctx, service.SearchFilter{Search: "Bea"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.EqualValues(t, 2, page.Items[0].CompletedJobs)
		assert.Equal(t, 67, page.Items[0].RepeatClientRate)

		page, err = engine.Search(ctx, service.SearchFilter{Search: "Ann"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Zero(t, page.Items[0].RepeatClientRate)
	})

	t.Run("Featured", func(t *testing.T) {
		featured, err := engine.Featured(ctx, 0)
		require.NoError(t, err)
		require.Len(t, featured, 3)
		assert.Equal(t, top.ID, featured[0].ID)
		assert.Equal(t, driver.ID, featured[1].ID)
		assert.Equal(t, 4.6, featured[2].Rating)

		limited, err := engine.Featured(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("AvailableServices", func(t *testing.T) {
		services, err := engine.AvailableServices(ctx)
		require.NoError(t, err)
		counts := map[string]int64{}
		for _, s := range services {
			counts[s.Name] = s.CaregiverCount
		}
		assert.EqualValues(t, 4, counts["Companionship"])
		assert.EqualValues(t, 1, counts["Transportation Services"], "unverified caregivers are not counted")
	})
}

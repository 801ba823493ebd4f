package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/meinhoongagan/carehub/repository/repotest"
	"github.com/meinhoongagan/carehub/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCaregiverManager(store repository.Store) *service.CaregiverManager {
	clock := clockAt(fixedNow)
	profiles := service.NewProfileAggregator(store, clock, nopLogger)
	stats := service.NewBookingStats(store, clock, nopLogger)
	return service.NewCaregiverManager(store, profiles, stats, clock, nopLogger)
}

func linkIDs(t *testing.T, store repository.Store, profileID string) map[string]string {
	t.Helper()
	links, err := store.ListCaregiverServices(context.Background(), profileID)
	require.NoError(t, err)
	out := map[string]string{}
	for _, l := range links {
		out[l.Service.Name] = l.ID
	}
	return out
}

func TestCaregiverProfileLifecycle(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()
	manager := newCaregiverManager(store)

	repotest.Service(t, conn, "Companionship")
	user := repotest.User(t, conn, models.RoleCaregiver, "Nia")

	view, err := manager.CreateProfile(ctx, user.ID, service.ProfileInput{
		Bio:        "Registered nurse",
		Experience: 6,
		HourlyRate: 32,
		Services:   []string{"Companionship", "Respite Care", "Companionship"},
		Certifications: []service.CertificationInput{
			{Name: "CPR", IssuedBy: "Red Cross", IssuedDate: day(time.January, 10)},
			{Name: "First Aid", IssuedBy: "St John", IssuedDate: day(time.January, 12)},
		},
	})
	require.NoError(t, err)

	t.Run("CreateRoundTrip", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Companionship", "Respite Care"}, view.Services)
		assert.Equal(t, 5.0, view.Rating)
		assert.Zero(t, view.ReviewCount)
		assert.Len(t, view.Certifications, 2)

		created, err := store.GetServiceByName(ctx, "Respite Care")
		require.NoError(t, err)
		assert.Equal(t, models.CategoryPersonalCare, created.Category)
		assert.True(t, created.IsActive)

		fetched, err := manager.GetAvailability(ctx, view.ID)
		require.NoError(t, err)
		assert.Empty(t, fetched)
	})

	t.Run("CreateRejects", func(t *testing.T) {
		_, err := manager.CreateProfile(ctx, user.ID, service.ProfileInput{})
		assertKind(t, err, apperr.KindConflict)

		client := repotest.User(t, conn, models.RoleClient, "Cal")
		_, err = manager.CreateProfile(ctx, client.ID, service.ProfileInput{})
		assertKind(t, err, apperr.KindBadRequest)

		_, err = manager.CreateProfile(ctx, "missing", service.ProfileInput{})
		assertKind(t, err, apperr.KindNotFound)

		other := repotest.User(t, conn, models.RoleCaregiver, "Neg")
		_, err = manager.CreateProfile(ctx, other.ID, service.ProfileInput{HourlyRate: -1})
		assertKind(t, err, apperr.KindBadRequest)
	})

	t.Run("UpdateMergesServices", func(t *testing.T) {
		before := linkIDs(t, store, view.ID)

		updated, err := manager.UpdateProfile(ctx, user.ID, service.ProfilePatch{
			HourlyRate: ptr(35.0),
			Services:   []string{"Companionship", "Dementia Care"},
		})
		require.NoError(t, err)
		assert.Equal(t, 35.0, updated.HourlyRate)
		assert.Equal(t, "Registered nurse", updated.Bio)
		assert.ElementsMatch(t, []string{"Companionship", "Dementia Care"}, updated.Services)

		after := linkIDs(t, store, view.ID)
		assert.Equal(t, before["Companionship"], after["Companionship"], "unchanged links are kept")
		assert.NotContains(t, after, "Respite Care")
		assert.Len(t, updated.Certifications, 2, "certifications untouched when absent from patch")
	})

	t.Run("UpdateMergesCertifications", func(t *testing.T) {
		certs, err := store.ListCertifications(ctx, view.ID)
		require.NoError(t, err)
		ids := map[string]string{}
		for _, c := range certs {
			ids[c.Name] = c.ID
		}

		expiry := day(time.December, 31)
		updated, err := manager.UpdateProfile(ctx, user.ID, service.ProfilePatch{
			Certifications: []service.CertificationInput{
				{Name: "CPR", IssuedBy: "Red Cross", IssuedDate: day(time.February, 1), ExpiryDate: &expiry},
				{Name: "BLS", IssuedBy: "AHA", IssuedDate: day(time.February, 2)},
			},
		})
		require.NoError(t, err)
		require.Len(t, updated.Certifications, 2)

		byName := map[string]service.CertificationView{}
		for _, c := range updated.Certifications {
			byName[c.Name] = c
		}
		assert.Equal(t, ids["CPR"], byName["CPR"].ID)
		require.NotNil(t, byName["CPR"].ExpiryDate)
		assert.True(t, expiry.Equal(*byName["CPR"].ExpiryDate))
		assert.Contains(t, byName, "BLS")
		assert.NotContains(t, byName, "First Aid")
		assert.ElementsMatch(t, []string{"Companionship", "Dementia Care"}, updated.Services)
	})

	t.Run("EmptySliceClears", func(t *testing.T) {
		updated, err := manager.UpdateProfile(ctx, user.ID, service.ProfilePatch{Services: []string{}})
		require.NoError(t, err)
		assert.Empty(t, updated.Services)
	})

	t.Run("UpdateWithoutProfile", func(t *testing.T) {
		stranger := repotest.User(t, conn, models.RoleCaregiver, "Ola")
		_, err := manager.UpdateProfile(ctx, stranger.ID, service.ProfilePatch{Bio: ptr("hi")})
		assertKind(t, err, apperr.KindNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, manager.DeleteProfile(ctx, user.ID))
		_, err := store.GetCaregiverProfile(ctx, view.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assertKind(t, manager.DeleteProfile(ctx, user.ID), apperr.KindNotFound)
	})
}

func TestCaregiverSchedule(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()
	manager := newCaregiverManager(store)

	svc := repotest.Service(t, conn, "Companionship")
	client := repotest.User(t, conn, models.RoleClient, "Rex")
	carer := repotest.Caregiver(t, conn, repotest.CaregiverOpts{FirstName: "Kim"})

	book := func(status models.BookingStatus, scheduled time.Time, start string) {
		repotest.Booking(t, conn, client.ID, carer.UserID, svc.ID, repotest.BookingOpts{Status: status, ScheduledDate: scheduled, StartTime: start})
	}
	book(models.StatusConfirmed, day(time.March, 20), "14:00")
	book(models.StatusInProgress, day(time.March, 18), "09:00")
	book(models.StatusConfirmed, day(time.March, 20), "08:00")
	book(models.StatusPending, day(time.March, 19), "09:00")
	book(models.StatusConfirmed, day(time.March, 30), "09:00")
	book(models.StatusConfirmed, day(time.March, 24), "10:00")

	t.Run("DefaultWindow", func(t *testing.T) {
		schedule, err := manager.GetSchedule(ctx, carer.ID, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "2025-03-18", schedule.Start)
		assert.Equal(t, "2025-03-25", schedule.End)
		require.Len(t, schedule.Schedule, 4)
		assert.Equal(t, "2025-03-18", schedule.Schedule[0].ScheduledDate)
		assert.Equal(t, "08:00", schedule.Schedule[1].StartTime)
		assert.Equal(t, "14:00", schedule.Schedule[2].StartTime)
		assert.Equal(t, "2025-03-24", schedule.Schedule[3].ScheduledDate)
		assert.Equal(t, "Care for Rex Tester", schedule.Schedule[0].Title)
	})

	t.Run("ExplicitWindow", func(t *testing.T) {
		start, end := day(time.March, 29), day(time.March, 31)
		schedule, err := manager.GetSchedule(ctx, carer.ID, &start, &end)
		require.NoError(t, err)
		require.Len(t, schedule.Schedule, 1)

		_, err = manager.GetSchedule(ctx, carer.ID, &end, &start)
		assertKind(t, err, apperr.KindBadRequest)
	})

	t.Run("Availability", func(t *testing.T) {
		_, err := manager.SetAvailability(ctx, carer.UserID, []models.Availability{{DayOfWeek: time.Monday, StartTime: "9am", EndTime: "12:00"}})
		assertKind(t, err, apperr.KindBadRequest)
		_, err = manager.SetAvailability(ctx, carer.UserID, []models.Availability{{DayOfWeek: 7, StartTime: "09:00", EndTime: "12:00"}})
		assertKind(t, err, apperr.KindBadRequest)

		slots, err := manager.SetAvailability(ctx, carer.UserID, []models.Availability{
			{DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
			{DayOfWeek: time.Monday, StartTime: "13:00", EndTime: "17:00", IsAvailable: true},
			{DayOfWeek: time.Sunday, StartTime: "10:00", EndTime: "12:00", IsAvailable: false},
		})
		require.NoError(t, err)
		assert.Len(t, slots, 3)

		public, err := manager.GetPublicAvailability(ctx, carer.ID, nil, 0)
		require.NoError(t, err)
		require.Len(t, public.Availability, 2)
		assert.Equal(t, "2025-03-24", public.Availability[0].Date)
		assert.Equal(t, "2025-03-31", public.Availability[1].Date)
		assert.Len(t, public.Availability[0].Slots, 2)

		booked := map[string]bool{}
		for _, b := range public.BookedSlots {
			booked[b.Date+" "+b.StartTime] = true
		}
		assert.True(t, booked["2025-03-24 10:00"])
		assert.True(t, booked["2025-03-30 09:00"])
		assert.False(t, booked["2025-03-19 09:00"], "pending bookings do not block slots")

		short, err := manager.GetPublicAvailability(ctx, carer.ID, nil, 3)
		require.NoError(t, err)
		assert.Empty(t, short.Availability)
	})

	t.Run("UnknownCaregiver", func(t *testing.T) {
		_, err := manager.GetSchedule(ctx, "missing", nil, nil)
		assertKind(t, err, apperr.KindNotFound)
		_, err = manager.GetPublicAvailability(ctx, "missing", nil, 0)
		assertKind(t, err, apperr.KindNotFound)
	})
}

func TestCaregiverClientsAndDashboard(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()
	manager := newCaregiverManager(store)

	svc := repotest.Service(t, conn, "Companionship")
	regular := repotest.User(t, conn, models.RoleClient, "Reg")
	former := repotest.User(t, conn, models.RoleClient, "For")
	carer := repotest.Caregiver(t, conn, repotest.CaregiverOpts{Bio: "Hi", Rating: 4.5, ReviewCount: 2})

	book := func(client *models.User, status models.BookingStatus, amount float64, created time.Time) *models.Booking {
		return repotest.Booking(t, conn, client.ID, carer.UserID, svc.ID, repotest.BookingOpts{Status: status, TotalAmount: amount, CreatedAt: created})
	}
	done := book(regular, models.StatusCompleted, 80, day(time.March, 10))
	book(regular, models.StatusPending, 40, day(time.March, 15))
	book(former, models.StatusCompleted, 60, day(time.January, 2))

	seedReview(t, conn, done, carer.ID, 4.5)

	t.Run("Clients", func(t *testing.T) {
		list, err := manager.GetClients(ctx, carer.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, list.TotalClients)
		assert.EqualValues(t, 1, list.ActiveClients)
		require.Len(t, list.Clients, 2)

		first := list.Clients[0]
		assert.Equal(t, regular.ID, first.ID)
		assert.Equal(t, 2, first.TotalBookings)
		assert.Equal(t, 1, first.CompletedBookings)
		assert.True(t, first.Active)
		assert.True(t, day(time.March, 15).Equal(first.LastBooking))
		assert.False(t, list.Clients[1].Active)
	})

	t.Run("Bookings", func(t *testing.T) {
		page, err := manager.GetBookings(ctx, carer.ID, models.StatusCompleted, 1, 1)
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)
		assert.EqualValues(t, 2, page.Pages)
		require.Len(t, page.Items, 1)
		assert.Equal(t, done.ID, page.Items[0].ID)

		_, err = manager.GetBookings(ctx, carer.ID, models.BookingStatus("LOST"), 1, 10)
		assertKind(t, err, apperr.KindBadRequest)
	})

	t.Run("Dashboard", func(t *testing.T) {
		data, err := manager.GetDashboardData(ctx, carer.ID)
		require.NoError(t, err)
		assert.Equal(t, carer.ID, data.Profile.ID)
		assert.EqualValues(t, 3, data.Stats.TotalBookings)
		assert.EqualValues(t, 2, data.Stats.CompletedBookings)
		assert.EqualValues(t, 1, data.Stats.PendingBookings)
		assert.Equal(t, 140.0, data.Stats.TotalEarnings)
		assert.Equal(t, 80.0, data.Stats.MonthlyEarnings)
		assert.Equal(t, 4.5, data.Stats.AverageRating)
		assert.Nil(t, data.Stats.ResponseRate)
		assert.Len(t, data.RecentBookings, 3)
		require.Len(t, data.RecentReviews, 1)
		assert.Equal(t, "Reg Tester", data.RecentReviews[0].ClientName)
	})

	t.Run("Earnings", func(t *testing.T) {
		earnings, err := manager.Earnings(ctx, carer.ID, service.PeriodYear)
		require.NoError(t, err)
		assert.Equal(t, 140.0, earnings.PeriodEarnings)
	})
}

func seedReview(t *testing.T, conn *gorm.DB, booking *models.Booking, caregiverID string, rating float64) {
	t.Helper()
	review := &models.Review{BookingID: booking.ID, CaregiverID: caregiverID, ClientID: booking.ClientID, Rating: rating, Comment: "Lovely"}
	require.NoError(t, conn.Omit("Client").Create(review).Error)
}

func TestBookedDayFallsInsideDayWindows(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()
	bookings := newBookingManager(store, nil)
	manager := newCaregiverManager(store)

	svc := repotest.Service(t, conn, "Respite")
	client := repotest.User(t, conn, models.RoleClient, "Lou")
	carer := repotest.Caregiver(t, conn, repotest.CaregiverOpts{FirstName: "Ida"})
	carerActor := service.Actor{UserID: carer.UserID, Role: models.RoleCaregiver}
	clientActor := service.Actor{UserID: client.ID, Role: models.RoleClient}

	booking, err := bookings.Create(ctx, client.ID, service.BookingInput{
		CaregiverID:   carer.UserID,
		ServiceID:     svc.ID,
		ScheduledDate: time.Date(2025, time.March, 20, 9, 0, 0, 0, time.UTC),
		StartTime:     "09:00",
		EndTime:       "11:00",
		HourlyRate:    20,
	})
	require.NoError(t, err)
	assert.True(t, booking.ScheduledDate.Equal(day(time.March, 20)), "stored as the calendar day")
	_, err = bookings.UpdateStatus(ctx, carerActor, booking.ID, models.StatusConfirmed)
	require.NoError(t, err)

	d := day(time.March, 20)
	schedule, err := manager.GetSchedule(ctx, carer.ID, &d, &d)
	require.NoError(t, err)
	require.Len(t, schedule.Schedule, 1)
	assert.Equal(t, "2025-03-20", schedule.Schedule[0].ScheduledDate)

	public, err := manager.GetPublicAvailability(ctx, carer.ID, &d, 1)
	require.NoError(t, err)
	require.Len(t, public.BookedSlots, 1)
	assert.Equal(t, "2025-03-20", public.BookedSlots[0].Date)

	// Rescheduling with a clock time also lands on the day.
	moved := time.Date(2025, time.March, 22, 23, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))
	updated, err := bookings.Update(ctx, clientActor, booking.ID, service.BookingPatch{ScheduledDate: &moved})
	require.NoError(t, err)
	assert.True(t, updated.ScheduledDate.Equal(day(time.March, 22)))

	d = day(time.March, 22)
	schedule, err = manager.GetSchedule(ctx, carer.ID, &d, &d)
	require.NoError(t, err)
	assert.Len(t, schedule.Schedule, 1)
}

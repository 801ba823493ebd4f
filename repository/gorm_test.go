package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/meinhoongagan/carehub/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestSearchCaregivers(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()

	companionship := repotest.Service(t, conn, "Companionship")
	nursing := repotest.Service(t, conn, "Nursing Care")

	rates := []float64{18, 22, 25, 35}
	for i, rate := range rates {
		repotest.Caregiver(t, conn, repotest.CaregiverOpts{
			FirstName:  []string{"Ann", "Bea", "Cid", "Dot"}[i],
			HourlyRate: rate,
			Rating:     float64(i + 1),
			Experience: i * 2,
			Services:   []*models.Service{companionship},
		})
	}
	repotest.Caregiver(t, conn, repotest.CaregiverOpts{FirstName: "Hidden", HourlyRate: 24, Unverified: true})
	repotest.Caregiver(t, conn, repotest.CaregiverOpts{FirstName: "Pending", HourlyRate: 24, UserPending: true})
	repotest.Caregiver(t, conn, repotest.CaregiverOpts{
		FirstName:  "Eve",
		Bio:        "Former ICU nurse",
		HourlyRate: 60,
		Rating:     4.9,
		Services:   []*models.Service{nursing},
	})

	t.Run("RateWindowPriceLow", func(t *testing.T) {
		rows, total, err := store.SearchCaregivers(ctx, repository.CaregiverQuery{
			VerifiedOnly: true,
			MinRate:      ptr(20.0),
			MaxRate:      ptr(30.0),
			Sort:         repository.SortPriceLow,
		})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.EqualValues(t, 2, total)
		assert.Equal(t, 22.0, rows[0].HourlyRate)
		assert.Equal(t, 25.0, rows[1].HourlyRate)
	})

	t.Run("UnverifiedExcluded", func(t *testing.T) {
		_, total, err := store.SearchCaregivers(ctx, repository.CaregiverQuery{VerifiedOnly: true})
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
	})

	t.Run("TotalStableAcrossPages", func(t *testing.T) {
		q := repository.CaregiverQuery{VerifiedOnly: true, Limit: 2}
		var seen []string
		for page := 0; page < 3; page++ {
			q.Offset = page * 2
			rows, total, err := store.SearchCaregivers(ctx, q)
			require.NoError(t, err)
			assert.EqualValues(t, 5, total)
			for _, row := range rows {
				seen = append(seen, row.ID)
			}
		}
		assert.Len(t, seen, 5)
	})

	t.Run("DefaultSortRatingDesc", func(t *testing.T) {
		rows, _, err := store.SearchCaregivers(ctx, repository.CaregiverQuery{VerifiedOnly: true})
		require.NoError(t, err)
		require.NotEmpty(t, rows)
		assert.Equal(t, "Eve", rows[0].User.FirstName)
		for i := 1; i < len(rows); i++ {
			assert.GreaterOrEqual(t, rows[i-1].Rating, rows[i].Rating)
		}
	})

	t.Run("SearchMatchesServiceNameAndBio", func(t *testing.T) {
		rows, total, err := store.SearchCaregivers(ctx, repository.CaregiverQuery{VerifiedOnly: true, Search: "NURS"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"Nursing Care"}, rows[0].ServiceNames())

		_, total, err = store.SearchCaregivers(ctx, repository.CaregiverQuery{VerifiedOnly: true, Search: "icu"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)

		_, total, err = store.SearchCaregivers(ctx, repository.CaregiverQuery{VerifiedOnly: true, Search: "bea"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("ServiceAndExperienceFilters", func(t *testing.T) {
		_, total, err := store.SearchCaregivers(ctx, repository.CaregiverQuery{
			VerifiedOnly:  true,
			Services:      []string{"Companionship"},
			MinExperience: ptr(4),
		})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("Featured", func(t *testing.T) {
		rows, _, err := store.SearchCaregivers(ctx, repository.CaregiverQuery{
			VerifiedOnly: true,
			MinRating:    ptr(4.5),
			Sort:         repository.SortFeatured,
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Eve", rows[0].User.FirstName)
	})
}

func TestBookingAggregates(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()

	client := repotest.User(t, conn, models.RoleClient, "Cal")
	service := repotest.Service(t, conn, "Companionship")
	caregiver := repotest.Caregiver(t, conn, repotest.CaregiverOpts{HourlyRate: 25})
	other := repotest.Caregiver(t, conn, repotest.CaregiverOpts{HourlyRate: 30})

	repotest.Booking(t, conn, client.ID, caregiver.UserID, service.ID, repotest.BookingOpts{Status: models.StatusCompleted, TotalAmount: 75})
	repotest.Booking(t, conn, client.ID, caregiver.UserID, service.ID, repotest.BookingOpts{Status: models.StatusPending, TotalAmount: 60})
	repotest.Booking(t, conn, client.ID, caregiver.UserID, service.ID, repotest.BookingOpts{Status: models.StatusCompleted, TotalAmount: 40})

	q := repository.BookingQuery{CaregiverID: caregiver.UserID}

	total, err := store.CountBookings(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	byStatus, err := store.CountBookingsByStatus(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 2, byStatus[models.StatusCompleted])
	assert.EqualValues(t, 1, byStatus[models.StatusPending])
	assert.EqualValues(t, 0, byStatus[models.StatusCancelled])

	revenue, err := store.SumBookingAmount(ctx, repository.BookingQuery{
		CaregiverID: caregiver.UserID,
		Statuses:    []models.BookingStatus{models.StatusCompleted},
	})
	require.NoError(t, err)
	assert.InDelta(t, 115.0, revenue, 0.001)

	empty, err := store.SumBookingAmount(ctx, repository.BookingQuery{CaregiverID: other.UserID})
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty)

	counts, err := store.BookingCountsByCaregiver(ctx, []string{caregiver.UserID, other.UserID})
	require.NoError(t, err)
	assert.Equal(t, repository.BookingCounts{Total: 3, Completed: 2}, counts[caregiver.UserID])
	assert.Equal(t, repository.BookingCounts{}, counts[other.UserID])
}

func TestBookingWindows(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()

	client := repotest.User(t, conn, models.RoleClient, "Cal")
	service := repotest.Service(t, conn, "Companionship")
	caregiver := repotest.Caregiver(t, conn, repotest.CaregiverOpts{})

	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	repotest.Booking(t, conn, client.ID, caregiver.UserID, service.ID, repotest.BookingOpts{Status: models.StatusConfirmed, ScheduledDate: day(5), StartTime: "14:00", CreatedAt: day(1)})
	repotest.Booking(t, conn, client.ID, caregiver.UserID, service.ID, repotest.BookingOpts{Status: models.StatusConfirmed, ScheduledDate: day(5), StartTime: "08:00", CreatedAt: day(2)})
	repotest.Booking(t, conn, client.ID, caregiver.UserID, service.ID, repotest.BookingOpts{Status: models.StatusInProgress, ScheduledDate: day(12), CreatedAt: day(3)})

	from, to := day(5), day(11)
	rows, err := store.FindBookings(ctx, repository.BookingQuery{
		CaregiverID:   caregiver.UserID,
		ScheduledFrom: &from,
		ScheduledTo:   &to,
		Order:         repository.OrderSchedule,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "08:00", rows[0].StartTime)
	assert.Equal(t, "14:00", rows[1].StartTime)
	assert.Equal(t, client.ID, rows[0].Client.ID)

	createdFrom, createdTo := day(2), day(3)
	count, err := store.CountBookings(ctx, repository.BookingQuery{CreatedFrom: &createdFrom, CreatedTo: &createdTo})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestErrorTranslation(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()

	_, err := store.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	user := repotest.User(t, conn, models.RoleClient, "Dup")
	err = store.CreateUser(ctx, &models.User{Email: user.Email, Role: models.RoleClient})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	assert.ErrorIs(t, store.DeleteBooking(ctx, "missing"), repository.ErrNotFound)
	assert.ErrorIs(t, store.UpdateCaregiverProfile(ctx, "missing", map[string]interface{}{"bio": "x"}), repository.ErrNotFound)
}

func TestWithTxRollsBack(t *testing.T) {
	store, _ := repotest.New(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.CreateUser(ctx, &models.User{Email: "tx@example.com", Role: models.RoleClient}))
		return repository.ErrDuplicate
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = store.GetUserByEmail(ctx, "tx@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAvailabilityAndNotifications(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()
	caregiver := repotest.Caregiver(t, conn, repotest.CaregiverOpts{})

	slots := []models.Availability{
		{DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
		{DayOfWeek: time.Monday, StartTime: "13:00", EndTime: "17:00", IsAvailable: true},
	}
	require.NoError(t, store.ReplaceAvailability(ctx, caregiver.ID, slots))
	require.NoError(t, store.ReplaceAvailability(ctx, caregiver.ID, slots[:1]))

	got, err := store.ListAvailability(ctx, caregiver.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "09:00", got[0].StartTime)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateNotification(ctx, &models.Notification{UserID: caregiver.UserID, Title: "hello"}))
	}
	list, total, err := store.ListNotifications(ctx, repository.NotificationQuery{UserID: caregiver.UserID, UnreadOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	require.NoError(t, store.MarkNotificationRead(ctx, caregiver.UserID, list[0].ID))
	assert.ErrorIs(t, store.MarkNotificationRead(ctx, "someone-else", list[1].ID), repository.ErrNotFound)

	_, total, err = store.ListNotifications(ctx, repository.NotificationQuery{UserID: caregiver.UserID, UnreadOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	require.NoError(t, store.MarkAllNotificationsRead(ctx, caregiver.UserID))
	_, total, err = store.ListNotifications(ctx, repository.NotificationQuery{UserID: caregiver.UserID, UnreadOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestAdminProfilePermissionsPersist(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()
	user := repotest.User(t, conn, models.RoleAdmin, "Ada")

	admin := &models.AdminProfile{UserID: user.ID, AdminRole: models.AdminRoleModerator, Permissions: models.DefaultPermissions(models.AdminRoleModerator)}
	require.NoError(t, store.CreateAdminProfile(ctx, admin))

	admin.Permissions = append(admin.Permissions, models.PermissionSystemSettings)
	require.NoError(t, store.UpdateAdminProfile(ctx, admin))

	got, err := store.GetAdminProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.PermissionCaregiverApproval, models.PermissionSystemSettings}, got.Permissions)
	assert.Equal(t, user.Email, got.User.Email)

	err = store.WithTx(ctx, func(tx repository.Store) error {
		admins, err := tx.LockAdminUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, admins, 1)
		return nil
	})
	require.NoError(t, err)
}

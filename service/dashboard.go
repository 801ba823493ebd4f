package service

import (
	"context"
	"errors"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/rs/zerolog"
)

type ClientDashboard struct {
	TotalBookings     int64   `json:"total_bookings"`
	TotalSpent        float64 `json:"total_spent"`
	UpcomingBookings  int64   `json:"upcoming_bookings"`
	CompletedBookings int64   `json:"completed_bookings"`
}

type CaregiverDashboard struct {
	TotalEarnings   float64 `json:"total_earnings"`
	MonthlyBookings int64   `json:"monthly_bookings"`
	AverageRating   float64 `json:"average_rating"`
	CompletedJobs   int64   `json:"completed_jobs"`
	// ResponseRate is not tracked yet and is always null.
	ResponseRate  *float64 `json:"response_rate"`
	ActiveClients int64    `json:"active_clients"`
}

type AdminDashboard struct {
	TotalUsers       int64   `json:"total_users"`
	TotalCaregivers  int64   `json:"total_caregivers"`
	TotalBookings    int64   `json:"total_bookings"`
	PendingApprovals int64   `json:"pending_approvals"`
	ActiveBookings   int64   `json:"active_bookings"`
	TotalRevenue     float64 `json:"total_revenue"`
}

// DashboardSummary holds exactly one role shaped summary, or none for unknown roles.
type DashboardSummary struct {
	Role      models.Role
	Client    *ClientDashboard
	Caregiver *CaregiverDashboard
	Admin     *AdminDashboard
}

// Body returns the populated summary, or an empty object.
func (d *DashboardSummary) Body() interface{} {
	switch {
	case d.Client != nil:
		return d.Client
	case d.Caregiver != nil:
		return d.Caregiver
	case d.Admin != nil:
		return d.Admin
	}
	return map[string]interface{}{}
}

// DashboardComposer assembles role specific summaries.
type DashboardComposer struct {
	store  repository.Store
	stats  *BookingStats
	now    Clock
	logger *zerolog.Logger
}

func NewDashboardComposer(store repository.Store, stats *BookingStats, now Clock, logger *zerolog.Logger) *DashboardComposer {
	return &DashboardComposer{store: store, stats: stats, now: now, logger: logger}
}

// Summary resolves the user and builds the summary for their role.
func (d *DashboardComposer) Summary(ctx context.Context, userID string) (*DashboardSummary, error) {
	user, err := d.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "get user", "user %s not found", userID)
	}

	summary := &DashboardSummary{Role: user.Role}
	switch user.Role {
	case models.RoleClient:
		summary.Client, err = d.client(ctx, user.ID)
	case models.RoleCaregiver:
		summary.Caregiver, err = d.caregiver(ctx, user.ID)
	case models.RoleAdmin:
		summary.Admin, err = d.admin(ctx)
	default:
		d.logger.Warn().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("dashboard requested for unknown role")
	}
	if err != nil {
		d.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to compose dashboard")
		return nil, err
	}
	return summary, nil
}

func (d *DashboardComposer) client(ctx context.Context, userID string) (*ClientDashboard, error) {
	completed, err := d.store.CountBookings(ctx, repository.BookingQuery{ClientID: userID, Statuses: completedOnly})
	if err != nil {
		return nil, apperr.Internal(err, "count completed bookings")
	}
	upcoming, err := d.store.CountBookings(ctx, repository.BookingQuery{
		ClientID: userID,
		Statuses: []models.BookingStatus{models.StatusPending, models.StatusConfirmed},
	})
	if err != nil {
		return nil, apperr.Internal(err, "count upcoming bookings")
	}
	spent, err := d.store.SumBookingAmount(ctx, repository.BookingQuery{ClientID: userID, Statuses: completedOnly})
	if err != nil {
		return nil, apperr.Internal(err, "sum client spend")
	}

	return &ClientDashboard{
		TotalBookings:     completed + upcoming,
		TotalSpent:        round2(spent),
		UpcomingBookings:  upcoming,
		CompletedBookings: completed,
	}, nil
}

func (d *DashboardComposer) caregiver(ctx context.Context, userID string) (*CaregiverDashboard, error) {
	now := d.now()
	monthStart := startOfMonth(now)

	out := &CaregiverDashboard{}
	profile, err := d.store.GetCaregiverProfileByUser(ctx, userID)
	switch {
	case err == nil:
		out.AverageRating = profile.Rating
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperr.Internal(err, "get caregiver profile")
	}

	stats, err := d.stats.Stats(ctx, StatsScope{CaregiverID: userID})
	if err != nil {
		return nil, err
	}
	out.TotalEarnings = stats.TotalRevenue
	out.CompletedJobs = stats.Completed

	out.MonthlyBookings, err = d.store.CountBookings(ctx, repository.BookingQuery{CaregiverID: userID, CreatedFrom: &monthStart})
	if err != nil {
		return nil, apperr.Internal(err, "count monthly bookings")
	}

	bookings, err := d.store.FindBookings(ctx, repository.BookingQuery{CaregiverID: userID})
	if err != nil {
		return nil, apperr.Internal(err, "list caregiver bookings")
	}
	out.ActiveClients = summarizeClients(bookings, now).ActiveClients
	return out, nil
}

func (d *DashboardComposer) admin(ctx context.Context) (*AdminDashboard, error) {
	out := &AdminDashboard{}
	var err error

	if out.TotalUsers, err = d.store.CountUsers(ctx, ""); err != nil {
		return nil, apperr.Internal(err, "count users")
	}
	if out.TotalCaregivers, err = d.store.CountUsers(ctx, models.RoleCaregiver); err != nil {
		return nil, apperr.Internal(err, "count caregivers")
	}
	unverified := false
	if out.PendingApprovals, err = d.store.CountCaregiverProfiles(ctx, &unverified); err != nil {
		return nil, apperr.Internal(err, "count pending approvals")
	}
	out.ActiveBookings, err = d.store.CountBookings(ctx, repository.BookingQuery{
		Statuses: []models.BookingStatus{models.StatusConfirmed, models.StatusInProgress},
	})
	if err != nil {
		return nil, apperr.Internal(err, "count active bookings")
	}

	stats, err := d.stats.Stats(ctx, StatsScope{})
	if err != nil {
		return nil, err
	}
	out.TotalBookings = stats.Total
	out.TotalRevenue = stats.TotalRevenue
	return out, nil
}

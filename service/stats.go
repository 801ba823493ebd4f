package service

import (
	"context"
	"time"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/rs/zerolog"
)

// Period is an earnings window keyword.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod maps a keyword onto a Period, defaulting to month.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodWeek, PeriodYear:
		return Period(s)
	}
	return PeriodMonth
}

// WindowStart returns the inclusive start of the period relative to now.
func (p Period) WindowStart(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	}
	return startOfMonth(now)
}

// StatsScope narrows booking statistics to one client or caregiver user.
// The zero value is global.
type StatsScope struct {
	ClientID    string
	CaregiverID string
}

type BookingStatistics struct {
	Total        int64   `json:"total"`
	Pending      int64   `json:"pending"`
	Confirmed    int64   `json:"confirmed"`
	InProgress   int64   `json:"in_progress"`
	Completed    int64   `json:"completed"`
	Cancelled    int64   `json:"cancelled"`
	TotalRevenue float64 `json:"total_revenue"`
}

// DailyEarning is the completed amount for one calendar day.
type DailyEarning struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type Earnings struct {
	Period            Period         `json:"period"`
	TotalEarnings     float64        `json:"total_earnings"`
	PeriodEarnings    float64        `json:"period_earnings"`
	CompletedBookings int64          `json:"completed_bookings"`
	AveragePerBooking float64        `json:"average_per_booking"`
	EarningsHistory   []DailyEarning `json:"earnings_history"`
}

// BookingStats computes counts and monetary aggregates over bookings.
type BookingStats struct {
	store  repository.Store
	now    Clock
	logger *zerolog.Logger
}

func NewBookingStats(store repository.Store, now Clock, logger *zerolog.Logger) *BookingStats {
	return &BookingStats{store: store, now: now, logger: logger}
}

var completedOnly = []models.BookingStatus{models.StatusCompleted}

// Stats returns per status counts and completed revenue within scope.
func (b *BookingStats) Stats(ctx context.Context, scope StatsScope) (*BookingStatistics, error) {
	for _, id := range []string{scope.ClientID, scope.CaregiverID} {
		if id == "" {
			continue
		}
		if _, err := b.store.GetUser(ctx, id); err != nil {
			return nil, storeErr(err, "get user", "user %s not found", id)
		}
	}

	q := repository.BookingQuery{ClientID: scope.ClientID, CaregiverID: scope.CaregiverID}
	counts, err := b.store.CountBookingsByStatus(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err, "count bookings by status")
	}

	q.Statuses = completedOnly
	revenue, err := b.store.SumBookingAmount(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err, "sum booking revenue")
	}

	stats := &BookingStatistics{
		Pending:      counts[models.StatusPending],
		Confirmed:    counts[models.StatusConfirmed],
		InProgress:   counts[models.StatusInProgress],
		Completed:    counts[models.StatusCompleted],
		Cancelled:    counts[models.StatusCancelled],
		TotalRevenue: round2(revenue),
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

// Earnings breaks down completed booking income for a caregiver profile over a period.
func (b *BookingStats) Earnings(ctx context.Context, caregiverID string, period Period) (*Earnings, error) {
	profile, err := b.store.GetCaregiverProfile(ctx, caregiverID)
	if err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver %s not found", caregiverID)
	}
	return b.earningsForUser(ctx, profile.UserID, period)
}

func (b *BookingStats) earningsForUser(ctx context.Context, caregiverUserID string, period Period) (*Earnings, error) {
	start := period.WindowStart(b.now())

	total, err := b.store.SumBookingAmount(ctx, repository.BookingQuery{
		CaregiverID: caregiverUserID,
		Statuses:    completedOnly,
	})
	if err != nil {
		return nil, apperr.Internal(err, "sum total earnings")
	}

	completed, err := b.store.FindBookings(ctx, repository.BookingQuery{
		CaregiverID: caregiverUserID,
		Statuses:    completedOnly,
		CreatedFrom: &start,
		Order:       repository.OrderOldest,
	})
	if err != nil {
		return nil, apperr.Internal(err, "list completed bookings")
	}

	out := &Earnings{
		Period:          period,
		TotalEarnings:   round2(total),
		EarningsHistory: []DailyEarning{},
	}

	// bookings arrive oldest first so days are appended in ascending order
	for _, booking := range completed {
		day := booking.CreatedAt.UTC().Format("2006-01-02")
		out.PeriodEarnings += booking.TotalAmount
		if n := len(out.EarningsHistory); n > 0 && out.EarningsHistory[n-1].Date == day {
			out.EarningsHistory[n-1].Amount += booking.TotalAmount
			continue
		}
		out.EarningsHistory = append(out.EarningsHistory, DailyEarning{Date: day, Amount: booking.TotalAmount})
	}
	for i := range out.EarningsHistory {
		out.EarningsHistory[i].Amount = round2(out.EarningsHistory[i].Amount)
	}

	out.CompletedBookings = int64(len(completed))
	if out.CompletedBookings > 0 {
		out.AveragePerBooking = round2(out.PeriodEarnings / float64(out.CompletedBookings))
	}
	out.PeriodEarnings = round2(out.PeriodEarnings)
	return out, nil
}

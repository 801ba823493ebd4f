package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/rs/zerolog"
)

const (
	defaultRating        = 5.0
	defaultScheduleDays  = 7
	defaultAvailableDays = 14
	activeClientWindow   = 30 * 24 * time.Hour
	recentItems          = 5
)

var scheduledStatuses = []models.BookingStatus{models.StatusConfirmed, models.StatusInProgress}

type CertificationInput struct {
	Name       string     `json:"name" validate:"required,max=200"`
	IssuedBy   string     `json:"issued_by" validate:"max=200"`
	IssuedDate time.Time  `json:"issued_date" validate:"required"`
	ExpiryDate *time.Time `json:"expiry_date"`
}

// ProfileInput creates a caregiver profile.
type ProfileInput struct {
	Bio            string               `json:"bio"`
	Experience     int                  `json:"experience" validate:"gte=0"`
	HourlyRate     float64              `json:"hourly_rate" validate:"gte=0"`
	Services       []string             `json:"services" validate:"dive,required"`
	Certifications []CertificationInput `json:"certifications" validate:"dive"`
}

// ProfilePatch updates a caregiver profile. Nil fields are left untouched;
// a non-nil empty slice clears the set.
type ProfilePatch struct {
	Bio            *string              `json:"bio"`
	Experience     *int                 `json:"experience" validate:"omitempty,gte=0"`
	HourlyRate     *float64             `json:"hourly_rate" validate:"omitempty,gte=0"`
	Services       []string             `json:"services" validate:"omitempty,dive,required"`
	Certifications []CertificationInput `json:"certifications" validate:"omitempty,dive"`
}

type ScheduleEntry struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	ScheduledDate string               `json:"scheduled_date"`
	StartTime     string               `json:"start_time"`
	EndTime       string               `json:"end_time"`
	Status        models.BookingStatus `json:"status"`
	Client        string               `json:"client"`
}

type Schedule struct {
	Start        string                `json:"start"`
	End          string                `json:"end"`
	Schedule     []ScheduleEntry       `json:"schedule"`
	Availability []models.Availability `json:"availability"`
}

type TimeSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type DaySlots struct {
	Date  string     `json:"date"`
	Slots []TimeSlot `json:"slots"`
}

type BookedSlot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type PublicAvailability struct {
	Availability []DaySlots   `json:"availability"`
	BookedSlots  []BookedSlot `json:"booked_slots"`
}

type ClientSummary struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	TotalBookings     int       `json:"total_bookings"`
	CompletedBookings int       `json:"completed_bookings"`
	LastBooking       time.Time `json:"last_booking"`
	Active            bool      `json:"active"`
}

type ClientList struct {
	Clients       []ClientSummary `json:"clients"`
	TotalClients  int             `json:"total_clients"`
	ActiveClients int64           `json:"active_clients"`
}

type RecentBooking struct {
	ID         string               `json:"id"`
	ClientName string               `json:"client_name"`
	Date       string               `json:"date"`
	Status     models.BookingStatus `json:"status"`
	Amount     float64              `json:"amount"`
}

type CaregiverStats struct {
	TotalBookings     int64    `json:"total_bookings"`
	CompletedBookings int64    `json:"completed_bookings"`
	PendingBookings   int64    `json:"pending_bookings"`
	TotalEarnings     float64  `json:"total_earnings"`
	MonthlyEarnings   float64  `json:"monthly_earnings"`
	AverageRating     float64  `json:"average_rating"`
	ProfileCompletion int      `json:"profile_completion"`
	ResponseRate      *float64 `json:"response_rate"`
}

// CaregiverDashboardData is the caregiver's own landing page.
type CaregiverDashboardData struct {
	Profile        CaregiverView   `json:"profile"`
	Stats          CaregiverStats  `json:"stats"`
	RecentBookings []RecentBooking `json:"recent_bookings"`
	RecentReviews  []ReviewView    `json:"recent_reviews"`
}

// summarizeClients groups a caregiver's bookings by client, most recent first.
func summarizeClients(bookings []models.Booking, now time.Time) ClientList {
	byID := make(map[string]*ClientSummary)
	for _, b := range bookings {
		c, ok := byID[b.ClientID]
		if !ok {
			c = &ClientSummary{
				ID:    b.ClientID,
				Name:  b.Client.FullName(),
				Email: b.Client.Email,
				Phone: b.Client.Phone,
			}
			byID[b.ClientID] = c
		}
		c.TotalBookings++
		if b.Status == models.StatusCompleted {
			c.CompletedBookings++
		}
		if b.CreatedAt.After(c.LastBooking) {
			c.LastBooking = b.CreatedAt
		}
	}

	out := ClientList{Clients: make([]ClientSummary, 0, len(byID))}
	cutoff := now.Add(-activeClientWindow)
	for _, c := range byID {
		c.Active = c.LastBooking.After(cutoff)
		if c.Active {
			out.ActiveClients++
		}
		out.Clients = append(out.Clients, *c)
	}
	sort.Slice(out.Clients, func(i, j int) bool {
		if out.Clients[i].LastBooking.Equal(out.Clients[j].LastBooking) {
			return out.Clients[i].ID < out.Clients[j].ID
		}
		return out.Clients[i].LastBooking.After(out.Clients[j].LastBooking)
	})
	out.TotalClients = len(out.Clients)
	return out
}

// CaregiverManager owns caregiver profile writes and caregiver facing read models.
type CaregiverManager struct {
	store    repository.Store
	profiles *ProfileAggregator
	stats    *BookingStats
	now      Clock
	logger   *zerolog.Logger
}

func NewCaregiverManager(store repository.Store, profiles *ProfileAggregator, stats *BookingStats, now Clock, logger *zerolog.Logger) *CaregiverManager {
	return &CaregiverManager{store: store, profiles: profiles, stats: stats, now: now, logger: logger}
}

// CreateProfile onboards a CAREGIVER user with services and certifications in one transaction.
func (m *CaregiverManager) CreateProfile(ctx context.Context, userID string, in ProfileInput) (*CaregiverView, error) {
	if in.Experience < 0 || in.HourlyRate < 0 {
		return nil, apperr.BadRequest("experience and hourly rate must not be negative")
	}

	var profileID string
	err := m.store.WithTx(ctx, func(tx repository.Store) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return storeErr(err, "get user", "user %s not found", userID)
		}
		if user.Role != models.RoleCaregiver {
			return apperr.BadRequest("user %s is not a caregiver", userID)
		}
		if _, err := tx.GetCaregiverProfileByUser(ctx, userID); err == nil {
			return apperr.Conflict("caregiver profile already exists for user %s", userID)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return apperr.Internal(err, "get caregiver profile")
		}

		profile := &models.CaregiverProfile{
			UserID:     userID,
			Bio:        strings.TrimSpace(in.Bio),
			Experience: in.Experience,
			HourlyRate: in.HourlyRate,
			Rating:     defaultRating,
		}
		if err := tx.CreateCaregiverProfile(ctx, profile); err != nil {
			return storeErr(err, "create caregiver profile", "user %s not found", userID)
		}
		profileID = profile.ID

		if err := m.mergeServices(ctx, tx, profile.ID, in.Services); err != nil {
			return err
		}
		return m.mergeCertifications(ctx, tx, profile.ID, in.Certifications)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info().Str("user_id", userID).Str("caregiver_id", profileID).Msg("caregiver profile created")
	return m.profiles.Get(ctx, profileID)
}

// UpdateProfile patches scalar fields and diff-merges services and certifications atomically.
func (m *CaregiverManager) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*CaregiverView, error) {
	if (patch.Experience != nil && *patch.Experience < 0) || (patch.HourlyRate != nil && *patch.HourlyRate < 0) {
		return nil, apperr.BadRequest("experience and hourly rate must not be negative")
	}

	var profileID string
	err := m.store.WithTx(ctx, func(tx repository.Store) error {
		profile, err := tx.GetCaregiverProfileByUser(ctx, userID)
		if err != nil {
			return storeErr(err, "get caregiver profile", "caregiver profile for user %s not found", userID)
		}
		profileID = profile.ID
		if _, err := tx.LockCaregiverProfile(ctx, profile.ID); err != nil {
			return storeErr(err, "lock caregiver profile", "caregiver %s not found", profile.ID)
		}

		fields := map[string]interface{}{}
		if patch.Bio != nil {
			fields["bio"] = strings.TrimSpace(*patch.Bio)
		}
		if patch.Experience != nil {
			fields["experience"] = *patch.Experience
		}
		if patch.HourlyRate != nil {
			fields["hourly_rate"] = *patch.HourlyRate
		}
		if err := tx.UpdateCaregiverProfile(ctx, profile.ID, fields); err != nil {
			return storeErr(err, "update caregiver profile", "caregiver %s not found", profile.ID)
		}

		if patch.Services != nil {
			if err := m.mergeServices(ctx, tx, profile.ID, patch.Services); err != nil {
				return err
			}
		}
		if patch.Certifications != nil {
			if err := m.mergeCertifications(ctx, tx, profile.ID, patch.Certifications); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.profiles.Get(ctx, profileID)
}

// mergeServices makes the profile's service links equal to names, finding or
// creating catalog services by name. Unchanged links are left in place.
func (m *CaregiverManager) mergeServices(ctx context.Context, tx repository.Store, profileID string, names []string) error {
	want := make(map[string]bool)
	var order []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || want[name] {
			continue
		}
		want[name] = true
		order = append(order, name)
	}

	wantIDs := make(map[string]bool, len(order))
	for _, name := range order {
		service, err := tx.GetServiceByName(ctx, name)
		if errors.Is(err, repository.ErrNotFound) {
			service = &models.Service{Name: name, Category: models.CategoryPersonalCare, IsActive: true}
			err = tx.CreateService(ctx, service)
		}
		if err != nil {
			return storeErr(err, "resolve service", "service %s not found", name)
		}
		wantIDs[service.ID] = true
	}

	links, err := tx.ListCaregiverServices(ctx, profileID)
	if err != nil {
		return apperr.Internal(err, "list caregiver services")
	}
	have := make(map[string]bool, len(links))
	var stale []string
	for _, link := range links {
		have[link.ServiceID] = true
		if !wantIDs[link.ServiceID] {
			stale = append(stale, link.ServiceID)
		}
	}
	if err := tx.RemoveCaregiverServices(ctx, profileID, stale); err != nil {
		return apperr.Internal(err, "remove caregiver services")
	}

	for serviceID := range wantIDs {
		if have[serviceID] {
			continue
		}
		if err := tx.AddCaregiverService(ctx, &models.CaregiverService{CaregiverID: profileID, ServiceID: serviceID}); err != nil {
			return storeErr(err, "link caregiver service", "service %s not found", serviceID)
		}
	}
	return nil
}

// mergeCertifications matches certifications by name and issuer, updating
// matches in place, creating new ones and deleting the rest.
func (m *CaregiverManager) mergeCertifications(ctx context.Context, tx repository.Store, profileID string, in []CertificationInput) error {
	existing, err := tx.ListCertifications(ctx, profileID)
	if err != nil {
		return apperr.Internal(err, "list certifications")
	}
	byKey := make(map[string]models.Certification, len(existing))
	for _, c := range existing {
		byKey[c.Key()] = c
	}

	kept := make(map[string]bool, len(in))
	for _, item := range in {
		cert := models.Certification{
			CaregiverID: profileID,
			Name:        strings.TrimSpace(item.Name),
			IssuedBy:    strings.TrimSpace(item.IssuedBy),
			IssuedDate:  item.IssuedDate,
			ExpiryDate:  item.ExpiryDate,
		}
		if cert.Name == "" {
			return apperr.BadRequest("certification name is required")
		}
		if kept[cert.Key()] {
			continue
		}
		kept[cert.Key()] = true

		if current, ok := byKey[cert.Key()]; ok {
			current.IssuedDate = cert.IssuedDate
			current.ExpiryDate = cert.ExpiryDate
			if err := tx.UpdateCertification(ctx, &current); err != nil {
				return apperr.Internal(err, "update certification")
			}
			continue
		}
		if err := tx.CreateCertification(ctx, &cert); err != nil {
			return apperr.Internal(err, "create certification")
		}
	}

	var stale []string
	for key, c := range byKey {
		if !kept[key] {
			stale = append(stale, c.ID)
		}
	}
	if err := tx.DeleteCertifications(ctx, stale); err != nil {
		return apperr.Internal(err, "delete certifications")
	}
	return nil
}

// DeleteProfile removes the caller's caregiver profile and everything it owns.
func (m *CaregiverManager) DeleteProfile(ctx context.Context, userID string) error {
	profile, err := m.store.GetCaregiverProfileByUser(ctx, userID)
	if err != nil {
		return storeErr(err, "get caregiver profile", "caregiver profile for user %s not found", userID)
	}
	if err := m.store.DeleteCaregiverProfile(ctx, profile.ID); err != nil {
		return storeErr(err, "delete caregiver profile", "caregiver %s not found", profile.ID)
	}
	m.logger.Info().Str("user_id", userID).Str("caregiver_id", profile.ID).Msg("caregiver profile deleted")
	return nil
}

// SetAvailability replaces the weekly availability of the caller's profile.
func (m *CaregiverManager) SetAvailability(ctx context.Context, userID string, slots []models.Availability) ([]models.Availability, error) {
	for _, slot := range slots {
		if slot.DayOfWeek < time.Sunday || slot.DayOfWeek > time.Saturday {
			return nil, apperr.BadRequest("day_of_week must be between 0 and 6")
		}
		if !validClock(slot.StartTime) || !validClock(slot.EndTime) || slot.StartTime >= slot.EndTime {
			return nil, apperr.BadRequest("slot %s-%s must be HH:MM with start before end", slot.StartTime, slot.EndTime)
		}
	}

	profile, err := m.store.GetCaregiverProfileByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "get caregiver profile", "caregiver profile for user %s not found", userID)
	}
	if err := m.store.ReplaceAvailability(ctx, profile.ID, slots); err != nil {
		return nil, apperr.Internal(err, "replace availability")
	}
	return m.store.ListAvailability(ctx, profile.ID)
}

// GetAvailability returns the weekly availability of a caregiver profile.
func (m *CaregiverManager) GetAvailability(ctx context.Context, caregiverID string) ([]models.Availability, error) {
	if _, err := m.store.GetCaregiverProfile(ctx, caregiverID); err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver %s not found", caregiverID)
	}
	slots, err := m.store.ListAvailability(ctx, caregiverID)
	if err != nil {
		return nil, apperr.Internal(err, "list availability")
	}
	return slots, nil
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil && len(s) == 5
}

// GetSchedule lists confirmed and in-progress bookings between start and end,
// defaulting to the next seven days.
func (m *CaregiverManager) GetSchedule(ctx context.Context, caregiverID string, start, end *time.Time) (*Schedule, error) {
	profile, err := m.store.GetCaregiverProfile(ctx, caregiverID)
	if err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver %s not found", caregiverID)
	}

	from := startOfDay(m.now())
	if start != nil {
		from = *start
	}
	to := from.AddDate(0, 0, defaultScheduleDays)
	if end != nil {
		to = *end
	}
	if to.Before(from) {
		return nil, apperr.BadRequest("end date must not be before start date")
	}

	bookings, err := m.store.FindBookings(ctx, repository.BookingQuery{
		CaregiverID:   profile.UserID,
		Statuses:      scheduledStatuses,
		ScheduledFrom: &from,
		ScheduledTo:   &to,
		Order:         repository.OrderSchedule,
	})
	if err != nil {
		return nil, apperr.Internal(err, "list scheduled bookings")
	}
	slots, err := m.store.ListAvailability(ctx, caregiverID)
	if err != nil {
		return nil, apperr.Internal(err, "list availability")
	}

	out := &Schedule{
		Start:        from.Format("2006-01-02"),
		End:          to.Format("2006-01-02"),
		Schedule:     make([]ScheduleEntry, 0, len(bookings)),
		Availability: slots,
	}
	for _, b := range bookings {
		name := b.Client.FullName()
		out.Schedule = append(out.Schedule, ScheduleEntry{
			ID:            b.ID,
			Title:         "Care for " + name,
			ScheduledDate: b.ScheduledDate.Format("2006-01-02"),
			StartTime:     b.StartTime,
			EndTime:       b.EndTime,
			Status:        b.Status,
			Client:        name,
		})
	}
	return out, nil
}

// GetPublicAvailability expands weekly availability over a window of days
// and lists the slots already booked in it.
func (m *CaregiverManager) GetPublicAvailability(ctx context.Context, caregiverID string, start *time.Time, days int) (*PublicAvailability, error) {
	profile, err := m.store.GetCaregiverProfile(ctx, caregiverID)
	if err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver %s not found", caregiverID)
	}
	if days < 1 {
		days = defaultAvailableDays
	}
	from := startOfDay(m.now())
	if start != nil {
		from = startOfDay(*start)
	}
	last := from.AddDate(0, 0, days-1)

	weekly, err := m.store.ListAvailability(ctx, caregiverID)
	if err != nil {
		return nil, apperr.Internal(err, "list availability")
	}
	booked, err := m.store.FindBookings(ctx, repository.BookingQuery{
		CaregiverID:   profile.UserID,
		Statuses:      scheduledStatuses,
		ScheduledFrom: &from,
		ScheduledTo:   &last,
		Order:         repository.OrderSchedule,
	})
	if err != nil {
		return nil, apperr.Internal(err, "list booked slots")
	}

	out := &PublicAvailability{Availability: []DaySlots{}, BookedSlots: make([]BookedSlot, 0, len(booked))}
	for day := from; !day.After(last); day = day.AddDate(0, 0, 1) {
		var slots []TimeSlot
		for _, w := range weekly {
			if w.IsAvailable && w.DayOfWeek == day.Weekday() {
				slots = append(slots, TimeSlot{StartTime: w.StartTime, EndTime: w.EndTime})
			}
		}
		if len(slots) > 0 {
			out.Availability = append(out.Availability, DaySlots{Date: day.Format("2006-01-02"), Slots: slots})
		}
	}
	for _, b := range booked {
		out.BookedSlots = append(out.BookedSlots, BookedSlot{
			Date:      b.ScheduledDate.Format("2006-01-02"),
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
		})
	}
	return out, nil
}

// GetBookings pages through a caregiver's bookings, optionally by status.
func (m *CaregiverManager) GetBookings(ctx context.Context, caregiverID string, status models.BookingStatus, page, limit int) (*BookingPage, error) {
	profile, err := m.store.GetCaregiverProfile(ctx, caregiverID)
	if err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver %s not found", caregiverID)
	}
	return listBookings(ctx, m.store, BookingFilter{CaregiverID: profile.UserID, Status: status, Page: page, Limit: limit})
}

// GetClients summarizes the distinct clients a caregiver has served.
func (m *CaregiverManager) GetClients(ctx context.Context, caregiverID string) (*ClientList, error) {
	profile, err := m.store.GetCaregiverProfile(ctx, caregiverID)
	if err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver %s not found", caregiverID)
	}
	bookings, err := m.store.FindBookings(ctx, repository.BookingQuery{CaregiverID: profile.UserID})
	if err != nil {
		return nil, apperr.Internal(err, "list caregiver bookings")
	}
	list := summarizeClients(bookings, m.now())
	return &list, nil
}

// GetDashboardData builds the caregiver's own dashboard.
func (m *CaregiverManager) GetDashboardData(ctx context.Context, caregiverID string) (*CaregiverDashboardData, error) {
	profile, err := m.store.GetCaregiverProfile(ctx, caregiverID)
	if err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver %s not found", caregiverID)
	}

	stats, err := m.stats.Stats(ctx, StatsScope{CaregiverID: profile.UserID})
	if err != nil {
		return nil, err
	}
	monthStart := startOfMonth(m.now())
	monthly, err := m.store.SumBookingAmount(ctx, repository.BookingQuery{
		CaregiverID: profile.UserID,
		Statuses:    completedOnly,
		CreatedFrom: &monthStart,
	})
	if err != nil {
		return nil, apperr.Internal(err, "sum monthly earnings")
	}

	recent, err := m.store.FindBookings(ctx, repository.BookingQuery{CaregiverID: profile.UserID, Limit: recentItems})
	if err != nil {
		return nil, apperr.Internal(err, "list recent bookings")
	}
	reviews, _, err := m.store.ListReviews(ctx, caregiverID, 0, recentItems)
	if err != nil {
		return nil, apperr.Internal(err, "list recent reviews")
	}

	view := m.profiles.Compose(profile)
	out := &CaregiverDashboardData{
		Profile: view,
		Stats: CaregiverStats{
			TotalBookings:     stats.Total,
			CompletedBookings: stats.Completed,
			PendingBookings:   stats.Pending,
			TotalEarnings:     stats.TotalRevenue,
			MonthlyEarnings:   round2(monthly),
			AverageRating:     profile.Rating,
			ProfileCompletion: view.ProfileCompletion,
		},
		RecentBookings: make([]RecentBooking, 0, len(recent)),
		RecentReviews:  make([]ReviewView, 0, len(reviews)),
	}
	for _, b := range recent {
		out.RecentBookings = append(out.RecentBookings, RecentBooking{
			ID:         b.ID,
			ClientName: b.Client.FullName(),
			Date:       b.ScheduledDate.Format("2006-01-02"),
			Status:     b.Status,
			Amount:     b.TotalAmount,
		})
	}
	for _, r := range reviews {
		out.RecentReviews = append(out.RecentReviews, newReviewView(r))
	}
	return out, nil
}

// Earnings resolves the caller's profile and returns its earnings breakdown.
func (m *CaregiverManager) Earnings(ctx context.Context, caregiverID string, period Period) (*Earnings, error) {
	return m.stats.Earnings(ctx, caregiverID, period)
}

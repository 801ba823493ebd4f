package service

import (
	"context"
	"strings"
	"time"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/events"
	"github.com/meinhoongagan/carehub/metrics"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/rs/zerolog"
)

type BookingInput struct {
	CaregiverID      string    `json:"caregiver_id" validate:"required"`
	ServiceID        string    `json:"service_id" validate:"required"`
	ScheduledDate    time.Time `json:"scheduled_date" validate:"required"`
	StartTime        string    `json:"start_time"`
	EndTime          string    `json:"end_time"`
	Duration         int       `json:"duration" validate:"gte=0"`
	HourlyRate       float64   `json:"hourly_rate" validate:"gte=0"`
	TotalAmount      float64   `json:"total_amount" validate:"gte=0"`
	Location         string    `json:"location"`
	Notes            string    `json:"notes"`
	EmergencyContact string    `json:"emergency_contact"`
}

// BookingPatch edits booking details. A non-nil Status is applied through the
// lifecycle rules after the detail fields.
type BookingPatch struct {
	ScheduledDate    *time.Time            `json:"scheduled_date"`
	StartTime        *string               `json:"start_time"`
	EndTime          *string               `json:"end_time"`
	Duration         *int                  `json:"duration" validate:"omitempty,gt=0"`
	HourlyRate       *float64              `json:"hourly_rate" validate:"omitempty,gte=0"`
	TotalAmount      *float64              `json:"total_amount" validate:"omitempty,gte=0"`
	Location         *string               `json:"location"`
	Notes            *string               `json:"notes"`
	EmergencyContact *string               `json:"emergency_contact"`
	Status           *models.BookingStatus `json:"status"`
}

// BookingFilter selects a page of bookings. Zero fields impose no constraint.
type BookingFilter struct {
	ClientID    string
	CaregiverID string
	Status      models.BookingStatus
	Page        int
	Limit       int
}

type BookingPage struct {
	Items []models.Booking `json:"items"`
	Pagination
}

func listBookings(ctx context.Context, store repository.Store, f BookingFilter) (*BookingPage, error) {
	page, limit, offset := normalizePage(f.Page, f.Limit, defaultPageLimit)
	q := repository.BookingQuery{ClientID: f.ClientID, CaregiverID: f.CaregiverID}
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, apperr.BadRequest("unknown booking status %q", f.Status)
		}
		q.Statuses = []models.BookingStatus{f.Status}
	}

	total, err := store.CountBookings(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err, "count bookings")
	}
	q.Offset, q.Limit = offset, limit
	items, err := store.FindBookings(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err, "list bookings")
	}
	return &BookingPage{Items: items, Pagination: newPagination(total, page, limit)}, nil
}

// BookingManager runs the booking lifecycle.
type BookingManager struct {
	store  repository.Store
	stats  *BookingStats
	events Publisher
	now    Clock
	logger *zerolog.Logger
}

func NewBookingManager(store repository.Store, stats *BookingStats, events Publisher, now Clock, logger *zerolog.Logger) *BookingManager {
	return &BookingManager{store: store, stats: stats, events: events, now: now, logger: logger}
}

// Create books a caregiver for the calling client. New bookings start PENDING.
func (m *BookingManager) Create(ctx context.Context, clientID string, in BookingInput) (*models.Booking, error) {
	if in.Duration < 0 || in.HourlyRate < 0 || in.TotalAmount < 0 {
		return nil, apperr.BadRequest("duration and amounts must not be negative")
	}
	if in.Duration == 0 {
		in.Duration = clockMinutes(in.StartTime, in.EndTime)
	}
	if in.Duration <= 0 {
		return nil, apperr.BadRequest("duration must be positive")
	}
	if in.TotalAmount == 0 && in.HourlyRate > 0 {
		in.TotalAmount = round2(in.HourlyRate * float64(in.Duration) / 60)
	}

	client, err := m.store.GetUser(ctx, clientID)
	if err != nil {
		return nil, storeErr(err, "get client", "client %s not found", clientID)
	}
	caregiver, err := m.store.GetUser(ctx, in.CaregiverID)
	if err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver %s not found", in.CaregiverID)
	}
	if caregiver.Role != models.RoleCaregiver {
		return nil, apperr.BadRequest("user %s is not a caregiver", in.CaregiverID)
	}
	if _, err := m.store.GetService(ctx, in.ServiceID); err != nil {
		return nil, storeErr(err, "get service", "service %s not found", in.ServiceID)
	}

	booking := &models.Booking{
		ClientID:         client.ID,
		CaregiverID:      caregiver.ID,
		ServiceID:        in.ServiceID,
		ScheduledDate:    startOfDay(in.ScheduledDate.UTC()),
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		Duration:         in.Duration,
		HourlyRate:       in.HourlyRate,
		TotalAmount:      round2(in.TotalAmount),
		Location:         strings.TrimSpace(in.Location),
		Notes:            in.Notes,
		EmergencyContact: in.EmergencyContact,
		Status:           models.StatusPending,
	}
	if err := m.store.CreateBooking(ctx, booking); err != nil {
		return nil, storeErr(err, "create booking", "booking references missing records")
	}

	created, err := m.store.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, storeErr(err, "reload booking", "booking %s not found", booking.ID)
	}
	m.logger.Info().Str("booking_id", created.ID).Str("client_id", client.ID).Str("caregiver_id", caregiver.ID).Msg("booking created")
	m.publish(ctx, events.EventBookingCreated, created, "", clientID)
	return created, nil
}

// clockMinutes returns the minutes between two HH:MM times, or 0 when either is unusable.
func clockMinutes(start, end string) int {
	from, err := time.Parse("15:04", start)
	if err != nil {
		return 0
	}
	to, err := time.Parse("15:04", end)
	if err != nil {
		return 0
	}
	return int(to.Sub(from).Minutes())
}

// Get returns a booking visible to the actor.
func (m *BookingManager) Get(ctx context.Context, actor Actor, id string) (*models.Booking, error) {
	booking, err := m.store.GetBooking(ctx, id)
	if err != nil {
		return nil, storeErr(err, "get booking", "booking %s not found", id)
	}
	if !canSee(actor, booking) {
		return nil, apperr.Forbidden("booking %s does not belong to you", id)
	}
	return booking, nil
}

func canSee(actor Actor, b *models.Booking) bool {
	return actor.IsAdmin() || actor.UserID == b.ClientID || actor.UserID == b.CaregiverID
}

// List pages bookings newest first. Non-admin actors only see their own.
func (m *BookingManager) List(ctx context.Context, actor Actor, f BookingFilter) (*BookingPage, error) {
	switch actor.Role {
	case models.RoleClient:
		f.ClientID = actor.UserID
	case models.RoleCaregiver:
		f.CaregiverID = actor.UserID
	}
	return listBookings(ctx, m.store, f)
}

// Update edits a PENDING or CONFIRMED booking and applies an optional status change.
func (m *BookingManager) Update(ctx context.Context, actor Actor, id string, patch BookingPatch) (*models.Booking, error) {
	var previous models.BookingStatus
	err := m.store.WithTx(ctx, func(tx repository.Store) error {
		booking, err := tx.LockBooking(ctx, id)
		if err != nil {
			return storeErr(err, "lock booking", "booking %s not found", id)
		}
		if !canSee(actor, booking) {
			return apperr.Forbidden("booking %s does not belong to you", id)
		}
		previous = booking.Status

		if patch.hasDetails() {
			if booking.Status != models.StatusPending && booking.Status != models.StatusConfirmed {
				return apperr.BadRequest("booking %s can no longer be edited in status %s", id, booking.Status)
			}
			patch.applyTo(booking)
		}
		if patch.Status != nil && *patch.Status != booking.Status {
			if err := m.transition(actor, booking, *patch.Status); err != nil {
				return err
			}
		}
		return storeErr(tx.UpdateBooking(ctx, booking), "update booking", "booking %s not found", id)
	})
	if err != nil {
		return nil, err
	}

	updated, err := m.store.GetBooking(ctx, id)
	if err != nil {
		return nil, storeErr(err, "reload booking", "booking %s not found", id)
	}
	if updated.Status != previous {
		m.transitioned(ctx, updated, previous, actor.UserID)
	}
	return updated, nil
}

func (p BookingPatch) hasDetails() bool {
	return p.ScheduledDate != nil || p.StartTime != nil || p.EndTime != nil || p.Duration != nil ||
		p.HourlyRate != nil || p.TotalAmount != nil || p.Location != nil || p.Notes != nil || p.EmergencyContact != nil
}

func (p BookingPatch) applyTo(b *models.Booking) {
	if p.ScheduledDate != nil {
		b.ScheduledDate = startOfDay(p.ScheduledDate.UTC())
	}
	if p.StartTime != nil {
		b.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		b.EndTime = *p.EndTime
	}
	if p.Duration != nil {
		b.Duration = *p.Duration
	}
	if p.HourlyRate != nil {
		b.HourlyRate = *p.HourlyRate
	}
	if p.TotalAmount != nil {
		b.TotalAmount = round2(*p.TotalAmount)
	}
	if p.Location != nil {
		b.Location = strings.TrimSpace(*p.Location)
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	if p.EmergencyContact != nil {
		b.EmergencyContact = *p.EmergencyContact
	}
}

// UpdateStatus moves a booking through its lifecycle.
func (m *BookingManager) UpdateStatus(ctx context.Context, actor Actor, id string, next models.BookingStatus) (*models.Booking, error) {
	return m.Update(ctx, actor, id, BookingPatch{Status: &next})
}

// transition enforces the lifecycle and the actor's right to request next.
// Clients may only cancel.
func (m *BookingManager) transition(actor Actor, b *models.Booking, next models.BookingStatus) error {
	if actor.Role == models.RoleClient && next != models.StatusCancelled {
		return apperr.Forbidden("clients may only cancel bookings")
	}
	if err := b.Transition(next, m.now()); err != nil {
		return apperr.BadRequest("%s", err.Error())
	}
	return nil
}

func (m *BookingManager) transitioned(ctx context.Context, b *models.Booking, previous models.BookingStatus, actorID string) {
	metrics.IncBookingTransition(string(previous), string(b.Status))
	m.logger.Info().Str("booking_id", b.ID).Str("from", string(previous)).Str("to", string(b.Status)).Msg("booking status changed")
	m.publish(ctx, events.EventBookingStatus, b, previous, actorID)
}

func (m *BookingManager) publish(ctx context.Context, eventType string, b *models.Booking, previous models.BookingStatus, actorID string) {
	if m.events == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID:       b.ID,
		ClientID:        b.ClientID,
		ClientName:      b.Client.FullName(),
		ClientEmail:     b.Client.Email,
		CaregiverID:     b.CaregiverID,
		CaregiverName:   b.Caregiver.FullName(),
		ServiceName:     b.Service.Name,
		PreviousStatus:  string(previous),
		Status:          string(b.Status),
		ScheduledDate:   b.ScheduledDate,
		StartTime:       b.StartTime,
		ChangedByUserID: actorID,
	}
	if err := m.events.PublishJSON(ctx, eventType, payload); err != nil {
		m.logger.Error().Err(err).Str("booking_id", b.ID).Str("event", eventType).Msg("failed to publish booking event")
	}
}

// Delete removes a booking. Clients may delete their own bookings until they are confirmed.
func (m *BookingManager) Delete(ctx context.Context, actor Actor, id string) error {
	booking, err := m.store.GetBooking(ctx, id)
	if err != nil {
		return storeErr(err, "get booking", "booking %s not found", id)
	}
	if !actor.IsAdmin() {
		if actor.UserID != booking.ClientID {
			return apperr.Forbidden("booking %s does not belong to you", id)
		}
		if booking.Status != models.StatusPending && booking.Status != models.StatusCancelled {
			return apperr.BadRequest("booking %s cannot be deleted in status %s", id, booking.Status)
		}
	}
	if err := m.store.DeleteBooking(ctx, id); err != nil {
		return storeErr(err, "delete booking", "booking %s not found", id)
	}
	m.logger.Info().Str("booking_id", id).Str("user_id", actor.UserID).Msg("booking deleted")
	return nil
}

// Stats scopes booking statistics to the actor unless they are an admin.
func (m *BookingManager) Stats(ctx context.Context, actor Actor, scope StatsScope) (*BookingStatistics, error) {
	switch actor.Role {
	case models.RoleClient:
		scope = StatsScope{ClientID: actor.UserID}
	case models.RoleCaregiver:
		scope = StatsScope{CaregiverID: actor.UserID}
	}
	return m.stats.Stats(ctx, scope)
}

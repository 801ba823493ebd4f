package service

import (
	"context"
	"fmt"
	"time"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/events"
	"github.com/meinhoongagan/carehub/metrics"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/rs/zerolog"
)

// Mailer delivers plain e-mail.
type Mailer interface {
	Send(to, subject, body string) error
}

type NotificationPage struct {
	Items []models.Notification `json:"items"`
	Pagination
}

// Notifier stores in-app notifications and sends booking reminders.
type Notifier struct {
	store  repository.Store
	mailer Mailer
	now    Clock
	logger *zerolog.Logger
}

// NewNotifier builds a Notifier. A nil mailer disables reminder e-mails.
func NewNotifier(store repository.Store, mailer Mailer, now Clock, logger *zerolog.Logger) *Notifier {
	return &Notifier{store: store, mailer: mailer, now: now, logger: logger}
}

// Subscribe wires the notifier to domain events on bus.
func (n *Notifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.onBookingCreated)
	bus.Subscribe(events.EventBookingStatus, n.onBookingStatus)
	bus.Subscribe(events.EventReviewSubmitted, n.onReview)
	bus.Subscribe(events.EventCaregiverDecided, n.onCaregiverDecided)
}

func (n *Notifier) onBookingCreated(ctx context.Context, e *events.Event) error {
	var p events.BookingEventPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	msg := fmt.Sprintf("%s requested %s on %s", p.ClientName, p.ServiceName, p.ScheduledDate.Format("2006-01-02"))
	return n.notify(ctx, p.CaregiverID, models.NotificationBookingCreated, "New booking request", msg, p.BookingID)
}

// onBookingStatus notifies every participant except the one who made the change.
func (n *Notifier) onBookingStatus(ctx context.Context, e *events.Event) error {
	var p events.BookingEventPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	msg := fmt.Sprintf("Booking for %s on %s is now %s", p.ServiceName, p.ScheduledDate.Format("2006-01-02"), p.Status)
	for _, userID := range []string{p.ClientID, p.CaregiverID} {
		if userID == p.ChangedByUserID {
			continue
		}
		if err := n.notify(ctx, userID, models.NotificationBookingStatus, "Booking updated", msg, p.BookingID); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) onReview(ctx context.Context, e *events.Event) error {
	var p events.ReviewEventPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	msg := fmt.Sprintf("%s rated you %.1f", p.ClientName, p.Rating)
	return n.notify(ctx, p.CaregiverUserID, models.NotificationReview, "New review", msg, p.BookingID)
}

func (n *Notifier) onCaregiverDecided(ctx context.Context, e *events.Event) error {
	var p events.CaregiverDecisionPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	title, msg := "Profile approved", "Your caregiver profile is now visible to clients."
	if !p.Approved {
		title, msg = "Profile not approved", "Your caregiver profile was not approved."
	}
	return n.notify(ctx, p.UserID, models.NotificationBookingStatus, title, msg, "")
}

func (n *Notifier) notify(ctx context.Context, userID string, kind models.NotificationType, title, message, bookingID string) error {
	if userID == "" {
		return nil
	}
	note := &models.Notification{UserID: userID, Type: kind, Title: title, Message: message}
	if bookingID != "" {
		note.BookingID = &bookingID
	}
	return n.store.CreateNotification(ctx, note)
}

// List pages a user's notifications, newest first.
func (n *Notifier) List(ctx context.Context, userID string, unreadOnly bool, page, limit int) (*NotificationPage, error) {
	page, limit, offset := normalizePage(page, limit, defaultPageLimit)
	items, total, err := n.store.ListNotifications(ctx, repository.NotificationQuery{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, apperr.Internal(err, "list notifications")
	}
	return &NotificationPage{Items: items, Pagination: newPagination(total, page, limit)}, nil
}

func (n *Notifier) MarkRead(ctx context.Context, userID, id string) error {
	if err := n.store.MarkNotificationRead(ctx, userID, id); err != nil {
		return storeErr(err, "mark notification read", "notification %s not found", id)
	}
	return nil
}

func (n *Notifier) MarkAllRead(ctx context.Context, userID string) error {
	if err := n.store.MarkAllNotificationsRead(ctx, userID); err != nil {
		return apperr.Internal(err, "mark notifications read")
	}
	return nil
}

// SendReminders notifies both parties of CONFIRMED bookings scheduled within
// lead of now. A booking is reminded at most once per participant.
func (n *Notifier) SendReminders(ctx context.Context, lead time.Duration) (int, error) {
	now := n.now()
	until := now.Add(lead)
	bookings, err := n.store.FindBookings(ctx, repository.BookingQuery{
		Statuses:      []models.BookingStatus{models.StatusConfirmed},
		ScheduledFrom: &now,
		ScheduledTo:   &until,
		Order:         repository.OrderSchedule,
	})
	if err != nil {
		return 0, apperr.Internal(err, "list upcoming bookings")
	}

	sent := 0
	for _, b := range bookings {
		msg := fmt.Sprintf("Reminder: %s on %s at %s", b.Service.Name, b.ScheduledDate.Format("2006-01-02"), b.StartTime)
		for _, user := range []models.User{b.Client, b.Caregiver} {
			done, err := n.store.HasNotification(ctx, user.ID, b.ID, models.NotificationReminder)
			if err != nil {
				return sent, apperr.Internal(err, "check reminder")
			}
			if done {
				continue
			}
			if err := n.notify(ctx, user.ID, models.NotificationReminder, "Upcoming booking", msg, b.ID); err != nil {
				return sent, apperr.Internal(err, "create reminder")
			}
			if n.mailer != nil && user.Email != "" {
				if err := n.mailer.Send(user.Email, "Upcoming booking", msg); err != nil {
					n.logger.Warn().Err(err).Str("booking_id", b.ID).Str("user_id", user.ID).Msg("failed to email reminder")
				}
			}
			metrics.IncReminder()
			sent++
		}
	}
	if sent > 0 {
		n.logger.Info().Int("sent", sent).Msg("booking reminders sent")
	}
	return sent, nil
}

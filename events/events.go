package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingStatus    = "booking_status_changed"
	EventBookingReminder  = "booking_reminder"
	EventReviewSubmitted  = "review_submitted"
	EventCaregiverDecided = "caregiver_decided"
)

// BookingEventPayload is the booking snapshot handed to event consumers.
type BookingEventPayload struct {
	BookingID       string    `json:"booking_id"`
	ClientID        string    `json:"client_id"`
	ClientName      string    `json:"client_name"`
	ClientEmail     string    `json:"client_email,omitempty"`
	CaregiverID     string    `json:"caregiver_id"`
	CaregiverName   string    `json:"caregiver_name"`
	ServiceName     string    `json:"service_name"`
	PreviousStatus  string    `json:"previous_status,omitempty"`
	Status          string    `json:"status"`
	ScheduledDate   time.Time `json:"scheduled_date"`
	StartTime       string    `json:"start_time"`
	ChangedByUserID string    `json:"changed_by_user_id,omitempty"`
}

type ReviewEventPayload struct {
	ReviewID          string  `json:"review_id"`
	BookingID         string  `json:"booking_id"`
	CaregiverUserID   string  `json:"caregiver_user_id"`
	ClientName        string  `json:"client_name"`
	Rating            float64 `json:"rating"`
	CaregiverRating   float64 `json:"caregiver_rating"`
	CaregiverReviewed int     `json:"caregiver_review_count"`
}

type CaregiverDecisionPayload struct {
	CaregiverID string `json:"caregiver_id"`
	UserID      string `json:"user_id"`
	Approved    bool   `json:"approved"`
	AdminID     string `json:"admin_id"`
}

// Event is a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

type EventHandler func(ctx context.Context, event *Event) error

// EventBus provides in-process pub/sub. Handlers run synchronously on the
// publisher's goroutine and their errors are logged, never returned.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

func NewEventBus(logger *zerolog.Logger) *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(ctx context.Context, event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil && b.logger != nil {
			b.logger.Error().Err(err).Str("event", event.Type).Msg("event handler failed")
		}
	}
}

// PublishJSON serializes the payload and publishes an event. A nil bus drops it.
func (b *EventBus) PublishJSON(ctx context.Context, eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}
	b.Publish(ctx, &event)
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now().UTC()}, nil
}

package models

type NotificationType string

const (
	NotificationBookingCreated NotificationType = "BOOKING_CREATED"
	NotificationBookingStatus  NotificationType = "BOOKING_STATUS"
	NotificationReminder       NotificationType = "BOOKING_REMINDER"
	NotificationReview         NotificationType = "REVIEW_RECEIVED"
)

type Notification struct {
	Base
	UserID    string           `json:"user_id" gorm:"size:36;not null;index"`
	Type      NotificationType `json:"type" gorm:"size:30"`
	Title     string           `json:"title"`
	Message   string           `json:"message" gorm:"type:text"`
	BookingID *string          `json:"booking_id,omitempty" gorm:"size:36"`
	IsRead    bool             `json:"is_read"`
}

package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	StatusPending    BookingStatus = "PENDING"
	StatusConfirmed  BookingStatus = "CONFIRMED"
	StatusInProgress BookingStatus = "IN_PROGRESS"
	StatusCompleted  BookingStatus = "COMPLETED"
	StatusCancelled  BookingStatus = "CANCELLED"
)

// BookingStatuses lists every status in lifecycle order.
var BookingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	for _, known := range BookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// CanTransition reports whether the lifecycle allows moving from s to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	Base
	ClientID         string        `json:"client_id" gorm:"size:36;not null;index"`
	Client           User          `json:"client" gorm:"foreignKey:ClientID"`
	CaregiverID      string        `json:"caregiver_id" gorm:"size:36;not null;index"`
	Caregiver        User          `json:"caregiver" gorm:"foreignKey:CaregiverID"`
	ServiceID        string        `json:"service_id" gorm:"size:36;not null"`
	Service          Service       `json:"service" gorm:"foreignKey:ServiceID"`
	ScheduledDate    time.Time     `json:"scheduled_date" gorm:"index"`
	StartTime        string        `json:"start_time" gorm:"size:5"`
	EndTime          string        `json:"end_time" gorm:"size:5"`
	Duration         int           `json:"duration"`
	HourlyRate       float64       `json:"hourly_rate" gorm:"type:decimal(10,2)"`
	TotalAmount      float64       `json:"total_amount" gorm:"type:decimal(10,2)"`
	Location         string        `json:"location"`
	Notes            string        `json:"notes" gorm:"type:text"`
	EmergencyContact string        `json:"emergency_contact"`
	Status           BookingStatus `json:"status" gorm:"size:20;not null;index"`
	ConfirmedAt      *time.Time    `json:"confirmed_at"`
	CompletedAt      *time.Time    `json:"completed_at"`
}

// Transition moves the booking to next, stamping lifecycle timestamps.
func (b *Booking) Transition(next BookingStatus, now time.Time) error {
	if !next.Valid() {
		return fmt.Errorf("unknown booking status %q", next)
	}
	if b.Status.Terminal() {
		return fmt.Errorf("no transitions allowed from %s", b.Status)
	}
	if !b.Status.CanTransition(next) {
		return fmt.Errorf("invalid transition from %s to %s", b.Status, next)
	}

	b.Status = next
	switch next {
	case StatusConfirmed:
		b.ConfirmedAt = &now
	case StatusCompleted:
		b.CompletedAt = &now
	}
	return nil
}

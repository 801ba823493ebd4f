package models

import "time"

// Availability is one weekly slot a caregiver accepts bookings in.
type Availability struct {
	Base
	CaregiverID string       `json:"caregiver_id" gorm:"size:36;not null;index"`
	DayOfWeek   time.Weekday `json:"day_of_week"`
	StartTime   string       `json:"start_time" gorm:"size:5"` // "HH:MM" 24h
	EndTime     string       `json:"end_time" gorm:"size:5"`
	IsAvailable bool         `json:"is_available"`
}

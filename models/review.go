package models

// Review is a client's rating of a completed booking.
type Review struct {
	Base
	BookingID   string  `json:"booking_id" gorm:"uniqueIndex;size:36;not null"`
	CaregiverID string  `json:"caregiver_id" gorm:"size:36;not null;index"`
	ClientID    string  `json:"client_id" gorm:"size:36;not null"`
	Client      User    `json:"client" gorm:"foreignKey:ClientID"`
	Rating      float64 `json:"rating" gorm:"type:decimal(3,2);not null"`
	Comment     string  `json:"comment" gorm:"type:text"`
}

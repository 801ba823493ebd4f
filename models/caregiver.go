package models

import "time"

// CaregiverProfile extends a CAREGIVER user with marketplace data.
type CaregiverProfile struct {
	Base
	UserID            string             `json:"user_id" gorm:"uniqueIndex;size:36;not null"`
	User              User               `json:"user" gorm:"foreignKey:UserID"`
	Bio               string             `json:"bio" gorm:"type:text"`
	Experience        int                `json:"experience"`
	HourlyRate        float64            `json:"hourly_rate" gorm:"type:decimal(10,2)"`
	Rating            float64            `json:"rating" gorm:"type:decimal(3,2)"`
	ReviewCount       int                `json:"review_count"`
	IsVerified        bool               `json:"is_verified" gorm:"index"`
	ProfileCompletion int                `json:"profile_completion"`
	Services          []CaregiverService `json:"services,omitempty" gorm:"foreignKey:CaregiverID"`
	Certifications    []Certification    `json:"certifications,omitempty" gorm:"foreignKey:CaregiverID"`
}

// ServiceNames returns the names of the linked services.
func (p *CaregiverProfile) ServiceNames() []string {
	names := make([]string, 0, len(p.Services))
	for _, link := range p.Services {
		names = append(names, link.Service.Name)
	}
	return names
}

type Certification struct {
	Base
	CaregiverID string     `json:"caregiver_id" gorm:"size:36;not null;index"`
	Name        string     `json:"name" gorm:"size:200;not null"`
	IssuedBy    string     `json:"issued_by" gorm:"size:200"`
	IssuedDate  time.Time  `json:"issued_date"`
	ExpiryDate  *time.Time `json:"expiry_date"`
	IsVerified  bool       `json:"is_verified"`
}

// Lapsed reports whether the certification expired before now.
func (c Certification) Lapsed(now time.Time) bool {
	return c.ExpiryDate != nil && c.ExpiryDate.Before(now)
}

// Key identifies a certification within one profile.
func (c Certification) Key() string {
	return c.Name + "\x00" + c.IssuedBy
}

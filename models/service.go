package models

type ServiceCategory string

const (
	CategoryPersonalCare    ServiceCategory = "PERSONAL_CARE"
	CategoryMedicalCare     ServiceCategory = "MEDICAL_CARE"
	CategoryCompanionship   ServiceCategory = "COMPANIONSHIP"
	CategoryHouseholdTasks  ServiceCategory = "HOUSEHOLD_TASKS"
	CategoryTransportation  ServiceCategory = "TRANSPORTATION"
	CategorySpecializedCare ServiceCategory = "SPECIALIZED_CARE"
)

// Categories lists every service category in display order.
var Categories = []ServiceCategory{
	CategoryPersonalCare,
	CategoryMedicalCare,
	CategoryCompanionship,
	CategoryHouseholdTasks,
	CategoryTransportation,
	CategorySpecializedCare,
}

// Valid reports whether c is a known category.
func (c ServiceCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Service is a catalog offering that caregivers link to.
type Service struct {
	Base
	Name        string          `json:"name" gorm:"uniqueIndex;size:150;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Category    ServiceCategory `json:"category" gorm:"size:40;not null"`
	IsActive    bool            `json:"is_active"`
}

// CaregiverService links a caregiver profile to a catalog service.
type CaregiverService struct {
	Base
	CaregiverID string  `json:"caregiver_id" gorm:"size:36;not null;uniqueIndex:idx_caregiver_service"`
	ServiceID   string  `json:"service_id" gorm:"size:36;not null;uniqueIndex:idx_caregiver_service"`
	Service     Service `json:"service" gorm:"foreignKey:ServiceID"`
}

package repository

import (
	"context"
	"strings"

	"github.com/meinhoongagan/carehub/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func preloadProfile(tx *gorm.DB) *gorm.DB {
	return tx.Preload("User").
		Preload("Services", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Preload("Services.Service").
		Preload("Certifications", func(db *gorm.DB) *gorm.DB { return db.Order("issued_date") })
}

func (s *GormStore) CreateCaregiverProfile(ctx context.Context, profile *models.CaregiverProfile) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(profile).Error)
}

func (s *GormStore) GetCaregiverProfile(ctx context.Context, id string) (*models.CaregiverProfile, error) {
	var profile models.CaregiverProfile
	if err := preloadProfile(s.conn(ctx)).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (s *GormStore) GetCaregiverProfileByUser(ctx context.Context, userID string) (*models.CaregiverProfile, error) {
	var profile models.CaregiverProfile
	if err := preloadProfile(s.conn(ctx)).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// LockCaregiverProfile reads the bare profile row under a row lock.
func (s *GormStore) LockCaregiverProfile(ctx context.Context, id string) (*models.CaregiverProfile, error) {
	var profile models.CaregiverProfile
	if err := s.conn(ctx).Clauses(forUpdate).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (s *GormStore) UpdateCaregiverProfile(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return affected(s.conn(ctx).Model(&models.CaregiverProfile{}).Where("id = ?", id).Updates(fields))
}

func (s *GormStore) DeleteCaregiverProfile(ctx context.Context, id string) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("caregiver_id = ?", id).Delete(&models.CaregiverService{}).Error; err != nil {
			return err
		}
		if err := tx.Where("caregiver_id = ?", id).Delete(&models.Certification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("caregiver_id = ?", id).Delete(&models.Availability{}).Error; err != nil {
			return err
		}
		return affected(tx.Where("id = ?", id).Delete(&models.CaregiverProfile{}))
	})
}

const serviceMembership = "caregiver_profiles.id IN (SELECT caregiver_services.caregiver_id FROM caregiver_services " +
	"JOIN services ON services.id = caregiver_services.service_id WHERE "

func (s *GormStore) caregiverScope(ctx context.Context, q CaregiverQuery) *gorm.DB {
	tx := s.conn(ctx).Model(&models.CaregiverProfile{}).
		Joins("JOIN users ON users.id = caregiver_profiles.user_id")

	if q.VerifiedOnly {
		tx = tx.Where("caregiver_profiles.is_verified = ? AND users.is_verified = ?", true, true)
	}
	if q.Verified != nil {
		tx = tx.Where("caregiver_profiles.is_verified = ?", *q.Verified)
	}
	if len(q.Services) > 0 {
		tx = tx.Where(serviceMembership+"services.name IN ?)", q.Services)
	}
	if q.MinRate != nil {
		tx = tx.Where("caregiver_profiles.hourly_rate >= ?", *q.MinRate)
	}
	if q.MaxRate != nil {
		tx = tx.Where("caregiver_profiles.hourly_rate <= ?", *q.MaxRate)
	}
	if q.MinRating != nil {
		tx = tx.Where("caregiver_profiles.rating >= ?", *q.MinRating)
	}
	if q.MinExperience != nil {
		tx = tx.Where("caregiver_profiles.experience >= ?", *q.MinExperience)
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		tx = tx.Where(
			"(LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ? OR LOWER(caregiver_profiles.bio) LIKE ? OR "+
				serviceMembership+"LOWER(services.name) LIKE ?))",
			pattern, pattern, pattern, pattern,
		)
	}
	return tx
}

func caregiverOrder(sort CaregiverSort) string {
	switch sort {
	case SortPriceLow:
		return "caregiver_profiles.hourly_rate ASC"
	case SortPriceHigh:
		return "caregiver_profiles.hourly_rate DESC"
	case SortExperience:
		return "caregiver_profiles.experience DESC"
	case SortNewest:
		return "caregiver_profiles.created_at DESC"
	case SortFeatured:
		return "caregiver_profiles.rating DESC, caregiver_profiles.review_count DESC"
	}
	return "caregiver_profiles.rating DESC"
}

// SearchCaregivers returns one page of matching profiles and the unpaged match count.
func (s *GormStore) SearchCaregivers(ctx context.Context, q CaregiverQuery) ([]models.CaregiverProfile, int64, error) {
	var total int64
	if err := s.caregiverScope(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.CaregiverProfile
	tx := s.caregiverScope(ctx, q).
		Select("caregiver_profiles.*").
		Order(caregiverOrder(q.Sort)).
		Order("caregiver_profiles.id ASC")
	if err := preloadProfile(paginate(tx, q.Offset, q.Limit)).Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (s *GormStore) CountCaregiverProfiles(ctx context.Context, verified *bool) (int64, error) {
	tx := s.conn(ctx).Model(&models.CaregiverProfile{})
	if verified != nil {
		tx = tx.Where("is_verified = ?", *verified)
	}
	var count int64
	err := tx.Count(&count).Error
	return count, err
}

func (s *GormStore) ListCaregiverServices(ctx context.Context, caregiverID string) ([]models.CaregiverService, error) {
	var links []models.CaregiverService
	err := s.conn(ctx).Preload("Service").Where("caregiver_id = ?", caregiverID).Order("created_at").Find(&links).Error
	return links, err
}

func (s *GormStore) AddCaregiverService(ctx context.Context, link *models.CaregiverService) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(link).Error)
}

func (s *GormStore) RemoveCaregiverServices(ctx context.Context, caregiverID string, serviceIDs []string) error {
	if len(serviceIDs) == 0 {
		return nil
	}
	return s.conn(ctx).Where("caregiver_id = ? AND service_id IN ?", caregiverID, serviceIDs).
		Delete(&models.CaregiverService{}).Error
}

func (s *GormStore) ListCertifications(ctx context.Context, caregiverID string) ([]models.Certification, error) {
	var certs []models.Certification
	err := s.conn(ctx).Where("caregiver_id = ?", caregiverID).Order("issued_date").Find(&certs).Error
	return certs, err
}

func (s *GormStore) CreateCertification(ctx context.Context, cert *models.Certification) error {
	return translate(s.conn(ctx).Create(cert).Error)
}

func (s *GormStore) UpdateCertification(ctx context.Context, cert *models.Certification) error {
	return translate(s.conn(ctx).Save(cert).Error)
}

func (s *GormStore) DeleteCertifications(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.conn(ctx).Where("id IN ?", ids).Delete(&models.Certification{}).Error
}

func (s *GormStore) ListAvailability(ctx context.Context, caregiverID string) ([]models.Availability, error) {
	var slots []models.Availability
	err := s.conn(ctx).Where("caregiver_id = ?", caregiverID).
		Order("day_of_week").Order("start_time").
		Find(&slots).Error
	return slots, err
}

// ReplaceAvailability swaps the weekly slot set in one transaction.
func (s *GormStore) ReplaceAvailability(ctx context.Context, caregiverID string, slots []models.Availability) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("caregiver_id = ?", caregiverID).Delete(&models.Availability{}).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		for i := range slots {
			slots[i].CaregiverID = caregiverID
		}
		return tx.Create(&slots).Error
	})
}

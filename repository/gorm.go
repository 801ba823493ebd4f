package repository

import (
	"context"
	"errors"

	"github.com/meinhoongagan/carehub/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of gorm.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func paginate(tx *gorm.DB, offset, limit int) *gorm.DB {
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	return tx
}

var forUpdate = clause.Locking{Strength: "UPDATE"}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.conn(ctx).Create(user).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, user *models.User) error {
	return translate(s.conn(ctx).Save(user).Error)
}

func (s *GormStore) ListUsers(ctx context.Context, q UserQuery) ([]models.User, int64, error) {
	base := func() *gorm.DB {
		tx := s.conn(ctx).Model(&models.User{})
		if q.Role != "" {
			tx = tx.Where("role = ?", q.Role)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := paginate(base().Order("created_at DESC").Order("id"), q.Offset, q.Limit).Find(&users).Error
	return users, total, err
}

func (s *GormStore) CountUsers(ctx context.Context, role models.Role) (int64, error) {
	tx := s.conn(ctx).Model(&models.User{})
	if role != "" {
		tx = tx.Where("role = ?", role)
	}
	var count int64
	err := tx.Count(&count).Error
	return count, err
}

// LockAdminUsers returns every ADMIN user, row locked until the transaction ends.
func (s *GormStore) LockAdminUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.conn(ctx).Clauses(forUpdate).Where("role = ?", models.RoleAdmin).Order("id").Find(&users).Error
	return users, err
}

func (s *GormStore) CreateAdminProfile(ctx context.Context, admin *models.AdminProfile) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(admin).Error)
}

func (s *GormStore) GetAdminProfile(ctx context.Context, userID string) (*models.AdminProfile, error) {
	var admin models.AdminProfile
	if err := s.conn(ctx).Preload("User").Where("user_id = ?", userID).First(&admin).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (s *GormStore) UpdateAdminProfile(ctx context.Context, admin *models.AdminProfile) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(admin).Error)
}

func (s *GormStore) DeleteAdminProfile(ctx context.Context, userID string) error {
	return affected(s.conn(ctx).Where("user_id = ?", userID).Delete(&models.AdminProfile{}))
}

func (s *GormStore) ListAdminProfiles(ctx context.Context) ([]models.AdminProfile, error) {
	var admins []models.AdminProfile
	err := s.conn(ctx).Preload("User").Order("created_at").Find(&admins).Error
	return admins, err
}

func (s *GormStore) CreateService(ctx context.Context, service *models.Service) error {
	return translate(s.conn(ctx).Create(service).Error)
}

func (s *GormStore) GetService(ctx context.Context, id string) (*models.Service, error) {
	var service models.Service
	if err := s.conn(ctx).Where("id = ?", id).First(&service).Error; err != nil {
		return nil, translate(err)
	}
	return &service, nil
}

func (s *GormStore) GetServiceByName(ctx context.Context, name string) (*models.Service, error) {
	var service models.Service
	if err := s.conn(ctx).Where("name = ?", name).First(&service).Error; err != nil {
		return nil, translate(err)
	}
	return &service, nil
}

func (s *GormStore) ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	tx := s.conn(ctx).Model(&models.Service{})
	if activeOnly {
		tx = tx.Where("is_active = ?", true)
	}
	var services []models.Service
	err := tx.Order("category").Order("name").Find(&services).Error
	return services, err
}

func (s *GormStore) UpdateService(ctx context.Context, service *models.Service) error {
	return translate(s.conn(ctx).Save(service).Error)
}

func (s *GormStore) DeleteService(ctx context.Context, id string) error {
	return affected(s.conn(ctx).Where("id = ?", id).Delete(&models.Service{}))
}

func (s *GormStore) CountServices(ctx context.Context) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Service{}).Count(&count).Error
	return count, err
}

// CountCaregiversByService counts verified caregivers linked to each service id.
func (s *GormStore) CountCaregiversByService(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		ServiceID string
		Count     int64
	}
	err := s.conn(ctx).Table("caregiver_services").
		Select("caregiver_services.service_id AS service_id, COUNT(*) AS count").
		Joins("JOIN caregiver_profiles ON caregiver_profiles.id = caregiver_services.caregiver_id").
		Joins("JOIN users ON users.id = caregiver_profiles.user_id").
		Where("caregiver_profiles.is_verified = ? AND users.is_verified = ?", true, true).
		Group("caregiver_services.service_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ServiceID] = row.Count
	}
	return counts, nil
}

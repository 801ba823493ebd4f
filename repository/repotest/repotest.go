// Package repotest builds sqlite backed stores and fixtures for tests.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meinhoongagan/carehub/config"
	"github.com/meinhoongagan/carehub/db"
	"github.com/meinhoongagan/carehub/logging"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New opens a migrated in-memory database.
func New(t testing.TB) (*repository.GormStore, *gorm.DB) {
	t.Helper()

	conn, err := db.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, logging.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewGormStore(conn), conn
}

// User inserts a verified user with the given role.
func User(t testing.TB, conn *gorm.DB, role models.Role, firstName string) *models.User {
	t.Helper()
	user := &models.User{
		Email:      fmt.Sprintf("%s-%s@example.com", firstName, uuid.NewString()[:8]),
		FirstName:  firstName,
		LastName:   "Tester",
		Role:       role,
		IsVerified: true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

// Service inserts an active catalog service.
func Service(t testing.TB, conn *gorm.DB, name string) *models.Service {
	t.Helper()
	service := &models.Service{Name: name, Category: models.CategoryPersonalCare, IsActive: true}
	require.NoError(t, conn.Create(service).Error)
	return service
}

// CaregiverOpts overrides fixture defaults.
type CaregiverOpts struct {
	FirstName   string
	Bio         string
	Experience  int
	HourlyRate  float64
	Rating      float64
	ReviewCount int
	Unverified  bool
	UserPending bool
	Services    []*models.Service
	CreatedAt   time.Time
}

// Caregiver inserts a caregiver user with a profile.
func Caregiver(t testing.TB, conn *gorm.DB, opts CaregiverOpts) *models.CaregiverProfile {
	t.Helper()
	if opts.FirstName == "" {
		opts.FirstName = "Carer"
	}
	user := User(t, conn, models.RoleCaregiver, opts.FirstName)
	if opts.UserPending {
		require.NoError(t, conn.Model(user).Update("is_verified", false).Error)
	}

	profile := &models.CaregiverProfile{
		UserID:      user.ID,
		Bio:         opts.Bio,
		Experience:  opts.Experience,
		HourlyRate:  opts.HourlyRate,
		Rating:      opts.Rating,
		ReviewCount: opts.ReviewCount,
		IsVerified:  !opts.Unverified,
	}
	if !opts.CreatedAt.IsZero() {
		profile.CreatedAt = opts.CreatedAt
	}
	require.NoError(t, conn.Omit("User", "Services", "Certifications").Create(profile).Error)

	for _, service := range opts.Services {
		link := &models.CaregiverService{CaregiverID: profile.ID, ServiceID: service.ID}
		require.NoError(t, conn.Omit("Service").Create(link).Error)
	}

	loaded, err := repository.NewGormStore(conn).GetCaregiverProfile(context.Background(), profile.ID)
	require.NoError(t, err)
	return loaded
}

// BookingOpts overrides fixture defaults.
type BookingOpts struct {
	Status        models.BookingStatus
	TotalAmount   float64
	CreatedAt     time.Time
	ScheduledDate time.Time
	StartTime     string
}

// Booking inserts a booking between client and caregiver user ids.
func Booking(t testing.TB, conn *gorm.DB, clientID, caregiverUserID, serviceID string, opts BookingOpts) *models.Booking {
	t.Helper()
	if opts.Status == "" {
		opts.Status = models.StatusPending
	}
	if opts.StartTime == "" {
		opts.StartTime = "09:00"
	}
	if opts.ScheduledDate.IsZero() {
		opts.ScheduledDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	booking := &models.Booking{
		ClientID:      clientID,
		CaregiverID:   caregiverUserID,
		ServiceID:     serviceID,
		ScheduledDate: opts.ScheduledDate,
		StartTime:     opts.StartTime,
		EndTime:       "11:00",
		Duration:      120,
		HourlyRate:    25,
		TotalAmount:   opts.TotalAmount,
		Status:        opts.Status,
	}
	if !opts.CreatedAt.IsZero() {
		booking.CreatedAt = opts.CreatedAt
	}
	require.NoError(t, conn.Omit("Client", "Caregiver", "Service").Create(booking).Error)
	return booking
}

package db

import (
	"fmt"

	"github.com/meinhoongagan/carehub/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the application uses
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.AdminProfile{},
		&models.Service{},
		&models.CaregiverProfile{},
		&models.CaregiverService{},
		&models.Certification{},
		&models.Availability{},
		&models.Booking{},
		&models.Review{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

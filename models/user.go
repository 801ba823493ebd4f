package models

type Role string

const (
	RoleClient    Role = "CLIENT"
	RoleCaregiver Role = "CAREGIVER"
	RoleAdmin     Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleCaregiver, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Base
	Email      string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password   string `json:"-"`
	FirstName  string `json:"first_name" gorm:"size:100"`
	LastName   string `json:"last_name" gorm:"size:100"`
	Phone      string `json:"phone" gorm:"size:40"`
	Role       Role   `json:"role" gorm:"size:20;not null;index"`
	IsVerified bool   `json:"is_verified"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

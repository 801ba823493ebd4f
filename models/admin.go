package models

type AdminRole string

const (
	AdminRoleSuper     AdminRole = "SUPER_ADMIN"
	AdminRoleAdmin     AdminRole = "ADMIN"
	AdminRoleModerator AdminRole = "MODERATOR"
)

const (
	PermissionCaregiverApproval = "caregiver_approval"
	PermissionUserManagement    = "user_management"
	PermissionAdminManagement   = "admin_management"
	PermissionSystemSettings    = "system_settings"
)

// DefaultPermissions returns the permission set granted at admin creation.
func DefaultPermissions(role AdminRole) []string {
	switch role {
	case AdminRoleSuper:
		return []string{PermissionCaregiverApproval, PermissionUserManagement, PermissionAdminManagement, PermissionSystemSettings}
	case AdminRoleAdmin:
		return []string{PermissionCaregiverApproval, PermissionUserManagement}
	case AdminRoleModerator:
		return []string{PermissionCaregiverApproval}
	}
	return []string{}
}

// AdminProfile holds the persisted permission set of an ADMIN user.
type AdminProfile struct {
	Base
	UserID      string    `json:"user_id" gorm:"uniqueIndex;size:36;not null"`
	User        User      `json:"user" gorm:"foreignKey:UserID"`
	AdminRole   AdminRole `json:"admin_role" gorm:"size:20;not null"`
	Permissions []string  `json:"permissions" gorm:"serializer:json;type:text"`
}

// Has reports whether the permission is granted.
func (a *AdminProfile) Has(permission string) bool {
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/events"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/rs/zerolog"
)

var knownPermissions = map[string]bool{
	models.PermissionCaregiverApproval: true,
	models.PermissionUserManagement:    true,
	models.PermissionAdminManagement:   true,
	models.PermissionSystemSettings:    true,
}

type CaregiverPage struct {
	Items []CaregiverView `json:"items"`
	Pagination
}

// AdminService manages administrators and caregiver approval.
type AdminService struct {
	store    repository.Store
	profiles *ProfileAggregator
	events   Publisher
	logger   *zerolog.Logger
}

func NewAdminService(store repository.Store, profiles *ProfileAggregator, events Publisher, logger *zerolog.Logger) *AdminService {
	return &AdminService{store: store, profiles: profiles, events: events, logger: logger}
}

// CreateAdmin promotes a user to ADMIN and persists the default permissions of adminRole.
func (s *AdminService) CreateAdmin(ctx context.Context, userID string, adminRole models.AdminRole) (*models.AdminProfile, error) {
	if adminRole == "" {
		adminRole = models.AdminRoleAdmin
	}
	switch adminRole {
	case models.AdminRoleSuper, models.AdminRoleAdmin, models.AdminRoleModerator:
	default:
		return nil, apperr.BadRequest("unknown admin role %q", adminRole)
	}

	var profile *models.AdminProfile
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return storeErr(err, "get user", "user %s not found", userID)
		}
		if _, err := tx.GetAdminProfile(ctx, userID); err == nil {
			return apperr.Conflict("user %s is already an admin", userID)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return apperr.Internal(err, "get admin profile")
		}

		user.Role = models.RoleAdmin
		if err := tx.UpdateUser(ctx, user); err != nil {
			return storeErr(err, "promote user", "user %s not found", userID)
		}
		profile = &models.AdminProfile{
			UserID:      userID,
			AdminRole:   adminRole,
			Permissions: models.DefaultPermissions(adminRole),
		}
		if err := tx.CreateAdminProfile(ctx, profile); err != nil {
			return storeErr(err, "create admin profile", "user %s not found", userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", userID).Str("admin_role", string(adminRole)).Msg("admin created")
	return s.store.GetAdminProfile(ctx, userID)
}

// Bootstrap makes email the first SUPER_ADMIN. It registers and verifies the
// account when it does not exist yet, and does nothing once any admin exists.
func (s *AdminService) Bootstrap(ctx context.Context, users *UserService, email, password string) (*models.AdminProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	admins, err := s.store.LockAdminUsers(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "list admin users")
	}
	if len(admins) > 0 {
		s.logger.Debug().Int("admins", len(admins)).Msg("admin bootstrap skipped")
		return nil, nil
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if len(password) < 8 {
			return nil, apperr.BadRequest("bootstrap password must be at least 8 characters")
		}
		user, err = users.Register(ctx, RegisterInput{Email: email, Password: password, FirstName: "Admin", LastName: "User"})
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, apperr.Internal(err, "get user by email")
	}
	if _, err := users.Verify(ctx, user.ID); err != nil {
		return nil, err
	}

	profile, err := s.CreateAdmin(ctx, user.ID, models.AdminRoleSuper)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("email", email).Msg("bootstrap admin created")
	return profile, nil
}

// RemoveAdmin demotes an admin to CLIENT. The last remaining admin cannot be removed;
// the check and the demotion share one transaction holding locks on every admin row.
func (s *AdminService) RemoveAdmin(ctx context.Context, userID string) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		admins, err := tx.LockAdminUsers(ctx)
		if err != nil {
			return apperr.Internal(err, "lock admin users")
		}

		var target *models.User
		for i := range admins {
			if admins[i].ID == userID {
				target = &admins[i]
				break
			}
		}
		if target == nil {
			return apperr.NotFound("admin %s not found", userID)
		}
		if len(admins) <= 1 {
			return apperr.Forbidden("cannot remove the last admin")
		}

		target.Role = models.RoleClient
		if err := tx.UpdateUser(ctx, target); err != nil {
			return storeErr(err, "demote admin", "admin %s not found", userID)
		}
		if err := tx.DeleteAdminProfile(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperr.Internal(err, "delete admin profile")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Msg("admin removed")
	return nil
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]models.AdminProfile, error) {
	admins, err := s.store.ListAdminProfiles(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "list admins")
	}
	return admins, nil
}

// AddPermission grants a permission to an admin. Granting twice is a no-op.
func (s *AdminService) AddPermission(ctx context.Context, userID, permission string) (*models.AdminProfile, error) {
	return s.editPermissions(ctx, userID, permission, func(p *models.AdminProfile) {
		if !p.Has(permission) {
			p.Permissions = append(p.Permissions, permission)
		}
	})
}

// RemovePermission revokes a permission from an admin.
func (s *AdminService) RemovePermission(ctx context.Context, userID, permission string) (*models.AdminProfile, error) {
	return s.editPermissions(ctx, userID, permission, func(p *models.AdminProfile) {
		kept := make([]string, 0, len(p.Permissions))
		for _, have := range p.Permissions {
			if have != permission {
				kept = append(kept, have)
			}
		}
		p.Permissions = kept
	})
}

func (s *AdminService) editPermissions(ctx context.Context, userID, permission string, edit func(*models.AdminProfile)) (*models.AdminProfile, error) {
	if !knownPermissions[permission] {
		return nil, apperr.BadRequest("unknown permission %q", permission)
	}
	profile, err := s.store.GetAdminProfile(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "get admin profile", "admin %s not found", userID)
	}
	edit(profile)
	if err := s.store.UpdateAdminProfile(ctx, profile); err != nil {
		return nil, storeErr(err, "update admin profile", "admin %s not found", userID)
	}
	s.logger.Info().Str("user_id", userID).Strs("permissions", profile.Permissions).Msg("admin permissions changed")
	return profile, nil
}

// HasPermission reports whether userID is an admin holding permission.
func (s *AdminService) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	profile, err := s.store.GetAdminProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Internal(err, "get admin profile")
	}
	return profile.Has(permission), nil
}

// ApproveCaregiver marks a caregiver profile verified.
func (s *AdminService) ApproveCaregiver(ctx context.Context, adminID, caregiverID string) (*CaregiverView, error) {
	return s.decide(ctx, adminID, caregiverID, true)
}

// RejectCaregiver marks a caregiver profile unverified.
func (s *AdminService) RejectCaregiver(ctx context.Context, adminID, caregiverID string) (*CaregiverView, error) {
	return s.decide(ctx, adminID, caregiverID, false)
}

func (s *AdminService) decide(ctx context.Context, adminID, caregiverID string, approved bool) (*CaregiverView, error) {
	allowed, err := s.HasPermission(ctx, adminID, models.PermissionCaregiverApproval)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("missing permission %s", models.PermissionCaregiverApproval)
	}

	profile, err := s.store.GetCaregiverProfile(ctx, caregiverID)
	if err != nil {
		return nil, storeErr(err, "get caregiver", "caregiver %s not found", caregiverID)
	}
	if err := s.store.UpdateCaregiverProfile(ctx, caregiverID, map[string]interface{}{"is_verified": approved}); err != nil {
		return nil, storeErr(err, "update caregiver", "caregiver %s not found", caregiverID)
	}

	s.logger.Info().Str("admin_id", adminID).Str("caregiver_id", caregiverID).Bool("approved", approved).Msg("caregiver reviewed")
	if s.events != nil {
		payload := events.CaregiverDecisionPayload{CaregiverID: caregiverID, UserID: profile.UserID, Approved: approved, AdminID: adminID}
		if err := s.events.PublishJSON(ctx, events.EventCaregiverDecided, payload); err != nil {
			s.logger.Error().Err(err).Str("caregiver_id", caregiverID).Msg("failed to publish caregiver decision")
		}
	}
	return s.profiles.Get(ctx, caregiverID)
}

// PendingCaregivers lists profiles awaiting approval, newest first.
func (s *AdminService) PendingCaregivers(ctx context.Context, page, limit int) (*CaregiverPage, error) {
	return s.caregivers(ctx, false, page, limit)
}

// ApprovedCaregivers lists verified profiles, newest first.
func (s *AdminService) ApprovedCaregivers(ctx context.Context, page, limit int) (*CaregiverPage, error) {
	return s.caregivers(ctx, true, page, limit)
}

func (s *AdminService) caregivers(ctx context.Context, verified bool, page, limit int) (*CaregiverPage, error) {
	page, limit, offset := normalizePage(page, limit, defaultPageLimit)
	profiles, total, err := s.store.SearchCaregivers(ctx, repository.CaregiverQuery{
		Verified: &verified,
		Sort:     repository.SortNewest,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return nil, apperr.Internal(err, "list caregivers")
	}

	out := &CaregiverPage{Items: make([]CaregiverView, 0, len(profiles)), Pagination: newPagination(total, page, limit)}
	for i := range profiles {
		out.Items = append(out.Items, s.profiles.Compose(&profiles[i]))
	}
	return out, nil
}

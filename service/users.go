package service

import (
	"context"
	"errors"
	"strings"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,min=8,max=72"`
	FirstName string      `json:"first_name" validate:"required,max=100"`
	LastName  string      `json:"last_name" validate:"max=100"`
	Phone     string      `json:"phone" validate:"max=40"`
	Role      models.Role `json:"role" validate:"omitempty,oneof=CLIENT CAREGIVER"`
}

type UserPatch struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=40"`
}

type UserPage struct {
	Items []models.User `json:"items"`
	Pagination
}

// UserService owns accounts and credentials.
type UserService struct {
	store  repository.Store
	cost   int
	logger *zerolog.Logger
}

func NewUserService(store repository.Store, logger *zerolog.Logger) *UserService {
	return &UserService{store: store, cost: bcrypt.DefaultCost, logger: logger}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

// Register creates a CLIENT or CAREGIVER account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperr.BadRequest("email and password are required")
	}
	role := in.Role
	if role == "" {
		role = models.RoleClient
	}
	if role != models.RoleClient && role != models.RoleCaregiver {
		return nil, apperr.BadRequest("role must be CLIENT or CAREGIVER")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}

	user := &models.User{
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      role,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("user with email %s already exists", email)
		}
		return nil, apperr.Internal(err, "create user")
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user registered")
	return user, nil
}

// Authenticate checks credentials. Unknown email and wrong password are indistinguishable.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal(err, "get user by email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err, "get user", "user %s not found", id)
	}
	return user, nil
}

// Update patches the caller's names and phone.
func (s *UserService) Update(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Phone != nil {
		user.Phone = strings.TrimSpace(*patch.Phone)
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, storeErr(err, "update user", "user %s not found", id)
	}
	return user, nil
}

// Verify marks the user's email verified.
func (s *UserService) Verify(ctx context.Context, id string) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return user, nil
	}
	user.IsVerified = true
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, storeErr(err, "verify user", "user %s not found", id)
	}
	s.logger.Info().Str("user_id", id).Msg("user verified")
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, id, current, next string) error {
	if len(next) < 8 || len(next) > 72 {
		return apperr.BadRequest("new password must be between 8 and 72 characters")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return apperr.BadRequest("current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return apperr.Internal(err, "hash password")
	}
	user.Password = string(hashed)
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return storeErr(err, "update password", "user %s not found", id)
	}
	s.logger.Info().Str("user_id", id).Msg("password changed")
	return nil
}

// List pages users, optionally by role.
func (s *UserService) List(ctx context.Context, role models.Role, page, limit int) (*UserPage, error) {
	if role != "" && !role.Valid() {
		return nil, apperr.BadRequest("unknown role %q", role)
	}
	page, limit, offset := normalizePage(page, limit, defaultPageLimit)
	users, total, err := s.store.ListUsers(ctx, repository.UserQuery{Role: role, Offset: offset, Limit: limit})
	if err != nil {
		return nil, apperr.Internal(err, "list users")
	}
	return &UserPage{Items: users, Pagination: newPagination(total, page, limit)}, nil
}

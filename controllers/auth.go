package controllers

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/service"
	"github.com/meinhoongagan/carehub/utils"
	"github.com/rs/zerolog"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// AuthSettings configures token signing and the email verification link.
type AuthSettings struct {
	Secret          string
	TokenTTL        time.Duration
	VerificationTTL time.Duration
	VerifyURL       string
}

// AuthController issues and refreshes access tokens.
type AuthController struct {
	users    *service.UserService
	mailer   service.Mailer
	settings AuthSettings
	now      service.Clock
	logger   *zerolog.Logger
}

// NewAuthController builds the controller. A nil mailer skips verification mail.
func NewAuthController(users *service.UserService, mailer service.Mailer, settings AuthSettings, now service.Clock, logger *zerolog.Logger) *AuthController {
	return &AuthController{users: users, mailer: mailer, settings: settings, now: now, logger: logger}
}

// Register handles user registration and mails the verification link
func (a *AuthController) Register(c *fiber.Ctx) error {
	var in service.RegisterInput
	if err := utils.BindJSON(c, &in); err != nil {
		return err
	}
	user, err := a.users.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	a.sendVerification(user)
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (a *AuthController) sendVerification(user *models.User) {
	if a.mailer == nil {
		a.logger.Warn().Str("user_id", user.ID).Msg("mail disabled, verification link not sent")
		return
	}
	token, err := middleware.IssueVerificationToken(a.settings.Secret, a.settings.VerificationTTL, user.ID, a.now())
	if err != nil {
		a.logger.Error().Err(err).Str("user_id", user.ID).Msg("sign verification token")
		return
	}
	link := a.settings.VerifyURL + "?token=" + url.QueryEscape(token)
	body := fmt.Sprintf("Hello %s,\n\nConfirm your email address: %s\n\nThe link expires in %s.\n",
		user.FirstName, link, a.settings.VerificationTTL)
	if err := a.mailer.Send(user.Email, "Verify your CareHub account", body); err != nil {
		a.logger.Error().Err(err).Str("user_id", user.ID).Msg("send verification mail")
	}
}

// VerifyEmail marks the account of a valid verification token as verified
func (a *AuthController) VerifyEmail(c *fiber.Ctx) error {
	id, err := middleware.ParseVerificationToken(a.settings.Secret, c.Query("token"))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}
	user, err := a.users.Verify(c.UserContext(), id)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return fiber.NewError(fiber.StatusUnauthorized, middleware.ErrInvalidVerificationToken.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Email verified successfully", "user": user})
}

// ChangePassword replaces the caller's password after checking the current one
func (a *AuthController) ChangePassword(c *fiber.Ctx) error {
	var in ChangePasswordInput
	if err := utils.BindJSON(c, &in); err != nil {
		return err
	}
	if err := a.users.ChangePassword(c.UserContext(), middleware.UserID(c), in.CurrentPassword, in.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// Login handles user authentication
func (a *AuthController) Login(c *fiber.Ctx) error {
	var in LoginInput
	if err := utils.BindJSON(c, &in); err != nil {
		return err
	}
	user, err := a.users.Authenticate(c.UserContext(), in.Email, in.Password)
	if err != nil {
		a.logger.Info().Str("email", in.Email).Msg("login rejected")
		return err
	}
	return a.issue(c, user)
}

// RefreshToken reissues a token for the authenticated caller.
func (a *AuthController) RefreshToken(c *fiber.Ctx) error {
	user, err := a.users.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return a.issue(c, user)
}

func (a *AuthController) issue(c *fiber.Ctx, user *models.User) error {
	now := a.now()
	token, err := middleware.IssueToken(a.settings.Secret, a.settings.TokenTTL, user, now)
	if err != nil {
		a.logger.Error().Err(err).Str("user_id", user.ID).Msg("sign token")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}
	return c.JSON(TokenResponse{Token: token, ExpiresAt: now.Add(a.settings.TokenTTL), User: user})
}

// Me returns the current user's account
func (a *AuthController) Me(c *fiber.Ctx) error {
	user, err := a.users.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// Logout doesn't invalidate the token as JWTs are stateless
func (a *AuthController) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}

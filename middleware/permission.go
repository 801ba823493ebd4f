package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/utils"
	"github.com/rs/zerolog"
)

// PermissionChecker resolves persisted admin permissions.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, permission string) (bool, error)
}

func forbidden(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{Error: "FORBIDDEN", Message: msg})
}

// RequireRole checks if the user has one of the specified roles
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return forbidden(c, "insufficient role")
	}
}

// RequirePermission checks if the user holds the admin permission
func RequirePermission(checker PermissionChecker, permission string, logger *zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{Error: "UNAUTHORIZED", Message: "authentication required"})
		}
		ok, err := checker.HasPermission(c.UserContext(), userID, permission)
		if err != nil {
			logger.Error().Err(err).Str("user_id", userID).Str("permission", permission).Msg("permission check failed")
			return utils.RespondError(c, err)
		}
		if !ok {
			return forbidden(c, "missing permission "+permission)
		}
		return c.Next()
	}
}

package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/service"
	"github.com/meinhoongagan/carehub/utils"
)

const (
	localUserID = "userID"
	localRole   = "role"
)

// Protected validates the bearer JWT and stores the caller's id and role in locals.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		ErrorHandler:   jwtError,
		SuccessHandler: storeClaims,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	msg := "invalid or expired token"
	if err.Error() == "Missing or malformed JWT" {
		msg = "missing or malformed token"
	}
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{Error: "UNAUTHORIZED", Message: msg})
}

func storeClaims(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return jwtError(c, fiber.ErrUnauthorized)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwtError(c, fiber.ErrUnauthorized)
	}
	id, _ := claims["id"].(string)
	role, _ := claims["role"].(string)
	if id == "" || !models.Role(role).Valid() {
		return jwtError(c, fiber.ErrUnauthorized)
	}

	c.Locals(localUserID, id)
	c.Locals(localRole, models.Role(role))
	return c.Next()
}

// IssueToken signs an HS256 token carrying the user id and role.
func IssueToken(secret string, ttl time.Duration, user *models.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// UserID returns the authenticated user's id, or "" outside Protected routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

func Role(c *fiber.Ctx) models.Role {
	role, _ := c.Locals(localRole).(models.Role)
	return role
}

// Actor is the caller as the service layer sees it.
func Actor(c *fiber.Ctx) service.Actor {
	return service.Actor{UserID: UserID(c), Role: Role(c)}
}

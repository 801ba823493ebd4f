package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/apperr"
)

const DateLayout = "2006-01-02"

// QueryDate parses an optional YYYY-MM-DD query parameter as a UTC midnight.
func QueryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return nil, apperr.BadRequest("%s must be a date in YYYY-MM-DD form", key)
	}
	return &t, nil
}

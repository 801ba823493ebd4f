package middleware

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/utils"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request under key may pass.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LocalLimiter is an in-process token bucket per key.
type LocalLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
}

func NewLocalLimiter(rps float64, burst int) *LocalLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &LocalLimiter{rps: rate.Limit(rps), burst: burst}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	v, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rps, l.burst))
	return v.(*rate.Limiter).Allow(), nil
}

// RateLimit rejects callers over their budget with 429. Limiter errors let
// the request through.
func RateLimit(limiter Limiter, logger *zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := limiter.Allow(c.UserContext(), c.IP())
		if err != nil {
			logger.Warn().Err(err).Str("ip", c.IP()).Msg("rate limiter unavailable")
			return c.Next()
		}
		if !ok {
			return c.Status(fiber.StatusTooManyRequests).JSON(utils.ErrorResponse{Error: "RATE_LIMITED", Message: "too many requests"})
		}
		return c.Next()
	}
}

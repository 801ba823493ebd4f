package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/meinhoongagan/carehub/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewClient connects to redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig, log *zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := Ping(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Info().Str("address", cfg.Address).Msg("connected to redis")
	return client, nil
}

// Ping checks that redis answers.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// RateLimiter is a fixed-window request counter shared by every API instance.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: int64(limit), window: window, prefix: "ratelimit"}
}

// windowScript increments the counter and gives it a TTL whenever it has none,
// so a counter can never outlive its window.
var windowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Allow counts one request for key and reports whether it fits in the current window.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	counterKey := fmt.Sprintf("%s:%s", l.prefix, key)

	count, err := windowScript.Run(ctx, l.client, []string{counterKey}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("count request: %w", err)
	}
	return count <= l.limit, nil
}

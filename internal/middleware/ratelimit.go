package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what a per-route limit does when the counter store cannot be reached.
type FailPolicy int

const (
	// FailOpen serves the request without counting it.
	FailOpen FailPolicy = iota
	// FailClosed answers 503 until the store is back.
	FailClosed
)

var errNoLimitStore = errors.New("rate limit store not configured")

// CheckRateLimit counts one hit of policy for id and reports whether it is
// still within limit for the current window. Outside production-like
// environments (APP_ENV test or development) every hit is allowed.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, policy, id string, limit int, window time.Duration) (bool, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	switch env {
	case "test", "development":
		return true, nil
	}

	if rdb == nil {
		return false, errNoLimitStore
	}

	key := fmt.Sprintf("rl:%s:%s", policy, id)

	// The first hit opens the window.
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// RateLimit guards a route such as post creation or movie search with a
// fixed-window counter. Callers are counted by JWT subject when the auth
// middleware set one, else by client IP. The optional name selects the
// counter (create_post, movie_search, ...); the request path is used otherwise.
// A store outage lets requests through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit outage policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		caller := "ip:" + c.IP()
		if uid, ok := UserID(c); ok {
			caller = "user:" + uid
		}

		counter := c.Path()
		if len(name) > 0 {
			counter = name[0]
		}

		allowed, err := CheckRateLimit(ctx, rdb, counter, caller, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(ctx, "rate limit store unavailable, rejecting request",
					slog.String("policy", counter),
					slog.String("path", c.Path()),
					slog.Any("error", err),
				)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			Logger.DebugContext(ctx, "rate limit store unavailable, allowing request",
				slog.String("policy", counter),
				slog.Any("error", err),
			)
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}

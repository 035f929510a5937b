// Package redisclient owns the process-wide Redis connection used for rate
// limiting and readiness checks.
package redisclient

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reelsocial/internal/middleware"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// Options parses addr, which may be a bare host:port or a redis:// URL.
func Options(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// InitRedis connects to addr. An unreachable or misconfigured Redis leaves
// the client nil; callers treat that as "rate limiting unavailable".
func InitRedis(addr string) *redis.Client {
	opts, err := Options(addr)
	if err != nil {
		middleware.Logger.Warn("Redis disabled: invalid REDIS_URL", slog.String("error", err.Error()))
		client = nil
		return nil
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis unreachable, continuing without it", slog.String("error", err.Error()))
		_ = c.Close()
		client = nil
		return nil
	}

	middleware.Logger.Info("Redis connected successfully")
	client = c
	return client
}

// GetClient returns the current Redis client instance, or nil.
func GetClient() *redis.Client {
	return client
}

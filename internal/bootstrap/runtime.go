// Package bootstrap wires the storage and cache dependencies shared by the
// server and the command-line tools.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"reelsocial/internal/config"
	"reelsocial/internal/database"
	"reelsocial/internal/featureflags"
	"reelsocial/internal/middleware"
	"reelsocial/internal/redisclient"
	"reelsocial/internal/repository"
	"reelsocial/internal/seed"
	"reelsocial/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty store with demo posts.
	SeedDemo    bool
	SeedOptions seed.Options
	// SkipRedis leaves Runtime.Redis nil; used by tools that never rate limit.
	SkipRedis bool
}

// Runtime holds the opened dependencies and how to release them.
type Runtime struct {
	PostRepo repository.PostRepository
	Redis    *redis.Client
	// DB is set when the relational store is in use.
	DB      *gorm.DB
	closers []func(context.Context) error
}

// Close releases every dependency opened by InitRuntime.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InitRuntime opens the configured post store and Redis, and optionally
// seeds demo data.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{}

	if err := rt.openPostStore(ctx, cfg); err != nil {
		return nil, err
	}

	// Redis is optional: InitRedis returns nil when unreachable and rate
	// limiting fails open.
	if !opts.SkipRedis {
		rt.Redis = redisclient.InitRedis(cfg.RedisURL)
		if rt.Redis != nil {
			rdb := rt.Redis
			rt.closers = append(rt.closers, func(context.Context) error { return rdb.Close() })
		}
	}

	if opts.SeedDemo {
		if err := seedIfEmpty(ctx, cfg, rt.PostRepo, opts.SeedOptions); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return rt, nil
}

func (r *Runtime) openPostStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return fmt.Errorf("mongo connection failed: %w", err)
		}
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return fmt.Errorf("failed to ensure mongo indexes: %w", err)
		}
		r.PostRepo = repository.NewMongoPostRepository(db)
		r.closers = append(r.closers, client.Disconnect)
		middleware.Logger.Info("post store ready", "driver", config.StoreDriverMongo, "database", cfg.MongoDatabase)
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		r.DB = db
		r.PostRepo = repository.NewPostRepository(db)
		r.closers = append(r.closers, func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		middleware.Logger.Info("post store ready", "driver", config.StoreDriverPostgres, "database", cfg.DBName)
	}
	return nil
}

func seedIfEmpty(ctx context.Context, cfg *config.Config, repo repository.PostRepository, opts seed.Options) error {
	limit := 1
	existing, err := repo.List(ctx, repository.ListOptions{Limit: &limit, IncludeHidden: true})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		middleware.Logger.Info("store already has posts, skipping demo seed")
		return nil
	}
	if opts.NumUsers == 0 {
		opts = seed.DefaultOptions
	}
	svc := service.NewPostService(repo, featureflags.NewManager(cfg.FeatureFlags))
	res, err := seed.Seed(ctx, svc, opts)
	if err != nil {
		return err
	}
	middleware.Logger.Info("demo data seeded", "posts", len(res.Posts), "views", res.Views, "likes", res.Likes)
	return nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"reelsocial/internal/config"
	"reelsocial/internal/middleware"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo opens the document store selected by STORE_DRIVER=mongo and
// verifies it with a ping against the primary.
func ConnectMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetAppName("reelsocial")
	if cfg.DBMaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.DBMaxOpenConns))
	}

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	middleware.Logger.Info("MongoDB connected successfully")
	return client, client.Database(cfg.MongoDatabase), nil
}

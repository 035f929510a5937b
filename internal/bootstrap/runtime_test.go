package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"reelsocial/internal/config"
	"reelsocial/internal/models"
	"reelsocial/internal/repository"
	"reelsocial/internal/seed"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sqliteRepo(t *testing.T) repository.PostRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Post{}, &models.PostLike{}))
	return repository.NewPostRepository(db)
}

func TestRuntimeClose_ReverseOrderAndJoin(t *testing.T) {
	var order []int
	rt := &Runtime{closers: []func(context.Context) error{
		func(context.Context) error { order = append(order, 1); return errors.New("first") },
		func(context.Context) error { order = append(order, 2); return nil },
		func(context.Context) error { order = append(order, 3); return errors.New("third") },
	}}

	err := rt.Close(context.Background())
	require.Error(t, err)
	assert.Equal(t, []int{3, 2, 1}, order)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "third")
}

func TestSeedIfEmpty(t *testing.T) {
	repo := sqliteRepo(t)
	ctx := context.Background()
	cfg := &config.Config{}
	opts := seed.Options{NumUsers: 2, NumPosts: 3, NumMoviePosts: 1, MaxViews: 1, MaxLikes: 1, Seed: 5}

	require.NoError(t, seedIfEmpty(ctx, cfg, repo, opts))
	posts, err := repo.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, posts, 4)

	// A second run leaves the populated store alone.
	require.NoError(t, seedIfEmpty(ctx, cfg, repo, opts))
	posts, err = repo.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, posts, 4)
}

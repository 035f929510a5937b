package seed

import (
	"context"
	"fmt"
	"testing"

	"reelsocial/internal/featureflags"
	"reelsocial/internal/models"
	"reelsocial/internal/repository"
	"reelsocial/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newService(t *testing.T) *service.PostService {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Post{}, &models.PostLike{}))
	return service.NewPostService(repository.NewPostRepository(db), featureflags.NewManager(""))
}

func TestFactory_Deterministic(t *testing.T) {
	a := NewFactory(42)
	b := NewFactory(42)

	assert.Equal(t, a.UserIDs(5), b.UserIDs(5))
	assert.Equal(t, a.StandardPost("u1"), b.StandardPost("u1"))
	assert.Equal(t, a.MoviePost("u1").ResourceID, b.MoviePost("u1").ResourceID)
}

func TestFactory_UserIDsDistinct(t *testing.T) {
	ids := NewFactory(7).UserIDs(50)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate user id %s", id)
		seen[id] = true
	}
	assert.Len(t, ids, 50)
}

func TestFactory_StandardPostIsValid(t *testing.T) {
	f := NewFactory(1)
	for i := 0; i < 20; i++ {
		in := f.StandardPost("u1")
		assert.NotEmpty(t, in.Title)
		assert.NotEmpty(t, in.Content)
		assert.Equal(t, "u1", in.Author)
	}
}

func TestSeed(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	res, err := Seed(ctx, svc, Options{NumUsers: 4, NumPosts: 6, NumMoviePosts: 3, MaxViews: 3, MaxLikes: 10, Seed: 99})
	require.NoError(t, err)
	assert.Len(t, res.Users, 4)
	require.Len(t, res.Posts, 9)

	posts, err := svc.ListPosts(ctx, service.ListPostsInput{})
	require.NoError(t, err)
	assert.Len(t, posts, 9)

	var views, likes int
	for _, p := range posts {
		views += int(p.ViewCount)
		likes += len(p.Like)
		assert.LessOrEqual(t, len(p.Like), 4)
	}
	assert.Equal(t, res.Views, views)
	assert.Equal(t, res.Likes, likes)
}

func TestSeed_RequiresUsers(t *testing.T) {
	_, err := Seed(context.Background(), newService(t), Options{NumPosts: 1})
	assert.Error(t, err)
}

package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"reelsocial/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Post{}, &models.PostLike{}))
	return db
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func newPost(author, title string, created time.Time) *models.Post {
	return &models.Post{
		ID:          uuid.NewString(),
		Author:      strPtr(author),
		Title:       title,
		Content:     title + " body",
		PostType:    models.PostTypeStandard,
		Visible:     true,
		CreatedTime: created,
	}
}

func seedPosts(t *testing.T, repo PostRepository, posts ...*models.Post) {
	t.Helper()
	for _, p := range posts {
		require.NoError(t, repo.Create(context.Background(), p))
	}
}

func titles(posts []*models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestPostRepository_CreateAndGet(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	ctx := context.Background()

	post := newPost("u1", "Hello", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, post))
	assert.NotZero(t, post.Seq)
	assert.Equal(t, []string{}, post.Like)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, "u1", *got.Author)
	assert.Equal(t, "Hello", got.Title)
	assert.True(t, got.Visible)
	assert.Empty(t, got.Like)
	assert.WithinDuration(t, post.CreatedTime, got.CreatedTime, time.Second)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepository_UpdateByAuthor(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	ctx := context.Background()

	post := newPost("u1", "A", time.Now().UTC())
	seedPosts(t, repo, post)

	now := time.Now().UTC()
	updated, err := repo.UpdateByAuthor(ctx, post.ID, "u1", models.PostUpdate{
		Title: "A2", Content: "c2", Hashtag: "#x", UpdatedTime: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Title)
	assert.Equal(t, "c2", updated.Content)
	assert.Equal(t, "#x", updated.Hashtag)
	assert.Equal(t, "", updated.BgImg)
	require.NotNil(t, updated.UpdatedTime)
	assert.WithinDuration(t, now, *updated.UpdatedTime, time.Second)
	assert.Equal(t, "u1", *updated.Author)

	t.Run("omitted hashtag and background keep stored values", func(t *testing.T) {
		_, err := repo.UpdateByAuthor(ctx, post.ID, "u1", models.PostUpdate{
			BgImg: "bg.png", Title: "A2", Content: "c2", UpdatedTime: now,
		})
		require.NoError(t, err)

		got, err := repo.UpdateByAuthor(ctx, post.ID, "u1", models.PostUpdate{
			Title: "A3", Content: "c3", UpdatedTime: now,
		})
		require.NoError(t, err)
		assert.Equal(t, "A3", got.Title)
		assert.Equal(t, "c3", got.Content)
		assert.Equal(t, "#x", got.Hashtag)
		assert.Equal(t, "bg.png", got.BgImg)
	})

	t.Run("other user matches nothing", func(t *testing.T) {
		_, err := repo.UpdateByAuthor(ctx, post.ID, "u2", models.PostUpdate{Title: "X", Content: "Y"})
		assert.ErrorIs(t, err, ErrNoMatch)

		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "A3", got.Title)
	})

	t.Run("missing post matches nothing", func(t *testing.T) {
		_, err := repo.UpdateByAuthor(ctx, "nope", "u1", models.PostUpdate{Title: "X", Content: "Y"})
		assert.ErrorIs(t, err, ErrNoMatch)
	})
}

func TestPostRepository_IncrementViews(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	ctx := context.Background()

	post := newPost("u1", "A", time.Now().UTC())
	seedPosts(t, repo, post)

	got, err := repo.IncrementViews(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ViewCount)

	got, err = repo.IncrementViews(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewCount)

	_, err = repo.IncrementViews(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepository_IncrementViews_Concurrent(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	ctx := context.Background()

	post := newPost("u1", "A", time.Now().UTC())
	seedPosts(t, repo, post)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementViews(ctx, post.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.ViewCount)
}

func TestPostRepository_SetVisibility(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	ctx := context.Background()

	post := newPost("u1", "A", time.Now().UTC())
	seedPosts(t, repo, post)

	t.Run("ungated", func(t *testing.T) {
		require.NoError(t, repo.SetVisibility(ctx, post.ID, nil, false))
		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.False(t, got.Visible)

		// Repeating the write is harmless.
		require.NoError(t, repo.SetVisibility(ctx, post.ID, nil, false))
	})

	t.Run("gated by author", func(t *testing.T) {
		assert.ErrorIs(t, repo.SetVisibility(ctx, post.ID, strPtr("u2"), true), ErrNoMatch)
		require.NoError(t, repo.SetVisibility(ctx, post.ID, strPtr("u1"), true))
	})

	t.Run("missing post", func(t *testing.T) {
		assert.ErrorIs(t, repo.SetVisibility(ctx, "missing", nil, false), ErrNotFound)
		assert.ErrorIs(t, repo.SetVisibility(ctx, "missing", strPtr("u1"), false), ErrNotFound)
	})
}

func TestPostRepository_List(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := newPost("u1", "A", base.Add(2*time.Hour))
	b := newPost("u1", "B", base)
	c := newPost("u2", "C", base.Add(1*time.Hour))
	d := newPost("u2", "D", base.Add(3*time.Hour))
	seedPosts(t, repo, a, b, c, d)

	for i := 0; i < 5; i++ {
		_, err := repo.IncrementViews(ctx, a.ID)
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := repo.IncrementViews(ctx, b.ID)
		require.NoError(t, err)
		_, err = repo.IncrementViews(ctx, c.ID)
		require.NoError(t, err)
	}
	require.NoError(t, repo.SetVisibility(ctx, d.ID, nil, false))

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{"insertion order", ListOptions{}, []string{"A", "B", "C"}},
		{"views desc with ties in insertion order", ListOptions{SortBy: SortByViews}, []string{"A", "B", "C"}},
		{"views top two", ListOptions{SortBy: SortByViews, Limit: intPtr(2)}, []string{"A", "B"}},
		{"created desc", ListOptions{SortBy: SortByCreatedTime}, []string{"A", "C", "B"}},
		{"limit zero", ListOptions{SortBy: SortByCreatedTime, Limit: intPtr(0)}, []string{}},
		{"negative limit", ListOptions{Limit: intPtr(-1)}, []string{"A", "B", "C"}},
		{"limit beyond size", ListOptions{Limit: intPtr(10)}, []string{"A", "B", "C"}},
		{"include hidden", ListOptions{IncludeHidden: true}, []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := repo.List(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(posts))
		})
	}

	t.Run("unknown sort", func(t *testing.T) {
		_, err := repo.List(ctx, ListOptions{SortBy: "likes"})
		assert.ErrorIs(t, err, ErrInvalidSort)
	})
}

func TestPostRepository_Likes(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	ctx := context.Background()

	post := newPost("u1", "A", time.Now().UTC())
	seedPosts(t, repo, post)

	require.NoError(t, repo.AddLike(ctx, post.ID, "u2"))
	require.NoError(t, repo.AddLike(ctx, post.ID, "u3"))
	require.NoError(t, repo.AddLike(ctx, post.ID, "u2"))

	likes, err := repo.Likes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, likes)

	liked, err := repo.HasLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	assert.True(t, liked)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, got.Like)

	require.NoError(t, repo.RemoveLike(ctx, post.ID, "u2"))
	require.NoError(t, repo.RemoveLike(ctx, post.ID, "nobody"))

	likes, err = repo.Likes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, likes)

	liked, err = repo.HasLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	assert.False(t, liked)

	t.Run("missing post", func(t *testing.T) {
		assert.ErrorIs(t, repo.AddLike(ctx, "missing", "u1"), ErrNotFound)
		assert.ErrorIs(t, repo.RemoveLike(ctx, "missing", "u1"), ErrNotFound)
		_, err := repo.Likes(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		liked, err := repo.HasLike(ctx, "missing", "u1")
		require.NoError(t, err)
		assert.False(t, liked)
	})
}

func TestPostRepository_ListHydratesLikes(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	ctx := context.Background()

	a := newPost("u1", "A", time.Now().UTC())
	b := newPost("u1", "B", time.Now().UTC())
	seedPosts(t, repo, a, b)
	require.NoError(t, repo.AddLike(ctx, b.ID, "u9"))

	posts, err := repo.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, []string{}, posts[0].Like)
	assert.Equal(t, []string{"u9"}, posts[1].Like)
}

func TestPostRepository_Ping(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	assert.NoError(t, repo.Ping(context.Background()))
}

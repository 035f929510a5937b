package seed

import (
	"context"
	"errors"
	"fmt"

	"reelsocial/internal/models"
	"reelsocial/internal/service"
)

// Options configures a seeding run.
type Options struct {
	NumUsers      int
	NumPosts      int
	NumMoviePosts int
	// MaxViews and MaxLikes bound the engagement generated per post.
	MaxViews int
	MaxLikes int
	// Seed fixes the fake data sequence; 0 is random.
	Seed int64
}

// DefaultOptions is used by cmd/seed when no flags are given.
var DefaultOptions = Options{
	NumUsers:      10,
	NumPosts:      40,
	NumMoviePosts: 15,
	MaxViews:      50,
	MaxLikes:      8,
}

// Result reports what a seeding run created.
type Result struct {
	Users []string
	Posts []*models.Post
	Views int
	Likes int
}

// Seed creates users' posts and engagement through the post service, so it
// works against any configured store.
func Seed(ctx context.Context, svc *service.PostService, opts Options) (*Result, error) {
	if opts.NumUsers <= 0 {
		return nil, errors.New("seed needs at least one user")
	}
	f := NewFactory(opts.Seed)
	res := &Result{Users: f.UserIDs(opts.NumUsers)}

	for i := 0; i < opts.NumPosts; i++ {
		post, err := svc.CreateStandardPost(ctx, f.StandardPost(f.Pick(res.Users)))
		if err != nil {
			return res, fmt.Errorf("create post %d: %w", i, err)
		}
		res.Posts = append(res.Posts, post)
	}
	for i := 0; i < opts.NumMoviePosts; i++ {
		post, err := svc.CreateMoviePost(ctx, f.MoviePost(f.Pick(res.Users)))
		if err != nil {
			return res, fmt.Errorf("create movie post %d: %w", i, err)
		}
		res.Posts = append(res.Posts, post)
	}

	for _, post := range res.Posts {
		views := f.IntRange(0, opts.MaxViews)
		for v := 0; v < views; v++ {
			if _, err := svc.RecordView(ctx, post.ID); err != nil {
				return res, fmt.Errorf("record view on %s: %w", post.ID, err)
			}
		}
		res.Views += views

		likes := f.IntRange(0, min(opts.MaxLikes, len(res.Users)))
		for l := 0; l < likes; l++ {
			if err := svc.LikePost(ctx, post.ID, res.Users[l]); err != nil {
				return res, fmt.Errorf("like %s: %w", post.ID, err)
			}
		}
		res.Likes += likes
	}

	return res, nil
}

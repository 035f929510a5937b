// Package service implements the post lifecycle and engagement rules on top
// of a repository.PostRepository.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"reelsocial/internal/featureflags"
	"reelsocial/internal/models"
	"reelsocial/internal/observability"
	"reelsocial/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const postServiceName = "PostService"

// FlagStrictDeleteOwnership restricts SoftDelete to the post's author.
const FlagStrictDeleteOwnership = "strict_delete_ownership"

type PostService struct {
	postRepo repository.PostRepository
	flags    *featureflags.Manager
	logger   *observability.StructuredLogger
	now      func() time.Time
	newID    func() string
}

type CreatePostInput struct {
	Title   string
	Content string
	Author  string
	Hashtag string
	BgImg   string
}

type CreateMoviePostInput struct {
	ResourceID string
	Author     *string
}

type UpdatePostInput struct {
	PostID  string
	Author  string
	Title   string
	Content string
	Hashtag string
	BgImg   string
}

type DeletePostInput struct {
	PostID string
	UserID string
}

type ListPostsInput struct {
	SortBy string
	// Limit truncates the listing; nil or negative returns every post.
	Limit *int
}

func NewPostService(postRepo repository.PostRepository, flags *featureflags.Manager) *PostService {
	return &PostService{
		postRepo: postRepo,
		flags:    flags,
		logger:   observability.NewStructuredLogger(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (s *PostService) begin(ctx context.Context, method string, attrs ...attribute.KeyValue) (context.Context, *observability.Span) {
	span, ctx := observability.NewSpan(ctx, postServiceName+"."+method)
	span.AddAttributes(attrs...)
	s.logger.LogServiceCall(ctx, postServiceName, method, nil)
	return ctx, span
}

func (s *PostService) finish(ctx context.Context, span *observability.Span, method string, err error) {
	defer span.End()
	if err == nil {
		return
	}
	span.SetError(err)
	switch models.ErrorCode(err) {
	case models.CodeValidation, models.CodeUnauthorized, models.CodeNotFound:
	default:
		s.logger.LogServiceError(ctx, postServiceName, method, err)
	}
}

// storeError translates a repository error into the API taxonomy.
func storeError(err error, postID string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return models.NewNotFoundError("Post", postID)
	case errors.Is(err, repository.ErrInvalidSort):
		return models.NewValidationError("Invalid sortBy")
	default:
		return models.NewStorageError(err)
	}
}

func (s *PostService) CreateStandardPost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := s.begin(ctx, "CreateStandardPost")
	defer func() { s.finish(ctx, span, "CreateStandardPost", err) }()

	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}

	post = &models.Post{
		ID:          s.newID(),
		Title:       in.Title,
		Content:     in.Content,
		Hashtag:     in.Hashtag,
		BgImg:       in.BgImg,
		PostType:    models.PostTypeStandard,
		Like:        []string{},
		Visible:     true,
		CreatedTime: s.now(),
	}
	if in.Author != "" {
		author := in.Author
		post.Author = &author
	}

	if err := s.postRepo.Create(context.WithoutCancel(ctx), post); err != nil {
		return nil, storeError(err, post.ID)
	}
	observability.PostsCreatedTotal.WithLabelValues(string(models.PostTypeStandard)).Inc()
	return post, nil
}

func (s *PostService) CreateMoviePost(ctx context.Context, in CreateMoviePostInput) (post *models.Post, err error) {
	ctx, span := s.begin(ctx, "CreateMoviePost", attribute.String("resource.id", in.ResourceID))
	defer func() { s.finish(ctx, span, "CreateMoviePost", err) }()

	if strings.TrimSpace(in.ResourceID) == "" {
		return nil, models.NewValidationError("resourceId is required")
	}

	post = &models.Post{
		ID:          s.newID(),
		Author:      in.Author,
		ResourceID:  in.ResourceID,
		PostType:    models.PostTypeMovie,
		Like:        []string{},
		Visible:     true,
		CreatedTime: s.now(),
	}
	if err := s.postRepo.Create(context.WithoutCancel(ctx), post); err != nil {
		return nil, storeError(err, post.ID)
	}
	observability.PostsCreatedTotal.WithLabelValues(string(models.PostTypeMovie)).Inc()
	return post, nil
}

// UpdatePost rewrites the editable fields of a post. The author check and the
// write are one conditional update, so a missing post and a post owned by
// someone else both report Unauthorized.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (post *models.Post, err error) {
	ctx, span := s.begin(ctx, "UpdatePost", attribute.String("post.id", in.PostID))
	defer func() { s.finish(ctx, span, "UpdatePost", err) }()

	if in.PostID == "" {
		return nil, models.NewValidationError("Post id is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if in.Author == "" {
		return nil, models.NewUnauthorizedError("Only author can update post!")
	}

	post, err = s.postRepo.UpdateByAuthor(context.WithoutCancel(ctx), in.PostID, in.Author, models.PostUpdate{
		Title:       in.Title,
		Content:     in.Content,
		Hashtag:     in.Hashtag,
		BgImg:       in.BgImg,
		UpdatedTime: s.now(),
	})
	if errors.Is(err, repository.ErrNoMatch) {
		return nil, models.NewUnauthorizedError("Only author can update post!")
	}
	if err != nil {
		return nil, storeError(err, in.PostID)
	}
	return post, nil
}

// RecordView counts one view and returns the post as of that increment.
func (s *PostService) RecordView(ctx context.Context, postID string) (post *models.Post, err error) {
	ctx, span := s.begin(ctx, "RecordView", attribute.String("post.id", postID))
	defer func() { s.finish(ctx, span, "RecordView", err) }()

	if postID == "" {
		return nil, models.NewNotFoundError("Post", postID)
	}
	post, err = s.postRepo.IncrementViews(context.WithoutCancel(ctx), postID)
	if err != nil {
		return nil, storeError(err, postID)
	}
	observability.RecordEngagement(observability.EngagementView)
	return post, nil
}

// GetPost reads a post without counting a view. Hidden posts are returned.
func (s *PostService) GetPost(ctx context.Context, postID string) (post *models.Post, err error) {
	ctx, span := s.begin(ctx, "GetPost", attribute.String("post.id", postID))
	defer func() { s.finish(ctx, span, "GetPost", err) }()

	post, err = s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, storeError(err, postID)
	}
	return post, nil
}

// SoftDelete hides a post from listings. With FlagStrictDeleteOwnership
// enabled for the caller only the author may hide it.
func (s *PostService) SoftDelete(ctx context.Context, in DeletePostInput) (err error) {
	ctx, span := s.begin(ctx, "SoftDelete", attribute.String("post.id", in.PostID))
	defer func() { s.finish(ctx, span, "SoftDelete", err) }()

	if in.PostID == "" {
		return models.NewNotFoundError("Post", in.PostID)
	}

	var author *string
	if s.flags.Enabled(FlagStrictDeleteOwnership, in.UserID) {
		if in.UserID == "" {
			return models.NewUnauthorizedError("Only author can delete post!")
		}
		author = &in.UserID
	}

	err = s.postRepo.SetVisibility(context.WithoutCancel(ctx), in.PostID, author, false)
	if errors.Is(err, repository.ErrNoMatch) {
		return models.NewUnauthorizedError("Only author can delete post!")
	}
	if err != nil {
		return storeError(err, in.PostID)
	}
	return nil
}

// ListPosts returns visible posts. An empty SortBy keeps insertion order and
// ignores Limit.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (posts []*models.Post, err error) {
	ctx, span := s.begin(ctx, "ListPosts", attribute.String("sort_by", in.SortBy))
	defer func() { s.finish(ctx, span, "ListPosts", err) }()

	if !repository.ValidSort(in.SortBy) {
		return nil, models.NewValidationError("Invalid sortBy")
	}
	limit := in.Limit
	// Only sorted listings are truncated; storage order always returns every post.
	if in.SortBy == repository.SortByInsertion {
		limit = nil
	}
	if limit != nil && *limit == 0 {
		return []*models.Post{}, nil
	}

	posts, err = s.postRepo.List(ctx, repository.ListOptions{
		SortBy: in.SortBy,
		Limit:  limit,
	})
	if err != nil {
		return nil, storeError(err, "")
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

// LikePost adds userID to the like set; liking twice is a no-op.
func (s *PostService) LikePost(ctx context.Context, postID, userID string) (err error) {
	ctx, span := s.begin(ctx, "LikePost", attribute.String("post.id", postID))
	defer func() { s.finish(ctx, span, "LikePost", err) }()

	if strings.TrimSpace(userID) == "" {
		return models.NewValidationError("userId is required")
	}
	if err := s.postRepo.AddLike(context.WithoutCancel(ctx), postID, userID); err != nil {
		return storeError(err, postID)
	}
	observability.RecordEngagement(observability.EngagementLike)
	return nil
}

// UnlikePost removes userID from the like set. Removing an absent member
// succeeds.
func (s *PostService) UnlikePost(ctx context.Context, postID, userID string) (err error) {
	ctx, span := s.begin(ctx, "UnlikePost", attribute.String("post.id", postID))
	defer func() { s.finish(ctx, span, "UnlikePost", err) }()

	if err := s.postRepo.RemoveLike(context.WithoutCancel(ctx), postID, userID); err != nil {
		return storeError(err, postID)
	}
	observability.RecordEngagement(observability.EngagementUnlike)
	return nil
}

// CheckLike reports whether userID likes the post. A missing post has no
// likes, so it reports false rather than NotFound.
func (s *PostService) CheckLike(ctx context.Context, postID, userID string) (liked bool, err error) {
	ctx, span := s.begin(ctx, "CheckLike", attribute.String("post.id", postID))
	defer func() { s.finish(ctx, span, "CheckLike", err) }()

	liked, err = s.postRepo.HasLike(ctx, postID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeError(err, postID)
	}
	return liked, nil
}

// GetLikes returns the like set in the order members were added.
func (s *PostService) GetLikes(ctx context.Context, postID string) (likes []string, err error) {
	ctx, span := s.begin(ctx, "GetLikes", attribute.String("post.id", postID))
	defer func() { s.finish(ctx, span, "GetLikes", err) }()

	likes, err = s.postRepo.Likes(ctx, postID)
	if err != nil {
		return nil, storeError(err, postID)
	}
	if likes == nil {
		likes = []string{}
	}
	return likes, nil
}

// Ping reports whether the post store is reachable.
func (s *PostService) Ping(ctx context.Context) error {
	return s.postRepo.Ping(ctx)
}

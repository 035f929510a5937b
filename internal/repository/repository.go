// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"reelsocial/internal/models"
)

var (
	// ErrNotFound is returned when no post has the requested id.
	ErrNotFound = errors.New("post not found")
	// ErrNoMatch is returned when an author-gated write matched no post.
	ErrNoMatch = errors.New("no post matches id and author")
	// ErrInvalidSort is returned for an unsupported ListOptions.SortBy.
	ErrInvalidSort = errors.New("unsupported sort field")
)

// Sort fields accepted by List.
const (
	SortByInsertion   = ""
	SortByViews       = "views"
	SortByCreatedTime = "createdTime"
)

// ListOptions controls List ordering, truncation and visibility.
type ListOptions struct {
	SortBy string
	// Limit truncates the result; nil or negative means no truncation.
	Limit         *int
	IncludeHidden bool
}

// PostRepository defines the interface for post data operations.
// Every mutation is a single atomic store operation.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	UpdateByAuthor(ctx context.Context, id, author string, update models.PostUpdate) (*models.Post, error)
	IncrementViews(ctx context.Context, id string) (*models.Post, error)
	// SetVisibility changes the visible flag. A non-nil author restricts the
	// write to posts created by that user.
	SetVisibility(ctx context.Context, id string, author *string, visible bool) error
	List(ctx context.Context, opts ListOptions) ([]*models.Post, error)
	AddLike(ctx context.Context, id, userID string) error
	RemoveLike(ctx context.Context, id, userID string) error
	HasLike(ctx context.Context, id, userID string) (bool, error)
	Likes(ctx context.Context, id string) ([]string, error)
	Ping(ctx context.Context) error
}

// ValidSort reports whether sortBy is accepted by List.
func ValidSort(sortBy string) bool {
	switch sortBy {
	case SortByInsertion, SortByViews, SortByCreatedTime:
		return true
	}
	return false
}

// limitOf returns the truncation size and whether truncation applies.
func (o ListOptions) limitOf() (int, bool) {
	if o.Limit == nil || *o.Limit < 0 {
		return 0, false
	}
	return *o.Limit, true
}

// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// PostType discriminates free-form posts from movie-anchored stubs.
type PostType string

const (
	PostTypeStandard PostType = "standard"
	PostTypeMovie    PostType = "moviePost"
)

// Post is a user-authored note or a stub anchored to a catalog movie.
type Post struct {
	// Seq is the storage sequence; it defines insertion order for listings.
	Seq        uint     `gorm:"primaryKey" json:"-" bson:"-"`
	ID         string   `gorm:"size:36;not null;uniqueIndex" json:"id" bson:"_id"`
	Author     *string  `gorm:"index" json:"author,omitempty" bson:"author,omitempty"`
	Title      string   `json:"title,omitempty" bson:"title,omitempty"`
	Content    string   `gorm:"type:text" json:"content,omitempty" bson:"content,omitempty"`
	Hashtag    string   `json:"hashtag,omitempty" bson:"hashtag,omitempty"`
	BgImg      string   `json:"bgImg,omitempty" bson:"bgImg,omitempty"`
	ResourceID string   `gorm:"index" json:"resourceId,omitempty" bson:"resourceId,omitempty"`
	PostType   PostType `gorm:"size:16;not null" json:"postType" bson:"postType"`
	// Like is hydrated from post_likes in the relational store and kept
	// inline as a set in the document store.
	Like        []string   `gorm:"-" json:"like" bson:"like"`
	ViewCount   int64      `gorm:"not null" json:"viewCount" bson:"viewCount"`
	Visible     bool       `gorm:"not null;index" json:"visible" bson:"visible"`
	CreatedTime time.Time  `gorm:"not null;index" json:"createdTime" bson:"createdTime"`
	UpdatedTime *time.Time `json:"updatedTime,omitempty" bson:"updatedTime,omitempty"`
}

// IsAuthoredBy reports whether userID created the post.
func (p *Post) IsAuthoredBy(userID string) bool {
	return p.Author != nil && *p.Author == userID
}

// PostLike is one member of a post's like set.
// The combination of PostID and UserID must be unique.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PostID    string    `gorm:"size:36;not null;uniqueIndex:idx_post_likes_post_user" json:"postId"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_post_likes_post_user" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the database table name for PostLike.
func (PostLike) TableName() string {
	return "post_likes"
}

// PostUpdate carries the author-editable fields of a post.
type PostUpdate struct {
	Title       string
	Content     string
	Hashtag     string
	BgImg       string
	UpdatedTime time.Time
}

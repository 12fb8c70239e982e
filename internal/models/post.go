package models

import (
	"strings"
	"time"
)

// Post is a piece of content published by a user. At least one of Content or
// ImagePath is set.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Content   *string   `gorm:"type:text" json:"content"`
	ImagePath *string   `gorm:"size:512" json:"image_path"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// HasBody reports whether the post carries text or an image.
func (p *Post) HasBody() bool {
	hasText := p.Content != nil && strings.TrimSpace(*p.Content) != ""
	hasImage := p.ImagePath != nil && *p.ImagePath != ""
	return hasText || hasImage
}

// PostView is a post joined with its author and the aggregates computed at
// read time. HasLiked is relative to the viewer the query was scoped to.
type PostView struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	Content      *string   `json:"content"`
	ImagePath    *string   `json:"image_path"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	ProfilePic   *string   `json:"profile_pic"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	HasLiked     bool      `json:"has_liked"`
}

// Page bounds a listing. A zero Limit means unbounded.
type Page struct {
	Limit  int
	Offset int
}

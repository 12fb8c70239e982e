// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	FirstName    string    `gorm:"size:100;not null" json:"first_name"`
	LastName     *string   `gorm:"size:100" json:"last_name"`
	Bio          *string   `gorm:"type:text" json:"bio"`
	ProfilePic   *string   `gorm:"size:512" json:"profile_pic"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserProfile is a user's public fields plus the aggregates computed at read
// time relative to a viewer.
type UserProfile struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"-"`
	FirstName      string    `json:"first_name"`
	LastName       *string   `json:"last_name"`
	Bio            *string   `json:"bio"`
	ProfilePic     *string   `json:"profile_pic"`
	CreatedAt      time.Time `json:"created_at"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	PostCount      int64     `json:"post_count"`
	IsFollowing    bool      `json:"is_following"`
}

// UserSearchResult is a single row of a username search.
type UserSearchResult struct {
	ID          uint    `json:"id"`
	Username    string  `json:"username"`
	ProfilePic  *string `json:"profile_pic"`
	Bio         *string `json:"bio"`
	IsFollowing bool    `json:"is_following"`
}

// UserUpdate carries the optional fields of a profile update. Nil means
// "leave unchanged".
type UserUpdate struct {
	Username   *string
	Bio        *string
	ProfilePic *string
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Bio == nil && u.ProfilePic == nil
}

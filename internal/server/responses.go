package server

import (
	"time"

	"pulse/internal/models"
)

// MessageResponse carries a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusResponse is the payload of GET /api/status.
type StatusResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// UserResponse is the public view of an account row.
type UserResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   *string   `json:"last_name"`
	Bio        *string   `json:"bio"`
	ProfilePic *string   `json:"profile_pic"`
	CreatedAt  time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Bio:        u.Bio,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
	}
}

// ProfileResponse is a profile with its aggregates. Email is only filled in
// for the caller's own profile.
type ProfileResponse struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
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

func newProfileResponse(p *models.UserProfile, own bool) ProfileResponse {
	resp := ProfileResponse{
		ID:             p.ID,
		Username:       p.Username,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Bio:            p.Bio,
		ProfilePic:     p.ProfilePic,
		CreatedAt:      p.CreatedAt,
		FollowerCount:  p.FollowerCount,
		FollowingCount: p.FollowingCount,
		PostCount:      p.PostCount,
		IsFollowing:    p.IsFollowing,
	}
	if own {
		resp.Email = p.Email
	}
	return resp
}

type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type LoginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UpdateProfileResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type FollowResponse struct {
	Message string         `json:"message"`
	Follow  *models.Follow `json:"follow"`
}

type LikeResponse struct {
	Message string       `json:"message"`
	Like    *models.Like `json:"like"`
}

type DeletePostResponse struct {
	Message string       `json:"message"`
	Post    *models.Post `json:"post"`
}

type CommentResponse struct {
	Message string              `json:"message"`
	Comment *models.CommentView `json:"comment"`
}

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Time   time.Time         `json:"time"`
}

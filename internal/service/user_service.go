package service

import (
	"context"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"pulse/internal/auth"
	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"
)

// MaxBioLength bounds a profile bio in characters.
const MaxBioLength = 500

type UserService struct {
	users   repository.UserRepository
	uploads Uploader
}

type UpdateProfileInput struct {
	Username   *string
	Bio        *string
	ProfilePic *multipart.FileHeader
}

func NewUserService(users repository.UserRepository, uploads Uploader) *UserService {
	return &UserService{users: users, uploads: uploads}
}

// GetProfile returns profileID's profile relative to viewerID.
func (s *UserService) GetProfile(ctx context.Context, profileID, viewerID uint) (*models.UserProfile, error) {
	return s.users.Profile(ctx, profileID, viewerID)
}

// SearchUsers matches usernames case-insensitively, excluding the requester.
func (s *UserService) SearchUsers(ctx context.Context, query string, requesterID uint) ([]models.UserSearchResult, error) {
	q, err := validation.NormalizeSearchQuery(query)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.users.Search(ctx, q, requesterID)
}

// UpdateProfile applies the supplied fields. A new picture replaces the old
// one, which is discarded only after the update commits.
func (s *UserService) UpdateProfile(ctx context.Context, id auth.Identity, in UpdateProfileInput) (*models.User, error) {
	if in.Username == nil && in.Bio == nil && in.ProfilePic == nil {
		return nil, models.NewValidationError("No fields provided for update")
	}

	var update models.UserUpdate
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		taken, err := s.users.UsernameTaken(ctx, username, id.UserID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewConflictError("Username already taken")
		}
		update.Username = &username
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if utf8.RuneCountInString(bio) > MaxBioLength {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		update.Bio = &bio
	}

	current, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	if in.ProfilePic != nil {
		path, err := s.uploads.Store(ctx, UploadProfilePic, id.UserID, in.ProfilePic)
		if err != nil {
			return nil, err
		}
		update.ProfilePic = &path
	}

	updated, err := s.users.Update(ctx, id.UserID, update)
	if err != nil {
		if update.ProfilePic != nil {
			s.uploads.Discard(ctx, *update.ProfilePic)
		}
		return nil, err
	}

	if update.ProfilePic != nil && current.ProfilePic != nil && *current.ProfilePic != *update.ProfilePic {
		s.uploads.Discard(ctx, *current.ProfilePic)
	}
	return updated, nil
}

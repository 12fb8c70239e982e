package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pulse/internal/auth"
	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"
)

type AuthService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	tokens auth.Issuer
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  *string
}

type LoginInput struct {
	Identifier string
	Password   string
	RememberMe bool
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher, tokens auth.Issuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)

	var missing []string
	if in.Username == "" {
		missing = append(missing, "username")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if in.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if len(missing) > 0 {
		return nil, models.NewValidationError("Missing required fields: " + strings.Join(missing, ", "))
	}

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	taken, err := s.users.UsernameTaken(ctx, in.Username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("Username already taken")
	}
	taken, err = s.users.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("Email already registered")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
	}
	if in.LastName != nil {
		if last := strings.TrimSpace(*in.LastName); last != "" {
			user.LastName = &last
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login reports the same UNAUTHORIZED error for an unknown identifier and a
// wrong password.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" || in.Password == "" {
		return nil, models.NewValidationError("Username/email and password are required")
	}

	user, err := s.users.FindByLogin(ctx, identifier)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, models.NewInternalError(err)
	}

	token, expiresAt, err := s.tokens.Issue(auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, in.RememberMe)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Me returns the caller's own profile with aggregates.
func (s *AuthService) Me(ctx context.Context, id auth.Identity) (*models.UserProfile, error) {
	return s.users.Profile(ctx, id.UserID, id.UserID)
}

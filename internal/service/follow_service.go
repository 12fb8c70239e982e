package service

import (
	"context"

	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/repository"
)

type FollowService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
}

func NewFollowService(follows repository.FollowRepository, users repository.UserRepository) *FollowService {
	return &FollowService{follows: follows, users: users}
}

func (s *FollowService) Follow(ctx context.Context, followerID, targetID uint) (follow *models.Follow, err error) {
	defer func() { recordOutcome("follow", observability.OutcomeCreated, err) }()

	if followerID == targetID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User", targetID)
	}

	following, err := s.follows.Exists(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}
	if following {
		return nil, models.NewConflictError("Already following this user")
	}

	follow = &models.Follow{FollowerID: followerID, FollowingID: targetID}
	if err := s.follows.Create(ctx, follow); err != nil {
		return nil, err
	}
	return follow, nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID uint) (*models.Follow, error) {
	follow, err := s.follows.Delete(ctx, followerID, targetID)
	recordOutcome("follow", observability.OutcomeRemoved, err)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError("Follow", targetID)
		}
		return nil, err
	}
	return follow, nil
}

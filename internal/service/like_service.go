package service

import (
	"context"

	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/repository"
)

type LikeService struct {
	likes repository.LikeRepository
	posts repository.PostRepository
}

func NewLikeService(likes repository.LikeRepository, posts repository.PostRepository) *LikeService {
	return &LikeService{likes: likes, posts: posts}
}

// AddLike records userID's like on postID. The pre-check is a fast path; a
// unique violation on insert is the authoritative conflict.
func (s *LikeService) AddLike(ctx context.Context, postID, userID uint) (like *models.Like, err error) {
	defer func() { recordOutcome("like", observability.OutcomeCreated, err) }()

	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Post", postID)
	}

	liked, err := s.likes.Exists(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if liked {
		return nil, models.NewConflictError("Post already liked")
	}

	like = &models.Like{UserID: userID, PostID: postID}
	if err := s.likes.Create(ctx, like); err != nil {
		return nil, err
	}
	return like, nil
}

func (s *LikeService) RemoveLike(ctx context.Context, postID, userID uint) (*models.Like, error) {
	like, err := s.likes.Delete(ctx, userID, postID)
	recordOutcome("like", observability.OutcomeRemoved, err)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError("Like", postID)
		}
		return nil, err
	}
	return like, nil
}

package repository

import (
	"context"
	"log/slog"
	"time"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// FollowRepository persists directed follow edges.
type FollowRepository interface {
	Exists(ctx context.Context, followerID, followingID uint) (bool, error)
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
}

type followRepository struct {
	store
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *gorm.DB, timeout time.Duration) FollowRepository {
	return &followRepository{store: newStore(db, timeout, "follows")}
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	var n int64
	err := r.run(ctx, "Exists", func(db *gorm.DB) error {
		return db.Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Count(&n).Error
	})
	if err != nil {
		return false, translateError(err, "Follow", nil)
	}
	return n > 0, nil
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	err := r.run(ctx, "Create", func(db *gorm.DB) error {
		return db.Omit("Follower", "Following").Create(follow).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Already following this user")
		}
		return translateError(err, "User", follow.FollowingID)
	}
	r.log.Changed(ctx, "create",
		slog.Uint64("follower_id", uint64(follow.FollowerID)),
		slog.Uint64("following_id", uint64(follow.FollowingID)),
	)
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.run(ctx, "Delete", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Take(&follow).Error; err != nil {
				return err
			}
			res := tx.Where("id = ?", follow.ID).Delete(&models.Follow{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		})
	})
	if err != nil {
		return nil, translateError(err, "Follow", followingID)
	}
	r.log.Changed(ctx, "delete",
		slog.Uint64("follower_id", uint64(followerID)),
		slog.Uint64("following_id", uint64(followingID)),
	)
	return &follow, nil
}

package repository

import (
	"context"
	"log/slog"
	"time"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// LikeRepository persists likes. The (user_id, post_id) unique index is the
// authority on duplicates.
type LikeRepository interface {
	Exists(ctx context.Context, userID, postID uint) (bool, error)
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, userID, postID uint) (*models.Like, error)
}

type likeRepository struct {
	store
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB, timeout time.Duration) LikeRepository {
	return &likeRepository{store: newStore(db, timeout, "likes")}
}

func (r *likeRepository) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	var n int64
	err := r.run(ctx, "Exists", func(db *gorm.DB) error {
		return db.Model(&models.Like{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&n).Error
	})
	if err != nil {
		return false, translateError(err, "Like", nil)
	}
	return n > 0, nil
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	err := r.run(ctx, "Create", func(db *gorm.DB) error {
		return db.Omit("User", "Post").Create(like).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Post already liked")
		}
		return translateError(err, "Post", like.PostID)
	}
	r.log.Changed(ctx, "create", slog.Uint64("post_id", uint64(like.PostID)), slog.Uint64("user_id", uint64(like.UserID)))
	return nil
}

func (r *likeRepository) Delete(ctx context.Context, userID, postID uint) (*models.Like, error) {
	var like models.Like
	err := r.run(ctx, "Delete", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).Take(&like).Error; err != nil {
				return err
			}
			res := tx.Where("id = ?", like.ID).Delete(&models.Like{})
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
		return nil, translateError(err, "Like", postID)
	}
	r.log.Changed(ctx, "delete", slog.Uint64("post_id", uint64(postID)), slog.Uint64("user_id", uint64(userID)))
	return &like, nil
}

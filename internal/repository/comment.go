package repository

import (
	"context"
	"log/slog"
	"time"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetView(ctx context.Context, id uint) (*models.CommentView, error)
	ListByPost(ctx context.Context, postID uint) ([]models.CommentView, error)
}

type commentRepository struct {
	store
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB, timeout time.Duration) CommentRepository {
	return &commentRepository{store: newStore(db, timeout, "comments")}
}

const commentViewColumns = "comments.id, comments.post_id, comments.user_id, comments.content, " +
	"comments.created_at, users.username, users.profile_pic"

func (r *commentRepository) withAuthor(db *gorm.DB) *gorm.DB {
	return db.Table("comments").
		Select(commentViewColumns).
		Joins("JOIN users ON users.id = comments.user_id")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.run(ctx, "Create", func(db *gorm.DB) error {
		return db.Omit("User", "Post").Create(comment).Error
	})
	if err != nil {
		return translateError(err, "Post", comment.PostID)
	}
	r.log.Changed(ctx, "create", slog.Uint64("comment_id", uint64(comment.ID)), slog.Uint64("post_id", uint64(comment.PostID)))
	return nil
}

func (r *commentRepository) GetView(ctx context.Context, id uint) (*models.CommentView, error) {
	var view models.CommentView
	err := r.run(ctx, "GetView", func(db *gorm.DB) error {
		res := r.withAuthor(db).Where("comments.id = ?", id).Limit(1).Scan(&view)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translateError(err, "Comment", id)
	}
	return &view, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.CommentView, error) {
	views := make([]models.CommentView, 0)
	err := r.run(ctx, "ListByPost", func(db *gorm.DB) error {
		return r.withAuthor(db).
			Where("comments.post_id = ?", postID).
			Order("comments.created_at ASC, comments.id ASC").
			Scan(&views).Error
	})
	if err != nil {
		return nil, translateError(err, "Comment", nil)
	}
	return views, nil
}

package repository

import (
	"context"
	"log/slog"
	"time"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Feed(ctx context.Context, viewerID uint, page models.Page) ([]models.PostView, error)
	GetView(ctx context.Context, postID, viewerID uint) (*models.PostView, error)
	ListByUser(ctx context.Context, userID, viewerID uint, page models.Page) ([]models.PostView, error)
	Create(ctx context.Context, post *models.Post) error
	DeleteOwned(ctx context.Context, postID, userID uint) (*models.Post, error)
	Exists(ctx context.Context, postID uint) (bool, error)
}

type postRepository struct {
	store
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB, timeout time.Duration) PostRepository {
	return &postRepository{store: newStore(db, timeout, "posts")}
}

// postViewColumns projects a post with its author and aggregates. The single
// bind parameter is the viewer id; 0 never matches a like row.
const postViewColumns = "posts.id, posts.user_id, posts.content, posts.image_path, posts.created_at, " +
	"users.username, users.profile_pic, " +
	"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS like_count, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count, " +
	"EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS has_liked"

func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Table("posts").
		Select(postViewColumns, viewerID).
		Joins("JOIN users ON users.id = posts.user_id")
}

func (r *postRepository) Feed(ctx context.Context, viewerID uint, page models.Page) ([]models.PostView, error) {
	views := make([]models.PostView, 0)
	err := r.run(ctx, "Feed", func(db *gorm.DB) error {
		q := r.applyPostDetails(db, viewerID).Order("posts.created_at DESC, posts.id DESC")
		return paginate(q, page).Scan(&views).Error
	})
	if err != nil {
		return nil, translateError(err, "Post", nil)
	}
	return views, nil
}

func (r *postRepository) GetView(ctx context.Context, postID, viewerID uint) (*models.PostView, error) {
	var view models.PostView
	err := r.run(ctx, "GetView", func(db *gorm.DB) error {
		res := r.applyPostDetails(db, viewerID).Where("posts.id = ?", postID).Limit(1).Scan(&view)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translateError(err, "Post", postID)
	}
	return &view, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID, viewerID uint, page models.Page) ([]models.PostView, error) {
	views := make([]models.PostView, 0)
	err := r.run(ctx, "ListByUser", func(db *gorm.DB) error {
		q := r.applyPostDetails(db, viewerID).
			Where("posts.user_id = ?", userID).
			Order("posts.created_at DESC, posts.id DESC")
		return paginate(q, page).Scan(&views).Error
	})
	if err != nil {
		return nil, translateError(err, "Post", nil)
	}
	return views, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.run(ctx, "Create", func(db *gorm.DB) error {
		return db.Omit("User").Create(post).Error
	})
	if err != nil {
		return translateError(err, "User", post.UserID)
	}
	r.log.Changed(ctx, "create", slog.Uint64("post_id", uint64(post.ID)), slog.Uint64("user_id", uint64(post.UserID)))
	return nil
}

// DeleteOwned removes a post together with its likes and comments. A post
// that does not exist or belongs to someone else reports NOT_FOUND and is
// left untouched.
func (r *postRepository) DeleteOwned(ctx context.Context, postID, userID uint) (*models.Post, error) {
	var post models.Post
	err := r.run(ctx, "DeleteOwned", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id = ? AND user_id = ?", postID, userID).Take(&post).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			res := tx.Where("id = ? AND user_id = ?", postID, userID).Delete(&models.Post{})
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
		return nil, translateError(err, "Post", postID)
	}
	r.log.Changed(ctx, "delete", slog.Uint64("post_id", uint64(postID)), slog.Uint64("user_id", uint64(userID)))
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, postID uint) (bool, error) {
	var count int64
	err := r.run(ctx, "Exists", func(db *gorm.DB) error {
		return db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error
	})
	if err != nil {
		return false, translateError(err, "Post", postID)
	}
	return count > 0, nil
}

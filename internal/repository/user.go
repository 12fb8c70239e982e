package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// MaxSearchResults caps a username search.
const MaxSearchResults = 20

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	FindByLogin(ctx context.Context, identifier string) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Profile(ctx context.Context, profileID, viewerID uint) (*models.UserProfile, error)
	Search(ctx context.Context, query string, requesterID uint) ([]models.UserSearchResult, error)
	Update(ctx context.Context, id uint, update models.UserUpdate) (*models.User, error)
}

type userRepository struct {
	store
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB, timeout time.Duration) UserRepository {
	return &userRepository{store: newStore(db, timeout, "users")}
}

const profileColumns = "users.id, users.username, users.email, users.first_name, users.last_name, " +
	"users.bio, users.profile_pic, users.created_at, " +
	"(SELECT COUNT(*) FROM follows WHERE follows.following_id = users.id) AS follower_count, " +
	"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) AS following_count, " +
	"(SELECT COUNT(*) FROM posts WHERE posts.user_id = users.id) AS post_count, " +
	"EXISTS(SELECT 1 FROM follows WHERE follows.follower_id = ? AND follows.following_id = users.id) AS is_following"

const searchColumns = "users.id, users.username, users.profile_pic, users.bio, " +
	"EXISTS(SELECT 1 FROM follows WHERE follows.follower_id = ? AND follows.following_id = users.id) AS is_following"

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.run(ctx, "Create", func(db *gorm.DB) error {
		return db.Create(user).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Username or email already taken")
		}
		return translateError(err, "User", nil)
	}
	r.log.Changed(ctx, "create", slog.Uint64("user_id", uint64(user.ID)))
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.run(ctx, "GetByID", func(db *gorm.DB) error {
		return db.Take(&user, id).Error
	})
	if err != nil {
		return nil, translateError(err, "User", id)
	}
	return &user, nil
}

// FindByLogin looks a user up by username, or by email compared
// case-insensitively.
func (r *userRepository) FindByLogin(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := r.run(ctx, "FindByLogin", func(db *gorm.DB) error {
		return db.Where("username = ? OR LOWER(email) = ?", identifier, strings.ToLower(identifier)).
			Order("id").
			Take(&user).Error
	})
	if err != nil {
		return nil, translateError(err, "User", identifier)
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return r.count(ctx, "Exists", "id = ?", id)
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	return r.count(ctx, "UsernameTaken", "username = ? AND id <> ?", username, exceptID)
}

func (r *userRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.count(ctx, "EmailTaken", "LOWER(email) = ?", strings.ToLower(email))
}

func (r *userRepository) count(ctx context.Context, op, cond string, args ...interface{}) (bool, error) {
	var n int64
	err := r.run(ctx, op, func(db *gorm.DB) error {
		return db.Model(&models.User{}).Where(cond, args...).Count(&n).Error
	})
	if err != nil {
		return false, translateError(err, "User", nil)
	}
	return n > 0, nil
}

func (r *userRepository) Profile(ctx context.Context, profileID, viewerID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.run(ctx, "Profile", func(db *gorm.DB) error {
		res := db.Table("users").
			Select(profileColumns, viewerID).
			Where("users.id = ?", profileID).
			Limit(1).
			Scan(&profile)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translateError(err, "User", profileID)
	}
	return &profile, nil
}

// Search matches query as a case-insensitive substring of usernames,
// excluding the requester.
func (r *userRepository) Search(ctx context.Context, query string, requesterID uint) ([]models.UserSearchResult, error) {
	results := make([]models.UserSearchResult, 0)
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	err := r.run(ctx, "Search", func(db *gorm.DB) error {
		return db.Table("users").
			Select(searchColumns, requesterID).
			Where(`LOWER(users.username) LIKE ? ESCAPE '\'`, pattern).
			Where("users.id <> ?", requesterID).
			Order("users.username ASC").
			Limit(MaxSearchResults).
			Scan(&results).Error
	})
	if err != nil {
		return nil, translateError(err, "User", nil)
	}
	return results, nil
}

// Update applies the non-nil fields of update and returns the stored row.
func (r *userRepository) Update(ctx context.Context, id uint, update models.UserUpdate) (*models.User, error) {
	fields := make(map[string]interface{}, 3)
	if update.Username != nil {
		fields["username"] = *update.Username
	}
	if update.Bio != nil {
		fields["bio"] = *update.Bio
	}
	if update.ProfilePic != nil {
		fields["profile_pic"] = *update.ProfilePic
	}

	var user models.User
	err := r.run(ctx, "Update", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if len(fields) > 0 {
				res := tx.Model(&models.User{}).Where("id = ?", id).Updates(fields)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return gorm.ErrRecordNotFound
				}
			}
			return tx.Take(&user, id).Error
		})
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.NewConflictError("Username already taken")
		}
		return nil, translateError(err, "User", id)
	}
	r.log.Changed(ctx, "update", slog.Uint64("user_id", uint64(id)))
	return &user, nil
}

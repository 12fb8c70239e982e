// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"pulse/internal/auth"
	"pulse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account logs in with.
const DefaultPassword = "password123"

const maxUsernameBase = 24

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID       uint
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB. A nil db is
// only valid together with DryRun.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed)), nextID: 1000}
}

// hashedPassword hashes DefaultPassword once per factory. SkipBcrypt drops to
// the minimum cost so seeded accounts can still log in.
func (f *Factory) hashedPassword() (string, error) {
	if f.passwordHash != "" {
		return f.passwordHash, nil
	}
	hasher := auth.NewBcryptHasher()
	if f.opts.SkipBcrypt {
		hasher.Cost = bcrypt.MinCost
	}
	hash, err := hasher.Hash(f.password())
	if err != nil {
		return "", fmt.Errorf("hash seed password: %w", err)
	}
	f.passwordHash = hash
	return hash, nil
}

func (f *Factory) password() string {
	if f.opts.Password != "" {
		return f.opts.Password
	}
	return DefaultPassword
}

// createdAt spreads timestamps over the last MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

// Username builds a name that passes registration validation. The numeric
// suffix keeps names unique within one seeding run.
func Username(first, last string, n int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(first + "_" + last) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
		}
	}
	base := strings.Trim(b.String(), "_")
	if base == "" {
		base = "user"
	}
	if len(base) > maxUsernameBase {
		base = strings.TrimRight(base[:maxUsernameBase], "_")
	}
	return fmt.Sprintf("%s%d", base, n)
}

// BuildUser constructs a user without persisting it.
func (f *Factory) BuildUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.hashedPassword()
	if err != nil {
		return nil, err
	}

	first, last := gofakeit.FirstName(), gofakeit.LastName()
	username := Username(first, last, n)
	bio := gofakeit.Sentence(10)
	pic := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID())

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		FirstName:    first,
		LastName:     &last,
		Bio:          &bio,
		ProfilePic:   &pic,
		CreatedAt:    f.createdAt(),
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(n, overrides...)
	if err != nil {
		return nil, err
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: username=%s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for the given user without persisting it.
// Roughly a third of posts carry an image and a few carry only an image.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		UserID:    user.ID,
		CreatedAt: f.createdAt(),
	}

	content := gofakeit.Paragraph(1, f.rng.Intn(3)+1, 12, " ")
	roll := f.rng.Intn(10)
	switch {
	case roll < 6:
		post.Content = &content
	case roll < 9:
		image := fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
		post.Content = &content
		post.ImagePath = &image
	default:
		image := fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
		post.ImagePath = &image
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample `models.Post` for the given user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		log.Printf("[dry-run] CreatePost: user=%d", post.UserID)
		return post, nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.CreateInBatches(posts, f.batchSize()).Error
}

// CreateFollow persists a follow edge from follower to following.
func (f *Factory) CreateFollow(follower, following *models.User) (*models.Follow, error) {
	follow := &models.Follow{
		FollowerID:  follower.ID,
		FollowingID: following.ID,
	}
	if f.opts.DryRun {
		f.nextID++
		follow.ID = f.nextID
		return follow, nil
	}
	if err := f.db.Create(follow).Error; err != nil {
		return nil, err
	}
	return follow, nil
}

// CreateLike persists a like from `user` on `post`.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	like := &models.Like{
		UserID: user.ID,
		PostID: post.ID,
	}
	return f.db.Create(like).Error
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	createdAt := post.CreatedAt.Add(time.Duration(f.rng.Intn(48*60)+1) * time.Minute)
	if now := time.Now(); createdAt.After(now) {
		createdAt = now
	}
	comment := &models.Comment{
		Content:   gofakeit.Sentence(8),
		UserID:    user.ID,
		PostID:    post.ID,
		CreatedAt: createdAt,
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (f *Factory) batchSize() int {
	if f.opts.BatchSize > 0 {
		return f.opts.BatchSize
	}
	return 100
}

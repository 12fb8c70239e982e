package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// Options configure the seeder and its factory.
type Options struct {
	NumUsers int
	NumPosts int
	// MaxFollowsPerUser caps the outgoing follow edges generated per user.
	MaxFollowsPerUser int
	// MaxLikesPerPost and MaxCommentsPerPost cap engagement per post.
	MaxLikesPerPost    int
	MaxCommentsPerPost int
	ShouldClean        bool
	DryRun             bool
	SkipBcrypt         bool
	MaxDays            int
	BatchSize          int
	Password           string
	RandomSeed         int64
}

// Defaults used by cmd/seed when no flags are given.
var Defaults = Options{
	NumUsers:           50,
	NumPosts:           200,
	MaxFollowsPerUser:  15,
	MaxLikesPerPost:    20,
	MaxCommentsPerPost: 5,
	MaxDays:            90,
	BatchSize:          100,
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Posts    int
	Follows  int
	Likes    int
	Comments int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d users, %d posts, %d follows, %d likes, %d comments",
		s.Users, s.Posts, s.Follows, s.Likes, s.Comments)
}

// Seeder populates the database with a connected social graph.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder builds a seeder. A nil db is only valid together with DryRun.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// Factory exposes the underlying entity factory.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// Run clears the tables when asked, then seeds users, posts, follows and
// engagement in that order.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if s.db == nil && !s.opts.DryRun {
		return sum, errors.New("seed: database is required unless running dry")
	}
	if s.db != nil {
		s.db = s.db.WithContext(ctx)
		s.factory.db = s.db
	}

	log.Printf("🌱 Starting database seeding with %d users and %d posts...", s.opts.NumUsers, s.opts.NumPosts)

	if s.opts.ShouldClean && !s.opts.DryRun {
		if err := s.ClearAll(); err != nil {
			return sum, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	users, err := s.SeedUsers(s.opts.NumUsers)
	if err != nil {
		return sum, fmt.Errorf("failed to create users: %w", err)
	}
	sum.Users = len(users)
	log.Printf("✓ %d users created", sum.Users)

	posts, err := s.SeedPosts(users, s.opts.NumPosts)
	if err != nil {
		return sum, fmt.Errorf("failed to create posts: %w", err)
	}
	sum.Posts = len(posts)
	log.Printf("✓ %d posts created", sum.Posts)

	if sum.Follows, err = s.SeedFollows(users); err != nil {
		return sum, fmt.Errorf("failed to create follows: %w", err)
	}
	log.Printf("✓ %d follows created", sum.Follows)

	if sum.Likes, sum.Comments, err = s.SeedEngagement(users, posts); err != nil {
		return sum, fmt.Errorf("failed to create engagement: %w", err)
	}
	log.Printf("✓ %d likes and %d comments created", sum.Likes, sum.Comments)

	log.Printf("🎉 Database seeding completed: %s", sum)
	return sum, nil
}

// ClearAll deletes every row of the social tables, children first.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	tx := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Post{},
		&models.User{},
	} {
		if err := tx.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedUsers creates count users.
func (s *Seeder) SeedUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 1; i <= count; i++ {
		user, err := s.factory.CreateUser(i)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
		if i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}
	return users, nil
}

// SeedPosts creates count posts spread across users.
func (s *Seeder) SeedPosts(users []*models.User, count int) ([]*models.Post, error) {
	if len(users) == 0 || count <= 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		posts = append(posts, s.factory.BuildPost(author))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// SeedFollows gives every user up to MaxFollowsPerUser distinct follow
// targets, never themselves.
func (s *Seeder) SeedFollows(users []*models.User) (int, error) {
	if len(users) < 2 || s.opts.MaxFollowsPerUser <= 0 {
		return 0, nil
	}
	created := 0
	for _, follower := range users {
		n := s.factory.rng.Intn(min(s.opts.MaxFollowsPerUser, len(users)-1) + 1)
		for _, following := range s.pick(users, n, follower.ID) {
			if _, err := s.factory.CreateFollow(follower, following); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// SeedEngagement adds likes and comments to posts. A user likes a given post
// at most once.
func (s *Seeder) SeedEngagement(users []*models.User, posts []*models.Post) (likes, comments int, err error) {
	if len(users) == 0 {
		return 0, 0, nil
	}
	for _, post := range posts {
		if s.opts.MaxLikesPerPost > 0 {
			n := s.factory.rng.Intn(min(s.opts.MaxLikesPerPost, len(users)) + 1)
			for _, liker := range s.pick(users, n, 0) {
				if err := s.factory.CreateLike(liker, post); err != nil {
					return likes, comments, err
				}
				likes++
			}
		}
		if s.opts.MaxCommentsPerPost > 0 {
			n := s.factory.rng.Intn(s.opts.MaxCommentsPerPost + 1)
			for i := 0; i < n; i++ {
				author := users[s.factory.rng.Intn(len(users))]
				if _, err := s.factory.CreateComment(author, post); err != nil {
					return likes, comments, err
				}
				comments++
			}
		}
	}
	return likes, comments, nil
}

// pick returns n distinct users, skipping the one with id exclude.
func (s *Seeder) pick(users []*models.User, n int, exclude uint) []*models.User {
	out := make([]*models.User, 0, n)
	for _, i := range s.factory.rng.Perm(len(users)) {
		if len(out) == n {
			break
		}
		if users[i].ID == exclude {
			continue
		}
		out = append(out, users[i])
	}
	return out
}

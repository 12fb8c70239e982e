// Command main runs the database seeder for Pulse.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"pulse/internal/bootstrap"
	"pulse/internal/seed"
)

func main() {
	opts := seed.Defaults
	flag.IntVar(&opts.NumUsers, "users", opts.NumUsers, "Number of users to create")
	flag.IntVar(&opts.NumPosts, "posts", opts.NumPosts, "Number of posts to create")
	flag.IntVar(&opts.MaxFollowsPerUser, "follows", opts.MaxFollowsPerUser, "Maximum follows per user")
	flag.IntVar(&opts.MaxLikesPerPost, "likes", opts.MaxLikesPerPost, "Maximum likes per post")
	flag.IntVar(&opts.MaxCommentsPerPost, "comments", opts.MaxCommentsPerPost, "Maximum comments per post")
	flag.IntVar(&opts.MaxDays, "days", opts.MaxDays, "Spread timestamps over this many days")
	flag.Int64Var(&opts.RandomSeed, "seed", 0, "Random seed (0 picks one from the clock)")
	flag.BoolVar(&opts.ShouldClean, "clean", true, "Clean database before seeding")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Generate data without writing to the database")
	flag.BoolVar(&opts.SkipBcrypt, "fast", false, "Hash the shared password at minimum bcrypt cost")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d posts, clean=%v, dry-run=%v\n", opts.NumUsers, opts.NumPosts, opts.ShouldClean, opts.DryRun)

	if err := run(context.Background(), opts); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}

func run(ctx context.Context, opts seed.Options) error {
	if opts.DryRun {
		_, err := seed.NewSeeder(nil, opts).Run(ctx)
		return err
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true, SkipStorage: true})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	_, err = seed.NewSeeder(rt.DB, opts).Run(ctx)
	return err
}

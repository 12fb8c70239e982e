package seed

import (
	"context"
	"testing"
	"time"

	"pulse/internal/auth"
	"pulse/internal/models"
	"pulse/internal/testutil"
	"pulse/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions() Options {
	return Options{
		NumUsers:           8,
		NumPosts:           20,
		MaxFollowsPerUser:  4,
		MaxLikesPerPost:    5,
		MaxCommentsPerPost: 2,
		MaxDays:            30,
		SkipBcrypt:         true,
		RandomSeed:         42,
	}
}

func TestUsername_PassesValidation(t *testing.T) {
	tests := []struct {
		first, last string
		n           int
		want        string
	}{
		{"Mary", "Smith", 1, "mary_smith1"},
		{"D'Angelo", "O'Neil", 12, "dangelo_oneil12"},
		{"Zoë", "Núñez", 3, "zo_nez3"},
		{"", "", 7, "user7"},
		{"Bartholomew", "Featherstonehaugh", 999, "bartholomew_featherstone999"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := Username(tt.first, tt.last, tt.n)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, validation.ValidateUsername(got))
		})
	}
}

func TestBuildPost_HasBodyAndRecentTimestamp(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, MaxDays: 10, RandomSeed: 7})
	user := &models.User{ID: 1}

	for i := 0; i < 50; i++ {
		p := f.BuildPost(user)
		assert.True(t, p.HasBody())
		assert.Equal(t, user.ID, p.UserID)
		assert.Less(t, time.Since(p.CreatedAt), 11*24*time.Hour)
	}
}

func TestFactory_SkipBcryptStillVerifies(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, SkipBcrypt: true})
	user, err := f.CreateUser(1)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NoError(t, auth.NewBcryptHasher().Compare(user.PasswordHash, DefaultPassword))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	opts := smallOptions()
	opts.DryRun = true

	sum, err := NewSeeder(nil, opts).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, opts.NumUsers, sum.Users)
	assert.Equal(t, opts.NumPosts, sum.Posts)
}

func TestRun_RequiresDatabase(t *testing.T) {
	_, err := NewSeeder(nil, smallOptions()).Run(context.Background())
	assert.Error(t, err)
}

func TestRun_SeedsConnectedGraph(t *testing.T) {
	db := testutil.NewTestDB(t)
	opts := smallOptions()

	sum, err := NewSeeder(db, opts).Run(context.Background())
	require.NoError(t, err)

	count := func(model interface{}) int {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return int(n)
	}
	assert.Equal(t, opts.NumUsers, count(&models.User{}))
	assert.Equal(t, opts.NumPosts, count(&models.Post{}))
	assert.Equal(t, sum.Follows, count(&models.Follow{}))
	assert.Equal(t, sum.Likes, count(&models.Like{}))
	assert.Equal(t, sum.Comments, count(&models.Comment{}))

	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = following_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)
}

func TestRun_CleanReplacesExistingRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	old := testutil.CreateUser(t, db, "leftover")
	post := testutil.CreatePost(t, db, old.ID, "old post")
	testutil.Like(t, db, old.ID, post.ID)

	opts := smallOptions()
	opts.ShouldClean = true
	_, err := NewSeeder(db, opts).Run(context.Background())
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "leftover").Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(opts.NumUsers), n)
}

func TestSeedFollows_NeedsTwoUsers(t *testing.T) {
	s := NewSeeder(nil, Options{DryRun: true, MaxFollowsPerUser: 3})
	n, err := s.SeedFollows([]*models.User{{ID: 1}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

package repository

import (
	"context"
	"testing"
	"time"

	"pulse/internal/models"
	"pulse/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_FeedAggregates(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db, time.Second)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	first := testutil.CreatePost(t, db, alice.ID, "first")
	second := testutil.CreatePost(t, db, bob.ID, "second")
	testutil.Like(t, db, bob.ID, first.ID)
	testutil.Like(t, db, carol.ID, first.ID)
	testutil.Comment(t, db, carol.ID, first.ID, "nice")

	views, err := repo.Feed(ctx, bob.ID, models.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, second.ID, views[0].ID, "newest first")
	assert.Equal(t, "bob", views[0].Username)
	assert.Equal(t, int64(0), views[0].LikeCount)
	assert.False(t, views[0].HasLiked)

	assert.Equal(t, first.ID, views[1].ID)
	assert.Equal(t, "alice", views[1].Username)
	assert.Equal(t, int64(2), views[1].LikeCount)
	assert.Equal(t, int64(1), views[1].CommentCount)
	assert.True(t, views[1].HasLiked)
	require.NotNil(t, views[1].Content)
	assert.Equal(t, "first", *views[1].Content)
}

func TestPostRepository_FeedAnonymousViewer(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db, time.Second)

	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice.ID, "hello")
	testutil.Like(t, db, alice.ID, post.ID)

	for _, viewer := range []uint{0, 9999} {
		views, err := repo.Feed(context.Background(), viewer, models.Page{Limit: 10})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.False(t, views[0].HasLiked)
		assert.Equal(t, int64(1), views[0].LikeCount)
	}
}

func TestPostRepository_FeedPagination(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db, time.Second)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	var ids []uint
	for i := 0; i < 5; i++ {
		ids = append(ids, testutil.CreatePost(t, db, alice.ID, "p").ID)
	}

	page1, err := repo.Feed(ctx, 0, models.Page{Limit: 2})
	require.NoError(t, err)
	page2, err := repo.Feed(ctx, 0, models.Page{Limit: 2, Offset: 2})
	require.NoError(t, err)
	page3, err := repo.Feed(ctx, 0, models.Page{Limit: 2, Offset: 4})
	require.NoError(t, err)

	var got []uint
	for _, page := range [][]models.PostView{page1, page2, page3} {
		for _, v := range page {
			got = append(got, v.ID)
		}
	}
	assert.Equal(t, []uint{ids[4], ids[3], ids[2], ids[1], ids[0]}, got)
}

func TestPostRepository_FeedTieBreaksOnID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db, time.Second)

	alice := testutil.CreateUser(t, db, "alice")
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	content := "same time"
	a := &models.Post{UserID: alice.ID, Content: &content, CreatedAt: at}
	b := &models.Post{UserID: alice.ID, Content: &content, CreatedAt: at}
	require.NoError(t, db.Create(a).Error)
	require.NoError(t, db.Create(b).Error)

	views, err := repo.Feed(context.Background(), 0, models.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, b.ID, views[0].ID)
	assert.Equal(t, a.ID, views[1].ID)
}

func TestPostRepository_GetView(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db, time.Second)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	content := "hello"
	post := &models.Post{UserID: alice.ID, Content: &content}
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)

	view, err := repo.GetView(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Content)
	assert.Equal(t, "hello", *view.Content)
	assert.Nil(t, view.ImagePath)
	assert.Equal(t, int64(0), view.LikeCount)
	assert.Equal(t, int64(0), view.CommentCount)
	assert.False(t, view.HasLiked)

	_, err = repo.GetView(ctx, 4242, alice.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_ListByUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db, time.Second)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	a1 := testutil.CreatePost(t, db, alice.ID, "a1")
	testutil.CreatePost(t, db, bob.ID, "b1")
	a2 := testutil.CreatePost(t, db, alice.ID, "a2")

	views, err := repo.ListByUser(ctx, alice.ID, bob.ID, models.Page{})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, a2.ID, views[0].ID)
	assert.Equal(t, a1.ID, views[1].ID)

	views, err = repo.ListByUser(ctx, alice.ID, 0, models.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, a1.ID, views[0].ID)

	views, err = repo.ListByUser(ctx, 777, 0, models.Page{})
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestPostRepository_DeleteOwned(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db, time.Second)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice.ID, "mine")
	testutil.Like(t, db, bob.ID, post.ID)
	testutil.Comment(t, db, bob.ID, post.ID, "hi")

	_, err := repo.DeleteOwned(ctx, post.ID, bob.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	exists, err := repo.Exists(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, exists, "non-owner must not remove the post")

	deleted, err := repo.DeleteOwned(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, deleted.ID)

	exists, err = repo.Exists(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	var likes, comments int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	assert.Zero(t, likes)
	assert.Zero(t, comments)

	_, err = repo.DeleteOwned(ctx, post.ID, alice.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bobr/forum-website/internal/domain"
	"github.com/bobr/forum-website/internal/repository/postgres"
	"github.com/bobr/forum-website/internal/service"
	"github.com/bobr/forum-website/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRange(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []string
	}{
		{
			name:    "no pages",
			current: 1,
			total:   0,
			want:    nil,
		},
		{
			name:    "single page",
			current: 1,
			total:   1,
			want:    []string{"1"},
		},
		{
			name:    "everything within neighbors",
			current: 3,
			total:   5,
			want:    []string{"1", "2", "3", "4", "5"},
		},
		{
			name:    "gap after neighbors",
			current: 1,
			total:   10,
			want:    []string{"1", "2", "3", "...", "10"},
		},
		{
			name:    "gaps on both sides",
			current: 5,
			total:   10,
			want:    []string{"1", "...", "3", "4", "5", "6", "7", "...", "10"},
		},
		{
			name:    "current at the end",
			current: 10,
			total:   10,
			want:    []string{"1", "...", "8", "9", "10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.PageRange(tt.current, tt.total, 2))
		})
	}
}

func TestPostService_CRUD(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	postService := service.NewPostService(repos.Post, repos.User)
	ctx := context.Background()

	author, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	post, err := postService.Create(ctx, author.ID, service.PostInput{
		Title:   "first post",
		Content: "hello board",
	})
	require.NoError(t, err)
	require.NotZero(t, post.ID)

	t.Run("get returns the post with its author", func(t *testing.T) {
		got, err := postService.Get(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "first post", got.Title)
		require.NotNil(t, got.User)
		assert.Equal(t, author.Username, got.User.Username)
	})

	t.Run("update by a non-owner is rejected", func(t *testing.T) {
		_, err := postService.Update(ctx, post.ID, other.ID, service.PostInput{
			Title:   "hijacked",
			Content: "nope",
		})
		assert.ErrorIs(t, err, service.ErrNotPostOwner)
	})

	t.Run("update by the owner succeeds", func(t *testing.T) {
		updated, err := postService.Update(ctx, post.ID, author.ID, service.PostInput{
			Title:   "first post, edited",
			Content: "hello again",
		})
		require.NoError(t, err)
		assert.Equal(t, "first post, edited", updated.Title)
	})

	t.Run("delete by a non-owner is rejected", func(t *testing.T) {
		assert.ErrorIs(t, postService.Delete(ctx, post.ID, other.ID), service.ErrNotPostOwner)
	})

	t.Run("delete by the owner removes the post", func(t *testing.T) {
		require.NoError(t, postService.Delete(ctx, post.ID, author.ID))
		_, err := postService.Get(ctx, post.ID)
		assert.ErrorIs(t, err, service.ErrPostNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := postService.Create(ctx, author.ID, service.PostInput{Title: "", Content: "x"})
		assert.ErrorIs(t, err, domain.ErrEmptyField)

		long := make([]byte, 901)
		for i := range long {
			long[i] = 'a'
		}
		_, err = postService.Create(ctx, author.ID, service.PostInput{Title: "t", Content: string(long)})
		assert.ErrorIs(t, err, domain.ErrContentTooLong)
	})
}

func TestPostService_Pagination(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	postService := service.NewPostService(repos.Post, repos.User)
	ctx := context.Background()

	author, _ := testutil.NewUserBuilder().WithUsername("paginator").Build(t, testDB.DB)

	// Seven posts with increasing timestamps: two pages, oldest first.
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		testutil.NewPostBuilder().
			WithTitle(title(i)).
			CreatedAt(base.Add(time.Duration(i) * time.Minute)).
			Build(t, testDB.DB, author)
	}

	page1, err := postService.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), page1.TotalPosts)
	assert.Equal(t, 2, page1.TotalPages)
	require.Len(t, page1.Posts, 5)
	assert.Equal(t, title(0), page1.Posts[0].Title, "oldest post first")
	assert.Equal(t, []string{"1", "2"}, page1.Range)

	page2, err := postService.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, page2.Posts, 2)
	assert.Equal(t, title(5), page2.Posts[0].Title)

	t.Run("by username", func(t *testing.T) {
		byUser, err := postService.ListByUsername(ctx, "paginator", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(7), byUser.TotalPosts)
		require.Len(t, byUser.Posts, 5)

		_, err = postService.ListByUsername(ctx, "nobody", 1)
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func title(i int) string {
	return "post " + string(rune('a'+i))
}

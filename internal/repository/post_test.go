package repository

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"cookfeed/internal/cache"
	"cookfeed/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPost(title string) *models.Post {
	return &models.Post{Username: "alice", Title: title, Description: "desc", Ingredients: "stuff"}
}

func TestPostRepository_ListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db, nil)
	ctx := context.Background()

	now := time.Now()
	first := newPost("Soup")
	first.CreatedAt = now.Add(-2 * time.Hour)
	second := newPost("Bread")
	second.CreatedAt = now.Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Bread", posts[0].Title)
	assert.Equal(t, "Soup", posts[1].Title)
	assert.Equal(t, 0, posts[0].Reactions)
}

func TestPostRepository_ListPreloadsOwner(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewPostRepository(db, nil)
	ctx := context.Background()

	user := &models.User{Username: "alice", Email: "a@x.com", Password: "h"}
	require.NoError(t, users.Create(ctx, user))
	p := newPost("Soup")
	p.UserID = &user.ID
	require.NoError(t, repo.Create(ctx, p))

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NotNil(t, posts[0].User)
	assert.Equal(t, "alice", posts[0].AuthorName())
	assert.Empty(t, posts[0].User.Email)
}

func TestPostRepository_IncrementReactions(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db, nil)
	ctx := context.Background()

	p := newPost("Soup")
	require.NoError(t, repo.Create(ctx, p))

	var last int
	for i := 0; i < 3; i++ {
		n, err := repo.IncrementReactions(ctx, p.ID)
		require.NoError(t, err)
		last = n
	}
	assert.Equal(t, 3, last)

	_, err := repo.IncrementReactions(ctx, 12345)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_IncrementReactionsConcurrent(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db, nil)
	ctx := context.Background()

	p := newPost("Soup")
	require.NoError(t, repo.Create(ctx, p))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementReactions(ctx, p.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var got models.Post
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 20, got.Reactions)
}

func TestPostRepository_FeedCacheInvalidation(t *testing.T) {
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := NewPostRepository(db, rdb)
	ctx := context.Background()

	p := newPost("Soup")
	require.NoError(t, repo.Create(ctx, p))

	_, err := repo.List(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.FeedKey))

	_, err = repo.IncrementReactions(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.FeedKey), "react must drop the cached feed")

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, posts[0].Reactions)

	require.NoError(t, repo.Create(ctx, newPost("Bread")))
	assert.False(t, mr.Exists(cache.FeedKey), "create must drop the cached feed")
}

func TestPostRepository_ListDatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "post" ORDER BY created_at DESC, id DESC`)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.List(context.Background())
	assert.True(t, models.IsCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

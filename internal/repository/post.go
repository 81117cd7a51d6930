package repository

import (
	"context"

	"cookfeed/internal/cache"
	"cookfeed/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	List(ctx context.Context) ([]models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	IncrementReactions(ctx context.Context, id uint) (int, error)
}

type postRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewPostRepository creates a post repository. rdb may be nil, in which case
// the feed is read straight from the database.
func NewPostRepository(db *gorm.DB, rdb *redis.Client) PostRepository {
	return &postRepository{db: db, rdb: rdb}
}

// ownerSummary limits the preloaded owner to public columns. The feed is
// public and cached, so it must never carry email addresses.
func ownerSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "profile_pic")
}

// List returns every post newest first with its owner's public fields loaded.
func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	err := cache.Aside(ctx, r.rdb, cache.FeedKey, &posts, cache.FeedTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("User", ownerSummary).
			Order("created_at DESC, id DESC").
			Find(&posts).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateFeed(ctx, r.rdb)
	return nil
}

// IncrementReactions adds one reaction in a single UPDATE and returns the
// stored count. Concurrent callers are serialized by the database row lock.
func (r *postRepository) IncrementReactions(ctx context.Context, id uint) (int, error) {
	var reactions int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ?", id).
			UpdateColumn("reactions", gorm.Expr("reactions + ?", 1))
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Pluck("reactions", &reactions).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	cache.InvalidateFeed(ctx, r.rdb)
	return reactions, nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"cookfeed/internal/middleware"
	"cookfeed/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	FeedKey          = "posts:feed"
	SessionKeyPrefix = "sess:"
)

const FeedTTL = 30 * time.Second

// Aside is a read-through cache: it decodes key into dest on a hit, otherwise
// calls load (which fills dest) and stores the result for ttl. Redis failures
// fall through to load; they never fail the call.
func Aside(ctx context.Context, rdb *redis.Client, key string, dest any, ttl time.Duration, load func() error) error {
	if rdb == nil {
		return load()
	}

	raw, err := rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues(key, "hit").Inc()
			return nil
		}
		observability.CacheLookups.WithLabelValues(key, "error").Inc()
	case errors.Is(err, redis.Nil):
		observability.CacheLookups.WithLabelValues(key, "miss").Inc()
	default:
		observability.CacheLookups.WithLabelValues(key, "error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	if err := load(); err != nil {
		return err
	}

	encoded, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := rdb.Set(ctx, key, encoded, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate deletes keys, logging rather than returning failures.
func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

func InvalidateFeed(ctx context.Context, rdb *redis.Client) {
	Invalidate(ctx, rdb, FeedKey)
}

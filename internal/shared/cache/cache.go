package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL suits master data that changes rarely.
const DefaultTTL = 30 * time.Minute

// Key joins a prefix such as "departments:all:" with a company id.
func Key(prefix, companyID string) string {
	return prefix + companyID
}

// GetOrLoad serves key from redis, falling back to load. Concurrent misses
// on the same key share one load. A nil rdb disables caching.
func GetOrLoad[T any](
	ctx context.Context,
	rdb *redis.Client,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (T, error),
) (T, error) {
	if rdb != nil {
		cached, err := rdb.Get(ctx, key).Result()
		if err == nil {
			var v T
			if err := json.Unmarshal([]byte(cached), &v); err == nil {
				return v, nil
			}
		}
	}

	v, err, _ := sf.Do(key, func() (interface{}, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if rdb != nil {
			if data, err := json.Marshal(loaded); err == nil {
				rdb.Set(ctx, key, data, ttl)
			}
		}
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate deletes keys after a committed write. Failures are logged only;
// the entries expire on their own.
func Invalidate(ctx context.Context, rdb *redis.Client, logger *zap.Logger, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		logger.Error("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/domain/repository"
	"go.uber.org/zap"
)

const statusKeyPrefix = "brillo:subscription-status:"

// RedisStatusCache shares cached subscription state between instances.
// Redis failures are logged and reported as misses.
type RedisStatusCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

var _ repository.StatusCache = (*RedisStatusCache)(nil)

func NewRedisStatusCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisStatusCache {
	return &RedisStatusCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisStatusCache) Get(ctx context.Context, userID string) (*entity.SubscriptionState, bool) {
	data, err := c.client.Get(ctx, statusKeyPrefix+userID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Status cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, false
	}

	var state entity.SubscriptionState
	if err := json.Unmarshal(data, &state); err != nil {
		c.logger.Warn("Discarding malformed status cache entry", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	return &state, true
}

func (c *RedisStatusCache) Set(ctx context.Context, state *entity.SubscriptionState) {
	if c.ttl <= 0 || state == nil {
		return
	}
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statusKeyPrefix+state.UserID, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Status cache write failed", zap.String("user_id", state.UserID), zap.Error(err))
	}
}

func (c *RedisStatusCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, statusKeyPrefix+userID).Err(); err != nil {
		c.logger.Warn("Status cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/3dgi/bag-features/internal/model"
	"github.com/3dgi/bag-features/internal/observability"
)

const docKeyPrefix = "doc:"

// RedisCache is a DocCache backed by Redis, for deployments running
// several replicas against the same dataset. Redis being down degrades
// to a pass-through, never to an error.
type RedisCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	timeout time.Duration
	log     *slog.Logger
}

func NewRedisCache(ctx context.Context, addr string, ttl time.Duration, log *slog.Logger) (*RedisCache, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{rdb: rdb, ttl: ttl, timeout: time.Second, log: log}, nil
}

func (c *RedisCache) MGet(ctx context.Context, ids []model.FeatureID) map[model.FeatureID]json.RawMessage {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKeyPrefix + string(id)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn("redis MGET failed, treating as miss", "keys", len(keys), "error", err)
		observability.AddDocCacheMisses(len(ids))
		return nil
	}

	out := make(map[model.FeatureID]json.RawMessage, len(ids))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		out[ids[i]] = json.RawMessage(s)
	}
	observability.AddDocCacheHits(len(out))
	observability.AddDocCacheMisses(len(ids) - len(out))
	return out
}

func (c *RedisCache) Put(ctx context.Context, id model.FeatureID, doc json.RawMessage) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.rdb.Set(ctx, docKeyPrefix+string(id), []byte(doc), c.ttl).Err(); err != nil {
		c.log.Warn("redis SET failed", "id", string(id), "error", err)
	}
}

func (c *RedisCache) Close() error {
	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"encoding/json"
	"helloworld_backend/pkg/logger"
	"helloworld_backend/pkg/monitoring"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// jsonCache redis JSON 缓存；client 为 nil 时所有操作都是 miss / no-op
type jsonCache struct {
	rdb  *redis.Client
	name string
}

func newJSONCache(rdb *redis.Client, name string) *jsonCache {
	return &jsonCache{rdb: rdb, name: name}
}

func (c *jsonCache) get(ctx context.Context, key string, out interface{}) bool {
	if c.rdb == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		monitoring.ObserveCache(c.name, false)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		monitoring.ObserveCache(c.name, false)
		return false
	}
	monitoring.ObserveCache(c.name, true)
	return true
}

func (c *jsonCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// deletePrefix 按前缀清理（SCAN，不阻塞 redis）
func (c *jsonCache) deletePrefix(ctx context.Context, prefix string) error {
	if c.rdb == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

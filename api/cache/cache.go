// Package cache holds the read-through cache the serving layer puts in
// front of the public results endpoint. The tabulation engine itself stays
// pure; only the HTTP layer decides what is cached and for how long.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/whyumesh/zonal-election-system/logging"
)

type ResultsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.Log.Warnf("CACHE: get %s failed: %v", key, err)
		}
		return nil, false
	}
	return body, true
}

func (c *RedisCache) Set(ctx context.Context, key string, body []byte) {
	// A failed write only costs a recomputation on the next read.
	if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
		logging.Log.Warnf("CACHE: set %s failed: %v", key, err)
	}
}

// Package cache keeps owner-scoped read projections in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

type ICache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

func CartCountKey(ownerID string) string {
	return "cart:count:" + ownerID
}

func OrderListKey(ownerID string) string {
	return "orders:list:" + ownerID
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the Redis server at url (redis://...). An empty url returns a no-op cache.
func New(ctx context.Context, url string, ttl time.Duration) (ICache, error) {
	if url == "" {
		return Noop(), nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedis(client, ttl), nil
}

func NewRedis(client *redis.Client, ttl time.Duration) ICache {
	return &redisCache{client: client, ttl: ttl}
}

func (c redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c redisCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

func (c redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

type noop struct{}

func Noop() ICache {
	return noop{}
}

func (noop) Get(context.Context, string, interface{}) error { return ErrMiss }

func (noop) Set(context.Context, string, interface{}) error { return nil }

func (noop) Delete(context.Context, ...string) error { return nil }

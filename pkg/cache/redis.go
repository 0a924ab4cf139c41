package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis. Expiry is delegated to Redis TTLs.
type RedisCache struct {
	client redis.UniversalClient
	retry  Backoff
}

// NewRedisCache connects to the Redis server at addr and verifies the
// connection with PING. Transient connection failures are retried.
func NewRedisCache(ctx context.Context, addr, password string, db int) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	err := DefaultBackoff.Do(ctx, func() error {
		return transient(client.Ping(ctx).Err())
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return &RedisCache{client: client, retry: DefaultBackoff}, nil
}

// NewRedisCacheFromClient wraps an existing client. The cache takes
// ownership; Close closes the client.
func NewRedisCacheFromClient(client redis.UniversalClient) Cache {
	return &RedisCache{client: client, retry: DefaultBackoff}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		data []byte
		ok   bool
	)
	err := c.retry.Do(ctx, func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return transient(err)
		}
		data, ok = b, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, ok, nil
}

// Set stores a value. A non-positive ttl stores the entry without expiry.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.retry.Do(ctx, func() error {
		return transient(c.client.Set(ctx, key, data, ttl).Err())
	})
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.retry.Do(ctx, func() error {
		return transient(c.client.Del(ctx, key).Err())
	})
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)

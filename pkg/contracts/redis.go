package contracts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// RedisCache implements SharedCache using Redis.
type RedisCache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ SharedCache = (*RedisCache)(nil)

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithTTL sets the expiration of cached addresses.
func WithTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) { c.ttl = ttl }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(c *RedisCache) { c.prefix = prefix }
}

// NewRedisCache creates a cache from an existing client.
func NewRedisCache(client *backend.Client, opts ...RedisOption) *RedisCache {
	c := &RedisCache{
		client: client,
		prefix: "issuer:contract:",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) key(chainID int32, name string) string {
	return c.prefix + strconv.Itoa(int(chainID)) + ":" + name
}

// Get returns the cached address, if any.
func (c *RedisCache) Get(ctx context.Context, chainID int32, name string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.key(chainID, name)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read from redis: %w", err)
	}
	return val, true, nil
}

// Set stores address for (chainID, name).
func (c *RedisCache) Set(ctx context.Context, chainID int32, name, address string) error {
	if err := c.client.Set(ctx, c.key(chainID, name), address, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write to redis: %w", err)
	}
	return nil
}

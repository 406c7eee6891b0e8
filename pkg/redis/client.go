package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps go-redis for the allow-list store. The analytics core only
// reads from Redis per request; writes happen through the admin endpoints.
type Client struct {
	rdb        *redis.Client
	KeyBuilder *KeyBuilder
}

// Allow-list key constants
const (
	KeyAllowList = "allowlist:ips" // hash: ip -> note
)

// NewClient creates a new Redis client
func NewClient(redisURL string, environment string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 20
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	keyBuilder := NewKeyBuilder(environment)

	return &Client{rdb: rdb, KeyBuilder: keyBuilder}, nil
}

// HGetAll returns all fields of a hash
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	result, err := c.rdb.HGetAll(ctx, c.KeyBuilder.BuildKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read hash %s: %w", key, err)
	}
	return result, nil
}

// HSet sets a single field of a hash
func (c *Client) HSet(ctx context.Context, key, field, value string) error {
	if err := c.rdb.HSet(ctx, c.KeyBuilder.BuildKey(key), field, value).Err(); err != nil {
		return fmt.Errorf("failed to write hash field %s/%s: %w", key, field, err)
	}
	return nil
}

// HDel removes a single field of a hash
func (c *Client) HDel(ctx context.Context, key, field string) error {
	if err := c.rdb.HDel(ctx, c.KeyBuilder.BuildKey(key), field).Err(); err != nil {
		return fmt.Errorf("failed to delete hash field %s/%s: %w", key, field, err)
	}
	return nil
}

// Health checks the Redis connection
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

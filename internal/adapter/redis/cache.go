// Package redis implements the cache port using Redis as the L2 shared
// cache, so tenant lookups stay warm across instances and restarts.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cartforge/cartforge/internal/resilience"
)

const (
	breakerMaxFailures = 5
	breakerTimeout     = 10 * time.Second
)

// Cache wraps a Redis client as an L2 cache. A circuit breaker guards every
// call so a struggling Redis degrades reads to the L1 tier instead of adding
// latency to each request.
type Cache struct {
	client  *redis.Client
	breaker *resilience.Breaker
}

// Connect parses a Redis URL, connects, and verifies the connection.
func Connect(ctx context.Context, url string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{
		client:  client,
		breaker: resilience.NewBreaker(breakerMaxFailures, breakerTimeout),
	}, nil
}

// Get retrieves a value from Redis.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	err = c.breaker.Execute(func() error {
		val, gerr := c.client.Get(ctx, key).Bytes()
		if gerr != nil {
			if errors.Is(gerr, redis.Nil) {
				return nil
			}
			return gerr
		}
		data, ok = val, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, ok, nil
}

// Set stores a value in Redis with the given TTL. Zero TTL means no expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.breaker.Execute(func() error {
		return c.client.Set(ctx, key, value, ttl).Err()
	})
}

// Delete removes a value from Redis.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.breaker.Execute(func() error {
		return c.client.Del(ctx, key).Err()
	})
}

// Close shuts down the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

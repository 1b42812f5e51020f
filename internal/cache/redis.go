// Package cache keeps rendered pages in Redis, keyed by registry revision.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/terra-clan/learning-roadmaps/internal/config"
	"github.com/terra-clan/learning-roadmaps/internal/metrics"
)

const keyPrefix = "roadmaps:page:"

// PageCache stores rendered pages in Redis. A nil *PageCache is a valid
// disabled cache that renders every request.
type PageCache struct {
	client  *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
}

// New connects to Redis. It returns nil without error when no address is
// configured.
func New(ctx context.Context, cfg config.RedisConfig, m *metrics.Metrics) (*PageCache, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, cfg.CacheTTL, m), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *PageCache {
	return &PageCache{client: client, ttl: ttl, metrics: m}
}

// Key returns the cache key of a page
func Key(revision, path string) string {
	return keyPrefix + revision + ":" + path
}

// Fetch returns the cached page or renders it with fill and stores the
// result. Concurrent misses for the same key share one fill. Redis errors are
// logged and the page is rendered directly.
func (c *PageCache) Fetch(ctx context.Context, revision, path string, fill func() ([]byte, error)) ([]byte, error) {
	if c == nil {
		return fill()
	}

	key := Key(revision, path)

	body, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c.metrics.CacheHit()
		return body, nil
	case !errors.Is(err, redis.Nil):
		slog.Warn("page cache read failed", "key", key, "error", err)
	}
	c.metrics.CacheMiss()

	v, err, _ := c.group.Do(key, func() (any, error) {
		body, err := fill()
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
			slog.Warn("page cache write failed", "key", key, "error", err)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Purge removes every cached page and returns the number of keys deleted
func (c *PageCache) Purge(ctx context.Context) (int, error) {
	if c == nil {
		return 0, nil
	}

	var cursor uint64
	var keysDeleted int

	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return keysDeleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return keysDeleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			keysDeleted += int(n)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	slog.Debug("page cache purged", "keys_deleted", keysDeleted)
	return keysDeleted, nil
}

// Name identifies the cache as a readiness probe
func (c *PageCache) Name() string {
	return "redis"
}

// HealthCheck verifies Redis connectivity
func (c *PageCache) HealthCheck(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *PageCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

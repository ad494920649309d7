// Package cache keeps the current market price snapshot in redis.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"energiebroker_backend/internal/marketprice/transport"

	"github.com/redis/go-redis/v9"
)

// CurrentKey holds the JSON encoded snapshot served by the current price endpoint.
const CurrentKey = "marketprice:current"

// Cache is a redis-backed snapshot cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps a redis client.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// or rediss:// URL into a client.
func NewRedisClient(redisURL string, tlsInsecure bool) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if tlsInsecure {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt), nil
}

// Get returns the cached snapshot, or nil on a miss.
func (c *Cache) Get(ctx context.Context) (*transport.Snapshot, error) {
	raw, err := c.client.Get(ctx, CurrentKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached market price: %w", err)
	}

	var snap transport.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode cached market price: %w", err)
	}
	return &snap, nil
}

// Set stores the snapshot for the configured TTL.
func (c *Cache) Set(ctx context.Context, snap transport.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode market price: %w", err)
	}
	if err := c.client.Set(ctx, CurrentKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache market price: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, CurrentKey).Err()
}

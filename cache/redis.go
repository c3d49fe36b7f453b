// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/ballotbox/models"
)

// RedisCache stores election results as JSON with a Redis-side TTL.
// SET replaces the value atomically, so concurrent writers are last-writer-wins.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache parses url (redis://...) and checks the connection.
// Keys are stored as "<prefix>:<key>"; a trailing colon on prefix is dropped.
func NewRedisCache(ctx context.Context, url, prefix string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}

	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	return &RedisCache{client: c, prefix: strings.TrimSuffix(prefix, ":")}, nil
}

func (rc *RedisCache) key(k string) string {
	if rc.prefix == "" {
		return k
	}
	return rc.prefix + ":" + k
}

func (rc *RedisCache) Get(ctx context.Context, key string) (models.ElectionResult, bool, error) {
	raw, err := rc.client.Get(ctx, rc.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ElectionResult{}, false, nil
	}
	if err != nil {
		return models.ElectionResult{}, false, fmt.Errorf("error reading cached result: %w", err)
	}

	var result models.ElectionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return models.ElectionResult{}, false, fmt.Errorf("error decoding cached result: %w", err)
	}
	return result, true, nil
}

func (rc *RedisCache) Put(ctx context.Context, key string, result models.ElectionResult, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	if err := rc.client.Set(ctx, rc.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("error writing cached result: %w", err)
	}
	return nil
}

func (rc *RedisCache) Close() error {
	if err := rc.client.Close(); err != nil {
		return fmt.Errorf("error closing redis client: %w", err)
	}
	return nil
}

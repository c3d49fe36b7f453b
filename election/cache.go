// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/danielhkuo/ballotbox/models"
)

// ResultCacheKey is the single cache entry holding the published tally
const ResultCacheKey = "election:result"

// DefaultCacheTTL bounds how stale a cached result may be
const DefaultCacheTTL = 300 * time.Second

// ResultCache is a volatile key/value cache with per-entry expiry.
// A miss is reported as ok=false with a nil error.
type ResultCache interface {
	Get(ctx context.Context, key string) (result models.ElectionResult, ok bool, err error)
	Put(ctx context.Context, key string, result models.ElectionResult, ttl time.Duration) error
}

// NoCache disables result caching
type NoCache struct{}

func (NoCache) Get(context.Context, string) (models.ElectionResult, bool, error) {
	return models.ElectionResult{}, false, nil
}

func (NoCache) Put(context.Context, string, models.ElectionResult, time.Duration) error {
	return nil
}

type memoryEntry struct {
	result    models.ElectionResult
	expiresAt time.Time
}

// memoryCacheSize bounds the in-process cache; the engine uses one key
const memoryCacheSize = 16

// MemoryCache is an in-process ResultCache. Each entry expires after its
// Put ttl on the cache clock, and after maxAge of wall time at the latest.
type MemoryCache struct {
	clock   Clock
	entries *expirable.LRU[string, memoryEntry]
}

func NewMemoryCache(clock Clock, maxAge time.Duration) *MemoryCache {
	if clock == nil {
		clock = SystemClock{}
	}
	if maxAge <= 0 {
		maxAge = DefaultCacheTTL
	}
	return &MemoryCache{
		clock:   clock,
		entries: expirable.NewLRU[string, memoryEntry](memoryCacheSize, nil, maxAge),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (models.ElectionResult, bool, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return models.ElectionResult{}, false, nil
	}
	if !c.clock.Now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		return models.ElectionResult{}, false, nil
	}
	return entry.result, true, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, result models.ElectionResult, ttl time.Duration) error {
	c.entries.Add(key, memoryEntry{result: result, expiresAt: c.clock.Now().Add(ttl)})
	return nil
}

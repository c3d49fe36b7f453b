// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/models"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := NewRedisCache(context.Background(), "redis://"+mr.Addr(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	return rc, mr
}

func sampleResult() models.ElectionResult {
	return models.ElectionResult{
		TotalVotes: 3,
		VotesByOffice: map[models.Office]map[models.Choice]int{
			"president": {models.NoVote(): 1, models.Candidate(123): 2, models.Disapprove(): 0},
		},
		ComputedAt: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := rc.Get(ctx, election.ResultCacheKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rc.Put(ctx, election.ResultCacheKey, sampleResult(), time.Minute))
	assert.True(t, mr.Exists("test:"+election.ResultCacheKey))

	got, ok, err := rc.Get(ctx, election.ResultCacheKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult().TotalVotes, got.TotalVotes)
	assert.Equal(t, sampleResult().VotesByOffice, got.VotesByOffice)
	assert.True(t, sampleResult().ComputedAt.Equal(got.ComputedAt))
}

func TestRedisCacheKeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	for _, prefix := range []string{"ballotbox", "ballotbox:"} {
		t.Run(prefix, func(t *testing.T) {
			mr.FlushAll()
			rc, err := NewRedisCache(ctx, "redis://"+mr.Addr(), prefix)
			require.NoError(t, err)
			defer rc.Close()

			require.NoError(t, rc.Put(ctx, election.ResultCacheKey, sampleResult(), time.Minute))
			assert.Equal(t, []string{"ballotbox:" + election.ResultCacheKey}, mr.Keys())
		})
	}
}

func TestRedisCacheExpires(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, rc.Put(ctx, election.ResultCacheKey, sampleResult(), 300*time.Second))
	mr.FastForward(299 * time.Second)
	_, ok, err := rc.Get(ctx, election.ResultCacheKey)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(time.Second)
	_, ok, err = rc.Get(ctx, election.ResultCacheKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	rc, mr := newTestCache(t)
	require.NoError(t, mr.Set("test:"+election.ResultCacheKey, "not json"))

	_, ok, err := rc.Get(context.Background(), election.ResultCacheKey)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisCacheServerDown(t *testing.T) {
	rc, mr := newTestCache(t)
	mr.Close()

	_, ok, err := rc.Get(context.Background(), election.ResultCacheKey)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, rc.Put(context.Background(), election.ResultCacheKey, sampleResult(), time.Minute))
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-url", "")
	assert.Error(t, err)
}

func TestEngineResultThroughRedis(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	period := models.ElectionPeriod{
		VoteStart:          time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		VoteEnd:            time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC),
		ResultAnnouncement: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	store := db.NewMemoryStore()
	engine, err := election.New(election.Config{
		Period:   period,
		Offices:  []models.OfficeInfo{{ID: "president", Title: "President"}},
		Rule:     election.DefaultVoterRule(),
		CacheTTL: election.DefaultCacheTTL,
	}, election.Dependencies{
		Store: store,
		Cache: rc,
		Clock: election.FixedClock{T: period.ResultAnnouncement},
	})
	require.NoError(t, err)

	require.NoError(t, store.WriteBallot(ctx, "6500000123", []models.BallotRow{{Office: "president", Token: "5"}}, period.VoteStart))

	first, err := engine.Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalVotes)
	assert.Equal(t, election.DefaultCacheTTL, mr.TTL("test:"+election.ResultCacheKey))

	// later writes are not visible until the cached entry expires
	require.NoError(t, store.WriteBallot(ctx, "6500000223", []models.BallotRow{{Office: "president", Token: "5"}}, period.VoteStart))
	cached, err := engine.Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.TotalVotes)

	mr.FastForward(election.DefaultCacheTTL)
	fresh, err := engine.Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.TotalVotes)
	assert.Equal(t, 2, fresh.VotesByOffice["president"][models.Candidate(5)])
}

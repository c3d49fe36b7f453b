// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"time"

	"github.com/danielhkuo/ballotbox/models"
)

// Result returns the published tally. It is only available once results
// are announced; a valid cached result is returned unchanged.
func (e *Engine) Result(ctx context.Context) (models.ElectionResult, error) {
	if err := CheckAnnouncement(e.period, e.now(ctx)); err != nil {
		return models.ElectionResult{}, err
	}

	cached, ok, err := e.cache.Get(ctx, ResultCacheKey)
	if err != nil {
		e.logger.Warn("result cache read failed", "error", err)
	}
	if ok {
		e.metrics.TallyCache(true)
		return cached, nil
	}
	e.metrics.TallyCache(false)

	return e.recompute(ctx)
}

// Refresh recomputes the tally from the store and overwrites the cache
func (e *Engine) Refresh(ctx context.Context) (models.ElectionResult, error) {
	if err := CheckAnnouncement(e.period, e.now(ctx)); err != nil {
		return models.ElectionResult{}, err
	}
	return e.recompute(ctx)
}

func (e *Engine) recompute(ctx context.Context) (models.ElectionResult, error) {
	start := time.Now()
	result, err := e.compute(ctx)
	e.metrics.TallyDuration(time.Since(start))
	if err != nil {
		e.logger.Error("failed to compute election result", "error", err)
		return models.ElectionResult{}, err
	}

	if err := e.cache.Put(ctx, ResultCacheKey, result, e.ttl); err != nil {
		e.logger.Warn("result cache write failed", "error", err)
	}

	e.logger.Info("election result computed", "total_votes", result.TotalVotes)
	return result, nil
}

func (e *Engine) compute(ctx context.Context) (models.ElectionResult, error) {
	computedAt := e.now(ctx)

	if sr, ok := e.store.(SnapshotReader); ok {
		total, counts, err := sr.ReadTally(ctx)
		if err != nil {
			return models.ElectionResult{}, internal("read tally: %w", err)
		}
		return fold(e.offices, total, counts, computedAt, true)
	}

	// Without a snapshot a ballot may commit between the two reads; the
	// grouped counts are then authoritative.
	total, err := e.store.CountBallots(ctx)
	if err != nil {
		return models.ElectionResult{}, internal("count ballots: %w", err)
	}
	counts, err := e.store.CountByOfficeAndChoice(ctx)
	if err != nil {
		return models.ElectionResult{}, internal("count choices: %w", err)
	}
	result, err := fold(e.offices, total, counts, computedAt, false)
	if err == nil && result.TotalVotes != total {
		e.logger.Debug("ballot committed between tally reads", "counted", total, "grouped", result.TotalVotes)
	}
	return result, err
}

// fold builds a result from grouped counts. Every office starts with
// no-vote and disapprove at zero; a row that cannot be attributed to a
// configured office and choice is an integrity fault, as are offices whose
// sums disagree. With exact set the sums must also equal total; otherwise
// the common office sum becomes the total.
func fold(offices []models.OfficeInfo, total int, counts []models.ChoiceCount, computedAt time.Time, exact bool) (models.ElectionResult, error) {
	votes := make(map[models.Office]map[models.Choice]int, len(offices))
	for _, o := range offices {
		votes[o.ID] = map[models.Choice]int{
			models.NoVote():     0,
			models.Disapprove(): 0,
		}
	}

	for _, c := range counts {
		byChoice, ok := votes[c.Office]
		if !ok {
			return models.ElectionResult{}, internal("stored office %q is not configured", c.Office)
		}
		choice, err := models.ParseChoiceToken(c.Token)
		if err != nil {
			return models.ElectionResult{}, internal("stored choice for office %q: %w", c.Office, err)
		}
		if c.Count < 0 {
			return models.ElectionResult{}, internal("negative count for office %q", c.Office)
		}
		byChoice[choice] += c.Count
	}

	ballots := -1
	for _, o := range offices {
		sum := 0
		for _, n := range votes[o.ID] {
			sum += n
		}
		if ballots >= 0 && sum != ballots {
			return models.ElectionResult{}, internal("office %q has %d choices, expected %d", o.ID, sum, ballots)
		}
		ballots = sum
	}
	if exact && ballots != total {
		return models.ElectionResult{}, internal("offices have %d choices for %d ballots", ballots, total)
	}
	if !exact {
		total = ballots
	}

	return models.ElectionResult{
		TotalVotes:    total,
		VotesByOffice: votes,
		ComputedAt:    computedAt,
	}, nil
}

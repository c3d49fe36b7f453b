// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/ballotbox/models"
)

const publishTimeout = 5 * time.Second

// Config is the immutable election definition
type Config struct {
	Period  models.ElectionPeriod
	Offices []models.OfficeInfo
	Rule    VoterRule
	// CacheTTL <= 0 disables result caching
	CacheTTL time.Duration
}

// Metrics records engine outcomes. The metrics package provides the
// Prometheus implementation.
type Metrics interface {
	BallotSubmitted(outcome string)
	TallyCache(hit bool)
	TallyDuration(d time.Duration)
}

type Dependencies struct {
	Store     Store
	Cache     ResultCache
	Clock     Clock
	Publisher BallotPublisher
	Metrics   Metrics
	Logger    *slog.Logger
}

// Engine runs ballot submission and tallying for one election.
// It holds no per-voter state; all of that lives in the store.
type Engine struct {
	period    models.ElectionPeriod
	offices   []models.OfficeInfo
	rule      VoterRule
	ttl       time.Duration
	store     Store
	cache     ResultCache
	clock     Clock
	publisher BallotPublisher
	metrics   Metrics
	logger    *slog.Logger
	inflight  sync.WaitGroup
}

func New(cfg Config, deps Dependencies) (*Engine, error) {
	if err := cfg.Period.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Offices) == 0 {
		return nil, errors.New("at least one office is required")
	}
	seen := make(map[models.Office]bool, len(cfg.Offices))
	for _, o := range cfg.Offices {
		if o.ID == "" {
			return nil, errors.New("office id must not be empty")
		}
		if seen[o.ID] {
			return nil, fmt.Errorf("duplicate office %q", o.ID)
		}
		seen[o.ID] = true
	}
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}

	rule := cfg.Rule
	if rule.Length <= 0 {
		rule.Length = DefaultVoterIDLength
	}

	e := &Engine{
		period:    cfg.Period,
		offices:   append([]models.OfficeInfo(nil), cfg.Offices...),
		rule:      rule,
		ttl:       cfg.CacheTTL,
		store:     deps.Store,
		cache:     deps.Cache,
		clock:     deps.Clock,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
	if e.cache == nil || e.ttl <= 0 {
		e.cache = NoCache{}
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.metrics == nil {
		e.metrics = noopMetrics{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

func (e *Engine) Period() models.ElectionPeriod { return e.period }

func (e *Engine) Offices() []models.OfficeInfo {
	return append([]models.OfficeInfo(nil), e.offices...)
}

// Now is the current time as seen by operations using ctx
func (e *Engine) Now(ctx context.Context) time.Time { return e.now(ctx) }

func (e *Engine) Phase(ctx context.Context) models.Phase {
	return Classify(e.period, e.now(ctx))
}

// SubmitBallot records one ballot for voterID. On any error nothing is
// committed and the voter stays eligible.
func (e *Engine) SubmitBallot(ctx context.Context, voterID string, entries []models.BallotEntry) error {
	err := e.submit(ctx, voterID, entries)
	outcome := "accepted"
	if err != nil {
		outcome = string(CodeOf(err))
	}
	e.metrics.BallotSubmitted(outcome)
	return err
}

func (e *Engine) submit(ctx context.Context, voterID string, entries []models.BallotEntry) error {
	now := e.now(ctx)
	if err := CheckVoting(e.period, now); err != nil {
		return err
	}

	if err := e.checkEligible(ctx, voterID); err != nil {
		if CodeOf(err) == CodeInternal {
			e.logger.Error("eligibility check failed", "error", err)
		}
		return err
	}

	rows, err := ValidateBallot(e.offices, entries)
	if err != nil {
		return err
	}

	err = e.store.WriteBallot(ctx, voterID, rows, now)
	if errors.Is(err, ErrDuplicateVoter) {
		e.logger.Warn("ballot write lost uniqueness race", "offices", len(rows))
		return ErrAlreadyVoted
	}
	if err != nil {
		e.logger.Error("failed to write ballot", "error", err)
		return internal("write ballot: %w", err)
	}

	e.logger.Info("ballot submitted", "offices", len(rows))
	e.publish(ctx, voterID, now)
	return nil
}

// publish sends the ballot cast notice in the background so a slow broker
// never delays the voter's response
func (e *Engine) publish(ctx context.Context, voterID string, castAt time.Time) {
	if e.publisher == nil {
		return
	}
	pctx := context.WithoutCancel(ctx)

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		pctx, cancel := context.WithTimeout(pctx, publishTimeout)
		defer cancel()

		if err := e.publisher.PublishBallotCast(pctx, voterID, castAt); err != nil {
			e.logger.Warn("failed to publish ballot cast event", "error", err)
		}
	}()
}

// Close waits for pending ballot cast notices. Call it before closing the
// publisher.
func (e *Engine) Close() {
	e.inflight.Wait()
}

// VoterCount is the number of ballots cast so far
type VoterCount struct {
	Count int
	AsOf  time.Time
}

// VoterCount is not period-gated and never cached
func (e *Engine) VoterCount(ctx context.Context) (VoterCount, error) {
	asOf := e.now(ctx)
	n, err := e.store.CountBallots(ctx)
	if err != nil {
		e.logger.Error("failed to count ballots", "error", err)
		return VoterCount{}, internal("count ballots: %w", err)
	}
	return VoterCount{Count: n, AsOf: asOf}, nil
}

type noopMetrics struct{}

func (noopMetrics) BallotSubmitted(string)      {}
func (noopMetrics) TallyCache(bool)             {}
func (noopMetrics) TallyDuration(time.Duration) {}

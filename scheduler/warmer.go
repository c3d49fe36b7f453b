// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/danielhkuo/ballotbox/models"
)

// Refresher is the part of the election engine the warmer drives
type Refresher interface {
	Phase(ctx context.Context) models.Phase
	Refresh(ctx context.Context) (models.ElectionResult, error)
}

// ResultWarmer recomputes the published tally on a fixed interval once
// results are announced, so readers rarely pay for a cache miss.
type ResultWarmer struct {
	cron     *cron.Cron
	engine   Refresher
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewResultWarmer(engine Refresher, interval time.Duration, logger *slog.Logger) (*ResultWarmer, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("warm interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &ResultWarmer{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		engine:   engine,
		interval: interval,
		timeout:  interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	if _, err := w.cron.AddFunc(fmt.Sprintf("@every %s", interval), w.run); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to schedule result warmer: %w", err)
	}
	return w, nil
}

func (w *ResultWarmer) Start() {
	w.logger.Info("Starting result warmer", "interval", w.interval.String())
	w.cron.Start()
}

// Stop cancels an in-flight refresh and waits for it to return
func (w *ResultWarmer) Stop() {
	w.cancel()

	<-w.cron.Stop().Done()
	w.logger.Info("Result warmer stopped")
}

// run refreshes once; it does nothing before the announcement time
func (w *ResultWarmer) run() {
	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	defer cancel()

	if phase := w.engine.Phase(ctx); phase != models.PhaseAnnounced {
		w.logger.Debug("skipping result refresh", "phase", phase)
		return
	}

	if _, err := w.engine.Refresh(ctx); err != nil {
		w.logger.Warn("result refresh failed", "error", err)
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"time"
)

// Clock supplies the current time to the period gate and the result cache
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

type nowKey struct{}

// ContextWithNow attaches a per-request current time. It takes precedence
// over the engine clock for period checks made with that context.
func ContextWithNow(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, nowKey{}, t)
}

// NowFromContext returns the override set by ContextWithNow, if any
func NowFromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(nowKey{}).(time.Time)
	return t, ok
}

func (e *Engine) now(ctx context.Context) time.Time {
	if t, ok := NowFromContext(ctx); ok {
		return t
	}
	return e.clock.Now()
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
ElectionMetrics records engine outcomes:

  - ballots_submitted_total{outcome}: "accepted" or the error code
    that rejected the ballot
  - tally_cache_total{result}: "hit" or "miss" on the result cache
  - tally_duration_seconds: time spent recomputing the tally from the store

Metrics are registered on the given registerer so tests can use a fresh
registry.
*/
type ElectionMetrics struct {
	BallotsSubmitted *prometheus.CounterVec
	TallyCacheLookup *prometheus.CounterVec
	TallyTime        prometheus.Histogram
}

func NewElectionMetrics(reg prometheus.Registerer, namespace string) *ElectionMetrics {
	factory := promauto.With(reg)
	return &ElectionMetrics{
		BallotsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "election",
				Name:      "ballots_submitted_total",
				Help:      "Ballot submissions by outcome",
			},
			[]string{"outcome"},
		),
		TallyCacheLookup: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "election",
				Name:      "tally_cache_total",
				Help:      "Result cache lookups by result",
			},
			[]string{"result"},
		),
		TallyTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "election",
				Name:      "tally_duration_seconds",
				Help:      "Histogram of tally computation times",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
			},
		),
	}
}

func (m *ElectionMetrics) BallotSubmitted(outcome string) {
	if m == nil {
		return
	}
	m.BallotsSubmitted.WithLabelValues(outcome).Inc()
}

func (m *ElectionMetrics) TallyCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.TallyCacheLookup.WithLabelValues(result).Inc()
}

func (m *ElectionMetrics) TallyDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.TallyTime.Observe(d.Seconds())
}

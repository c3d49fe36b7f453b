// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"time"

	"github.com/danielhkuo/ballotbox/models"
)

// Classify places now on the election timeline. Intervals are half-open:
// VoteStart and ResultAnnouncement are inclusive, VoteEnd is exclusive.
func Classify(p models.ElectionPeriod, now time.Time) models.Phase {
	switch {
	case now.Before(p.VoteStart):
		return models.PhaseNotStarted
	case now.Before(p.VoteEnd):
		return models.PhaseOpen
	case now.Before(p.ResultAnnouncement):
		return models.PhaseAnnouncementPending
	default:
		return models.PhaseAnnounced
	}
}

// CheckVoting permits only the Open phase
func CheckVoting(p models.ElectionPeriod, now time.Time) error {
	switch Classify(p, now) {
	case models.PhaseNotStarted:
		return ErrElectionNotStarted
	case models.PhaseOpen:
		return nil
	default:
		return ErrElectionEnded
	}
}

// CheckAnnouncement permits only the Announced phase
func CheckAnnouncement(p models.ElectionPeriod, now time.Time) error {
	switch Classify(p, now) {
	case models.PhaseNotStarted, models.PhaseOpen:
		return ErrElectionNotEnded
	case models.PhaseAnnouncementPending:
		return ErrAnnouncementNotStarted
	default:
		return nil
	}
}

// NextBoundary returns the next instant at which the phase changes.
// ok is false once results are announced.
func NextBoundary(p models.ElectionPeriod, now time.Time) (t time.Time, ok bool) {
	switch Classify(p, now) {
	case models.PhaseNotStarted:
		return p.VoteStart, true
	case models.PhaseOpen:
		return p.VoteEnd, true
	case models.PhaseAnnouncementPending:
		return p.ResultAnnouncement, true
	}
	return time.Time{}, false
}

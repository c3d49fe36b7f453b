// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"time"

	"github.com/danielhkuo/ballotbox/models"
)

// ErrDuplicateVoter is returned by Store.WriteBallot when a voter record
// already exists for the voter ID
var ErrDuplicateVoter = errors.New("voter record already exists")

// Store is the durable ballot store. WriteBallot must commit the voter
// record and every row together or not at all, and must reject a second
// record for the same voter with ErrDuplicateVoter.
type Store interface {
	WriteBallot(ctx context.Context, voterID string, rows []models.BallotRow, castAt time.Time) error
	HasVoted(ctx context.Context, voterID string) (bool, error)
	CountBallots(ctx context.Context) (int, error)
	CountByOfficeAndChoice(ctx context.Context) ([]models.ChoiceCount, error)
}

// SnapshotReader is implemented by stores that can read the ballot total and
// the grouped counts from one consistent snapshot
type SnapshotReader interface {
	ReadTally(ctx context.Context) (total int, counts []models.ChoiceCount, err error)
}

// BallotPublisher receives a notice after each committed ballot. It is
// never given the ballot's choices.
type BallotPublisher interface {
	PublishBallotCast(ctx context.Context, voterID string, castAt time.Time) error
}

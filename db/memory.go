// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/models"
)

type memoryBallot struct {
	id     string
	castAt time.Time
	rows   []models.BallotRow
}

// MemoryStore keeps ballots in process memory. Used for local runs and
// tests; nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	ballots map[string]memoryBallot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ballots: make(map[string]memoryBallot)}
}

func (s *MemoryStore) WriteBallot(_ context.Context, voterID string, rows []models.BallotRow, castAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ballots[voterID]; ok {
		return election.ErrDuplicateVoter
	}
	s.ballots[voterID] = memoryBallot{
		id:     uuid.NewString(),
		castAt: castAt,
		rows:   append([]models.BallotRow(nil), rows...),
	}
	return nil
}

func (s *MemoryStore) HasVoted(_ context.Context, voterID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ballots[voterID]
	return ok, nil
}

func (s *MemoryStore) CountBallots(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ballots), nil
}

func (s *MemoryStore) CountByOfficeAndChoice(_ context.Context) ([]models.ChoiceCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groupLocked(), nil
}

func (s *MemoryStore) ReadTally(_ context.Context) (int, []models.ChoiceCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ballots), s.groupLocked(), nil
}

func (s *MemoryStore) groupLocked() []models.ChoiceCount {
	grouped := make(map[models.BallotRow]int)
	for _, b := range s.ballots {
		for _, r := range b.rows {
			grouped[r]++
		}
	}

	counts := make([]models.ChoiceCount, 0, len(grouped))
	for r, n := range grouped {
		counts = append(counts, models.ChoiceCount{Office: r.Office, Token: r.Token, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Office != counts[j].Office {
			return counts[i].Office < counts[j].Office
		}
		return counts[i].Token < counts[j].Token
	})
	return counts
}

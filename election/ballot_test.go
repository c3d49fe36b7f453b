// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ballotbox/models"
)

var threeOffices = []models.OfficeInfo{
	{ID: "A", Title: "Office A"},
	{ID: "B", Title: "Office B"},
	{ID: "C", Title: "Office C"},
}

func entry(office string, c models.Choice) models.BallotEntry {
	return models.BallotEntry{Office: models.Office(office), Choice: c}
}

func TestValidateBallot(t *testing.T) {
	tests := []struct {
		name       string
		entries    []models.BallotEntry
		wantDetail string
	}{
		{
			name: "complete ballot",
			entries: []models.BallotEntry{
				entry("C", models.Candidate(123)),
				entry("A", models.NoVote()),
				entry("B", models.Disapprove()),
			},
		},
		{
			name: "missing office",
			entries: []models.BallotEntry{
				entry("A", models.NoVote()),
				entry("B", models.Candidate(1)),
			},
			wantDetail: DetailMissingOffice,
		},
		{
			name: "duplicate office",
			entries: []models.BallotEntry{
				entry("A", models.NoVote()),
				entry("A", models.Candidate(2)),
				entry("B", models.Candidate(1)),
				entry("C", models.Candidate(1)),
			},
			wantDetail: DetailDuplicateOffice,
		},
		{
			name: "duplicate office replacing missing one",
			entries: []models.BallotEntry{
				entry("A", models.NoVote()),
				entry("A", models.NoVote()),
				entry("B", models.Candidate(1)),
			},
			wantDetail: DetailDuplicateOffice,
		},
		{
			name: "unknown office",
			entries: []models.BallotEntry{
				entry("A", models.NoVote()),
				entry("B", models.NoVote()),
				entry("C", models.NoVote()),
				entry("Z", models.NoVote()),
			},
			wantDetail: DetailUnknownOffice,
		},
		{
			name: "zero value choice",
			entries: []models.BallotEntry{
				entry("A", models.Choice{}),
				entry("B", models.NoVote()),
				entry("C", models.NoVote()),
			},
			wantDetail: DetailMalformedChoice,
		},
		{
			name:       "empty ballot",
			entries:    nil,
			wantDetail: DetailMissingOffice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ValidateBallot(threeOffices, tt.entries)
			if tt.wantDetail == "" {
				require.NoError(t, err)
				assert.Len(t, rows, len(threeOffices))
				return
			}
			assert.ErrorIs(t, err, ErrInvalidBallot)
			assert.Equal(t, tt.wantDetail, DetailOf(err))
			assert.Nil(t, rows)
		})
	}
}

func TestValidateBallotRowsInOfficeOrder(t *testing.T) {
	rows, err := ValidateBallot(threeOffices, []models.BallotEntry{
		entry("C", models.Candidate(9)),
		entry("B", models.Disapprove()),
		entry("A", models.NoVote()),
	})
	require.NoError(t, err)

	assert.Equal(t, []models.BallotRow{
		{Office: "A", Token: models.TokenNoVote},
		{Office: "B", Token: models.TokenDisapprove},
		{Office: "C", Token: "9"},
	}, rows)
}

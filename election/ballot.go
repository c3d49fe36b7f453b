// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"github.com/danielhkuo/ballotbox/models"
)

// ValidateBallot checks that entries address every configured office exactly
// once with a well-formed choice, and returns the rows to persist in
// configured office order.
func ValidateBallot(offices []models.OfficeInfo, entries []models.BallotEntry) ([]models.BallotRow, error) {
	known := make(map[models.Office]bool, len(offices))
	for _, o := range offices {
		known[o.ID] = true
	}

	chosen := make(map[models.Office]models.Choice, len(entries))
	for _, entry := range entries {
		if !known[entry.Office] {
			return nil, invalidBallot(DetailUnknownOffice, "office %q is not on this election", entry.Office)
		}
		if _, dup := chosen[entry.Office]; dup {
			return nil, invalidBallot(DetailDuplicateOffice, "office %q appears more than once", entry.Office)
		}
		if !entry.Choice.Valid() {
			return nil, invalidBallot(DetailMalformedChoice, "office %q has no valid choice", entry.Office)
		}
		chosen[entry.Office] = entry.Choice
	}

	rows := make([]models.BallotRow, 0, len(offices))
	for _, o := range offices {
		choice, ok := chosen[o.ID]
		if !ok {
			return nil, invalidBallot(DetailMissingOffice, "office %q has no choice", o.ID)
		}
		rows = append(rows, models.BallotRow{Office: o.ID, Token: choice.Token()})
	}
	return rows, nil
}

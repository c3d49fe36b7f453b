// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DropSchema removes every table created by CreateSchema
func DropSchema(db *sql.DB) error {
	_, err := db.Exec(`
		DROP TABLE IF EXISTS ballot_choice;
		DROP TABLE IF EXISTS voter_record;
	`)
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

const schema = `
-- One row per voter who has cast a ballot; never updated
CREATE TABLE IF NOT EXISTS voter_record (
    voter_id TEXT PRIMARY KEY,
    ballot_id TEXT NOT NULL UNIQUE,
    voted_at TIMESTAMP NOT NULL
);

-- One row per office on each ballot
CREATE TABLE IF NOT EXISTS ballot_choice (
    ballot_id TEXT NOT NULL REFERENCES voter_record(ballot_id) ON DELETE CASCADE,
    office TEXT NOT NULL,
    choice TEXT NOT NULL CHECK (choice <> ''),
    PRIMARY KEY (ballot_id, office)
);

CREATE INDEX IF NOT EXISTS idx_ballot_choice_office ON ballot_choice(office, choice);
`

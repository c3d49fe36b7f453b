// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/models"
)

// SQLStore persists ballots in Postgres or SQLite
type SQLStore struct {
	db           *sql.DB
	databaseType string
}

func NewSQLStore(db *sql.DB, databaseType string) *SQLStore {
	return &SQLStore{db: db, databaseType: databaseType}
}

// WriteBallot inserts the voter record and every choice in one transaction.
// The voter record goes first so a duplicate voter fails before any choice
// row is written.
func (s *SQLStore) WriteBallot(ctx context.Context, voterID string, rows []models.BallotRow, castAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ballotID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO voter_record (voter_id, ballot_id, voted_at)
		VALUES ($1, $2, $3)
	`, voterID, ballotID, castAt.UTC())
	if isUniqueViolation(err) {
		return election.ErrDuplicateVoter
	}
	if err != nil {
		return fmt.Errorf("failed to insert voter record: %w", err)
	}

	for _, row := range rows {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ballot_choice (ballot_id, office, choice)
			VALUES ($1, $2, $3)
		`, ballotID, string(row.Office), row.Token)
		if err != nil {
			return fmt.Errorf("failed to insert choice for %s: %w", row.Office, err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return election.ErrDuplicateVoter
		}
		return fmt.Errorf("failed to commit ballot: %w", err)
	}
	return nil
}

func (s *SQLStore) HasVoted(ctx context.Context, voterID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM voter_record WHERE voter_id = $1)
	`, voterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query voter record: %w", err)
	}
	return exists, nil
}

func (s *SQLStore) CountBallots(ctx context.Context) (int, error) {
	return countBallots(ctx, s.db)
}

func (s *SQLStore) CountByOfficeAndChoice(ctx context.Context) ([]models.ChoiceCount, error) {
	return countChoices(ctx, s.db)
}

// ReadTally reads the total and grouped counts inside one read-only
// transaction so both come from the same snapshot
func (s *SQLStore) ReadTally(ctx context.Context) (int, []models.ChoiceCount, error) {
	// SQLite transactions are already serializable
	var opts *sql.TxOptions
	if s.databaseType == TypePostgres {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}

	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	total, err := countBallots(ctx, tx)
	if err != nil {
		return 0, nil, err
	}
	counts, err := countChoices(ctx, tx)
	if err != nil {
		return 0, nil, err
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("failed to finish read transaction: %w", err)
	}
	return total, counts, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func countBallots(ctx context.Context, q queryer) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM voter_record`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count voter records: %w", err)
	}
	return n, nil
}

func countChoices(ctx context.Context, q queryer) ([]models.ChoiceCount, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT office, choice, COUNT(*)
		FROM ballot_choice
		GROUP BY office, choice
		ORDER BY office, choice
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count choices: %w", err)
	}
	defer rows.Close()

	var counts []models.ChoiceCount
	for rows.Next() {
		var (
			office string
			c      models.ChoiceCount
		)
		if err := rows.Scan(&office, &c.Token, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan choice count: %w", err)
		}
		c.Office = models.Office(office)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read choice counts: %w", err)
	}
	return counts, nil
}

// isUniqueViolation recognises duplicate-key errors from both drivers
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

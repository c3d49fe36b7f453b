// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db stores ballots.

# Stores

SQLStore runs on PostgreSQL (lib/pq) or SQLite (modernc.org/sqlite):

	conn, err := db.Open(ctx, db.TypePostgres, url)
	store := db.NewSQLStore(conn, db.TypePostgres)

Open pings the database and calls CreateSchema. MemoryStore keeps ballots in
process for development and tests.

# Tables

  - voter_record: one row per voter who has voted, keyed by voter ID
  - ballot_choice: one (office, choice) row per office on each ballot

Each voter record owns one ballot's choice rows. The choice rows reference an opaque ballot ID, not the voter.

# Guarantees

WriteBallot inserts the voter record and every choice row in one
transaction. The voter_record primary key makes a second ballot for the
same voter fail with election.ErrDuplicateVoter, however the requests race.
ReadTally reads the ballot count and grouped choices from one snapshot.
*/
package db

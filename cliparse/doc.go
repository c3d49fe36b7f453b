// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Process Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

CLI flags take precedence over environment variables, which take precedence
over a .env file in the working directory.

# Election Definition

LoadElection reads the election with viper:

	vote_start: "2025-06-10T07:00:00+07:00"
	vote_end: "2025-06-11T18:00:00+07:00"
	result_announcement: "2025-06-12T00:00:00+07:00"
	offices:
	  - id: president
	    title: นายกสโมสร
	voter_id_length: 10
	voter_id_pattern: '^\d{8}23$'

ELECTION_VOTE_START, ELECTION_VOTE_END and ELECTION_RESULT_ANNOUNCEMENT
override the file. Without offices the ten council positions in
DefaultOffices are used.

# Validation

Both functions return an error rather than starting with a bad setup:

  - DATABASE_URL is required unless DATABASE_TYPE is memory
  - outside development a JWT secret or public key is required
  - vote_start < vote_end <= result_announcement
  - office IDs are non-empty and unique
*/
package cliparse

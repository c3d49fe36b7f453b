// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ballotbox API.

# Handler Types

  - ElectionHandler: ballot submission, eligibility and identity
  - ResultsHandler: published results, voter count and election info

Handlers are created via constructor functions that accept the election
engine and an Authenticator:

	electionHandler := handlers.NewElectionHandler(engine, authn)

# Voter Endpoints

	POST /api/vote        → SubmitVote
	GET  /api/eligibility → Eligibility
	GET  /api/me          → Me

These require an Authorization header. A missing or unusable credential is
401; an address outside the allowed domain is 403.

# Public Endpoints

	GET /api/voter-count     → GetVoterCount
	GET /api/election-result → GetResult (after the announcement only)
	GET /api/election        → GetElection

A valid credential's time override is honoured here too.

# Errors

Every failure is written as {"success":false,"error":"<code>"}. Period and
eligibility errors are 403, ballot validation errors are 400 with the
detail in "message", and internal errors are 500 with the cause logged.
*/
package handlers

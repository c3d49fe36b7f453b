// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ballotbox API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(engine, authn, registry)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics (when a gatherer is given)

Voter (requires Authorization):

	POST /api/vote        - Submit the ballot
	GET  /api/eligibility - Can this voter still vote
	GET  /api/me          - Voter ID and request time

Public:

	GET /api/voter-count     - Ballots cast so far
	GET /api/election-result - Tally (after announcement)
	GET /api/election        - Windows, offices and phase
*/
package router

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request and response types for the API.

# Domain Types

  - Office, OfficeInfo: an elected position and its display title
  - Choice: candidate ID, no-vote or disapprove
  - ElectionPeriod: voting window and announcement time
  - Phase: where a moment falls on the election timeline
  - BallotEntry, BallotRow: a choice for one office, in and out of the store
  - ElectionResult: total ballots and per-office counts

# Choice Encoding

A Choice has three forms:

	token: "42", "no-vote", "disapprove"   (storage, map keys)
	JSON:  42, "no-vote", "disapprove"     (request and response bodies)

The zero Choice is invalid, so a missing or malformed choice never counts.

# Request and Response Types

  - SubmitVoteRequest / RawVoteRequest: {"votes":[{"position","candidateId"}]}
  - EligibilityResponse, MeResponse, VoterCountResponse
  - ElectionResultResponse, ElectionInfoResponse
  - ErrorResponse: success, error, message
*/
package models

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election is the voting and tallying engine for one election.

# Timeline

Classify places a moment on the timeline with half-open intervals:

	now < VoteStart                        → PhaseNotStarted
	VoteStart <= now < VoteEnd             → PhaseOpen
	VoteEnd <= now < ResultAnnouncement    → PhaseAnnouncementPending
	now >= ResultAnnouncement              → PhaseAnnounced

Ballots are accepted only while open; results are readable only once
announced. The current time comes from the engine's Clock unless the
request context carries an override (ContextWithNow).

# Submission

SubmitBallot checks, in order, the period, the voter (ID shape, class and
whether they already voted) and the ballot (every office exactly once with
a valid choice). Only then is the ballot written, atomically, by the Store.
Two concurrent ballots for one voter are settled by the store's uniqueness
constraint; the loser sees ErrAlreadyVoted.

# Tally

Result folds the store's grouped counts into an ElectionResult. Every
office starts with no-vote and disapprove at zero, and each office's counts
sum to TotalVotes. A row that cannot be folded is a data integrity fault
and fails the whole tally. Results are cached for Config.CacheTTL.

# Errors

Every failure is an *Error whose Code is sent to clients:

	if errors.Is(err, election.ErrAlreadyVoted) { ... }
	code := election.CodeOf(err)
*/
package election

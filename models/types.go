package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Office identifies an elected position
type Office string

// Phase names an interval of the election timeline
type Phase string

const (
	PhaseNotStarted          Phase = "not-started"
	PhaseOpen                Phase = "open"
	PhaseAnnouncementPending Phase = "announcement-pending"
	PhaseAnnounced           Phase = "announced"

	// Voting closed and results not yet public; same interval as AnnouncementPending
	PhaseClosed = PhaseAnnouncementPending
)

// Domain types

type OfficeInfo struct {
	ID    Office `json:"id" mapstructure:"id"`
	Title string `json:"title" mapstructure:"title"`
}

// ElectionPeriod holds the voting and announcement windows.
// Expected ordering: VoteStart < VoteEnd <= ResultAnnouncement.
type ElectionPeriod struct {
	VoteStart          time.Time `json:"vote_start"`
	VoteEnd            time.Time `json:"vote_end"`
	ResultAnnouncement time.Time `json:"result_announcement"`
}

var ErrInvalidPeriod = errors.New("invalid election period")

func (p ElectionPeriod) Validate() error {
	if p.VoteStart.IsZero() || p.VoteEnd.IsZero() || p.ResultAnnouncement.IsZero() {
		return fmt.Errorf("%w: vote_start, vote_end and result_announcement are required", ErrInvalidPeriod)
	}
	if !p.VoteStart.Before(p.VoteEnd) {
		return fmt.Errorf("%w: vote_start (%s) must be before vote_end (%s)",
			ErrInvalidPeriod, p.VoteStart.Format(time.RFC3339), p.VoteEnd.Format(time.RFC3339))
	}
	if p.ResultAnnouncement.Before(p.VoteEnd) {
		return fmt.Errorf("%w: result_announcement (%s) must not be before vote_end (%s)",
			ErrInvalidPeriod, p.ResultAnnouncement.Format(time.RFC3339), p.VoteEnd.Format(time.RFC3339))
	}
	return nil
}

type BallotEntry struct {
	Office Office `json:"position"`
	Choice Choice `json:"candidateId"`
}

// BallotRow is one persisted (office, choice token) pair
type BallotRow struct {
	Office Office
	Token  string
}

// ChoiceCount is one grouped tally row as read from the store
type ChoiceCount struct {
	Office Office
	Token  string
	Count  int
}

// ElectionResult is derived from persisted ballots and replaced wholesale, never mutated
type ElectionResult struct {
	TotalVotes    int                       `json:"totalVotes"`
	VotesByOffice map[Office]map[Choice]int `json:"votesByPosition"`
	ComputedAt    time.Time                 `json:"computedAt"`
}

// BallotCastEvent is published after a ballot commits; it never carries choices
type BallotCastEvent struct {
	VoterHash string    `json:"voter_hash"`
	CastAt    time.Time `json:"cast_at"`
}

// Request types

type SubmitVoteRequest struct {
	Votes []BallotEntry `json:"votes"`
}

// RawVoteRequest is the wire form of a ballot with choices left unparsed,
// so a malformed choice surfaces as a ballot validation failure instead of
// a body decoding error.
type RawVoteRequest struct {
	Votes []RawBallotEntry `json:"votes"`
}

type RawBallotEntry struct {
	Office Office          `json:"position"`
	Choice json.RawMessage `json:"candidateId"`
}

// Entries converts the request; a choice that does not parse is left as
// the invalid zero Choice.
func (r RawVoteRequest) Entries() []BallotEntry {
	entries := make([]BallotEntry, 0, len(r.Votes))
	for _, v := range r.Votes {
		var c Choice
		if err := c.UnmarshalJSON(v.Choice); err != nil {
			c = Choice{}
		}
		entries = append(entries, BallotEntry{Office: v.Office, Choice: c})
	}
	return entries
}

// Response types

type SuccessResponse struct {
	Success bool `json:"success"`
}

type EligibilityResponse struct {
	Success  bool   `json:"success"`
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

type MeResponse struct {
	Success     bool      `json:"success"`
	StudentID   string    `json:"studentId"`
	CurrentTime time.Time `json:"currentTime"`
}

type VoterCountResponse struct {
	Success bool      `json:"success"`
	Count   int       `json:"count"`
	AsOf    time.Time `json:"asOf"`
}

type ElectionResultResponse struct {
	Success bool           `json:"success"`
	Result  ElectionResult `json:"result"`
}

type ElectionInfoResponse struct {
	Success         bool           `json:"success"`
	Period          ElectionPeriod `json:"period"`
	Positions       []OfficeInfo   `json:"positions"`
	Phase           Phase          `json:"phase"`
	NextChange      *time.Time     `json:"next_change,omitempty"`
	NextChangeHuman string         `json:"next_change_human,omitempty"`
}

// Error response

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel choice tokens
const (
	TokenNoVote     = "no-vote"
	TokenDisapprove = "disapprove"
)

// ChoiceKind tags which variant a Choice holds
type ChoiceKind uint8

const (
	ChoiceInvalid ChoiceKind = iota
	ChoiceCandidate
	ChoiceNoVote
	ChoiceDisapprove
)

var ErrMalformedChoice = errors.New("malformed candidate choice")

// Choice is one of: a candidate ID, no-vote, or disapprove.
// The zero value is invalid.
type Choice struct {
	kind      ChoiceKind
	candidate uint64
}

func Candidate(id uint64) Choice {
	if id == 0 {
		return Choice{}
	}
	return Choice{kind: ChoiceCandidate, candidate: id}
}

func NoVote() Choice     { return Choice{kind: ChoiceNoVote} }
func Disapprove() Choice { return Choice{kind: ChoiceDisapprove} }

func (c Choice) Kind() ChoiceKind { return c.kind }

func (c Choice) Valid() bool {
	switch c.kind {
	case ChoiceCandidate:
		return c.candidate > 0
	case ChoiceNoVote, ChoiceDisapprove:
		return true
	}
	return false
}

// CandidateID returns the candidate ID when the choice names a candidate
func (c Choice) CandidateID() (uint64, bool) {
	if c.kind != ChoiceCandidate {
		return 0, false
	}
	return c.candidate, true
}

// Token is the storage form: the decimal candidate ID or a sentinel string
func (c Choice) Token() string {
	switch c.kind {
	case ChoiceCandidate:
		return strconv.FormatUint(c.candidate, 10)
	case ChoiceNoVote:
		return TokenNoVote
	case ChoiceDisapprove:
		return TokenDisapprove
	}
	return ""
}

func (c Choice) String() string {
	if !c.Valid() {
		return "<invalid>"
	}
	return c.Token()
}

// ParseChoiceToken converts a stored token back into a Choice
func ParseChoiceToken(token string) (Choice, error) {
	switch token {
	case TokenNoVote:
		return NoVote(), nil
	case TokenDisapprove:
		return Disapprove(), nil
	}
	if token == "" || strings.TrimSpace(token) != token || token[0] == '+' {
		return Choice{}, fmt.Errorf("%w: %q", ErrMalformedChoice, token)
	}
	id, err := strconv.ParseUint(token, 10, 64)
	if err != nil || id == 0 {
		return Choice{}, fmt.Errorf("%w: %q", ErrMalformedChoice, token)
	}
	return Candidate(id), nil
}

// MarshalJSON writes candidates as numbers and sentinels as strings
func (c Choice) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case ChoiceCandidate:
		return []byte(strconv.FormatUint(c.candidate, 10)), nil
	case ChoiceNoVote, ChoiceDisapprove:
		return json.Marshal(c.Token())
	}
	return nil, ErrMalformedChoice
}

// UnmarshalJSON accepts a positive integer, a numeric string, or a sentinel string
func (c *Choice) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("%w: empty", ErrMalformedChoice)
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedChoice, err)
		}
		parsed, err := ParseChoiceToken(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	parsed, err := ParseChoiceToken(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText is used for JSON map keys
func (c Choice) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrMalformedChoice
	}
	return []byte(c.Token()), nil
}

func (c *Choice) UnmarshalText(text []byte) error {
	parsed, err := ParseChoiceToken(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
)

// Code is the machine-readable error kind returned to clients
type Code string

const (
	CodeElectionNotStarted     Code = "election-not-started"
	CodeElectionEnded          Code = "election-ended"
	CodeElectionNotEnded       Code = "election-not-ended"
	CodeAnnouncementNotStarted Code = "announcement-not-started"
	CodeInvalidVoterID         Code = "invalid-voter-id"
	CodeIneligibleClass        Code = "ineligible-class"
	CodeAlreadyVoted           Code = "already-voted"
	CodeInvalidBallot          Code = "invalid-ballot"
	CodeInternal               Code = "internal-error"
)

// Category groups codes for transport mapping
type Category int

const (
	CategoryStore Category = iota
	CategoryPeriod
	CategoryEligibility
	CategoryValidation
)

func (c Code) Category() Category {
	switch c {
	case CodeElectionNotStarted, CodeElectionEnded, CodeElectionNotEnded, CodeAnnouncementNotStarted:
		return CategoryPeriod
	case CodeInvalidVoterID, CodeIneligibleClass, CodeAlreadyVoted:
		return CategoryEligibility
	case CodeInvalidBallot:
		return CategoryValidation
	}
	return CategoryStore
}

// Ballot validation details
const (
	DetailMissingOffice   = "missing-office"
	DetailDuplicateOffice = "duplicate-office"
	DetailUnknownOffice   = "unknown-office"
	DetailMalformedChoice = "malformed-choice"
)

// Error is returned by every engine operation. Err holds the internal
// cause and must not be exposed to clients.
type Error struct {
	Code   Code
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrElectionNotStarted     = &Error{Code: CodeElectionNotStarted}
	ErrElectionEnded          = &Error{Code: CodeElectionEnded}
	ErrElectionNotEnded       = &Error{Code: CodeElectionNotEnded}
	ErrAnnouncementNotStarted = &Error{Code: CodeAnnouncementNotStarted}
	ErrInvalidVoterID         = &Error{Code: CodeInvalidVoterID}
	ErrIneligibleClass        = &Error{Code: CodeIneligibleClass}
	ErrAlreadyVoted           = &Error{Code: CodeAlreadyVoted}
	ErrInvalidBallot          = &Error{Code: CodeInvalidBallot}
	ErrInternal               = &Error{Code: CodeInternal}
)

func invalidBallot(detail string, format string, args ...any) *Error {
	return &Error{Code: CodeInvalidBallot, Detail: detail, Err: fmt.Errorf(format, args...)}
}

func internal(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Err: fmt.Errorf(format, args...)}
}

// CodeOf maps any error to its code; unknown errors are internal
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// DetailOf returns the detail of an engine error, if any
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return ""
}

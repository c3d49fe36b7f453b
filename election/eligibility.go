// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"
)

const (
	DefaultVoterIDLength  = 10
	DefaultVoterIDPattern = `^\d{8}23$`
)

// VoterRule describes which voter IDs may vote at all.
// Length is checked first, then the class pattern.
type VoterRule struct {
	Length  int
	Pattern *regexp.Regexp
}

func DefaultVoterRule() VoterRule {
	return VoterRule{
		Length:  DefaultVoterIDLength,
		Pattern: regexp.MustCompile(DefaultVoterIDPattern),
	}
}

// NewVoterRule compiles pattern; zero values fall back to the defaults
func NewVoterRule(length int, pattern string) (VoterRule, error) {
	if length <= 0 {
		length = DefaultVoterIDLength
	}
	if pattern == "" {
		pattern = DefaultVoterIDPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return VoterRule{}, fmt.Errorf("invalid voter id pattern %q: %w", pattern, err)
	}
	return VoterRule{Length: length, Pattern: re}, nil
}

// Check runs the structural checks only
func (r VoterRule) Check(voterID string) error {
	if utf8.RuneCountInString(voterID) != r.Length {
		return ErrInvalidVoterID
	}
	if r.Pattern != nil && !r.Pattern.MatchString(voterID) {
		return ErrIneligibleClass
	}
	return nil
}

// Eligibility is the outcome of an eligibility query. Reason is empty when
// the voter is eligible.
type Eligibility struct {
	Eligible bool
	Reason   Code
}

func (e *Engine) checkEligible(ctx context.Context, voterID string) error {
	if err := e.rule.Check(voterID); err != nil {
		return err
	}

	voted, err := e.store.HasVoted(ctx, voterID)
	if err != nil {
		return internal("has-voted lookup: %w", err)
	}
	if voted {
		return ErrAlreadyVoted
	}
	return nil
}

// CheckEligibility reports whether voterID could submit a ballot now.
// Only store failures are returned as errors.
func (e *Engine) CheckEligibility(ctx context.Context, voterID string) (Eligibility, error) {
	err := e.checkEligible(ctx, voterID)
	if err == nil {
		return Eligibility{Eligible: true}, nil
	}

	code := CodeOf(err)
	if code == CodeInternal {
		e.logger.Error("eligibility check failed", "error", err)
		return Eligibility{}, err
	}
	return Eligibility{Eligible: false, Reason: code}, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"encoding/base64"
	"strings"
	"time"
)

// DevProvider accepts base64("<voterID>:<RFC3339 time>") without any
// signature. The time part is optional and overrides the request's current
// time. Only wired in the development environment.
type DevProvider struct{}

func (DevProvider) Authenticate(_ context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrMissingAuthorization
	}

	raw, err := base64.StdEncoding.DecodeString(credential)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	voterID, at, _ := strings.Cut(string(raw), ":")
	if voterID == "" {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{VoterID: voterID}
	if at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return Identity{}, ErrInvalidToken
		}
		id.Now = &t
	}
	return id, nil
}

// DevCredential builds the credential DevProvider accepts
func DevCredential(voterID string, at time.Time) string {
	raw := voterID
	if !at.IsZero() {
		raw += ":" + at.Format(time.RFC3339)
	}
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

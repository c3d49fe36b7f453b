// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// Authentication failures. The messages are the codes sent to clients.
var (
	ErrMissingAuthorization = errors.New("missing-authorization")
	ErrInvalidToken         = errors.New("invalid-token")
	ErrNotAuthorizedDomain  = errors.New("not-authorized-domain")
)

// Identity is an authenticated voter. Now is set only when the credential
// carries a time override (development mode).
type Identity struct {
	VoterID string
	Email   string
	Now     *time.Time
}

// IdentityProvider turns a credential into a voter identity
type IdentityProvider interface {
	Authenticate(ctx context.Context, credential string) (Identity, error)
}

// HashVoterID creates a one-way hash of a voter ID for events and logs.
// Includes salt to prevent rainbow table attacks.
func HashVoterID(voterID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(voterID))
	sum := h.Sum(nil)
	// First 16 bytes (128 bits) is plenty to tell voters apart
	return hex.EncodeToString(sum[:16])
}

// splitEmail returns the local part and the lowercased domain
func splitEmail(email string) (local, domain string, ok bool) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", "", false
	}
	return email[:at], strings.ToLower(email[at+1:]), true
}

// domainAllowed accepts the domain itself and any of its subdomains
func domainAllowed(domain, allowed string) bool {
	if allowed == "" {
		return true
	}
	allowed = strings.ToLower(allowed)
	return domain == allowed || strings.HasSuffix(domain, "."+allowed)
}

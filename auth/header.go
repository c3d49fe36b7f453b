// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"net/http"
	"strings"
)

// HeaderAuthenticator reads the Authorization header. Bearer tokens go to
// the bearer provider; Basic credentials are only accepted when a basic
// provider is configured.
type HeaderAuthenticator struct {
	bearer IdentityProvider
	basic  IdentityProvider
}

func NewHeaderAuthenticator(bearer, basic IdentityProvider) *HeaderAuthenticator {
	return &HeaderAuthenticator{bearer: bearer, basic: basic}
}

func (a *HeaderAuthenticator) Authenticate(r *http.Request) (Identity, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return Identity{}, ErrMissingAuthorization
	}

	scheme, credential, _ := strings.Cut(header, " ")
	credential = strings.TrimSpace(credential)

	switch {
	case strings.EqualFold(scheme, "Bearer") && a.bearer != nil:
		return a.bearer.Authenticate(r.Context(), credential)
	case strings.EqualFold(scheme, "Basic") && a.basic != nil:
		return a.basic.Authenticate(r.Context(), credential)
	}
	return Identity{}, ErrInvalidToken
}

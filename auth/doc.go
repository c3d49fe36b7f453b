// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth resolves the voter behind a request.

# ID Tokens

JWTProvider verifies HS256 or RS256 ID tokens and takes the voter ID from
the local part of the email claim:

	provider, err := auth.NewJWTProvider(auth.JWTConfig{
		Secret:        []byte(secret),
		Audience:      "ballotbox",
		AllowedDomain: "chula.ac.th",
	})

Addresses outside the allowed domain (or its subdomains) are rejected with
ErrNotAuthorizedDomain.

For providers that rotate signing keys, a KeySet resolves the token's kid
against a published kid to PEM map:

	keys := auth.NewKeySet("https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com", nil)
	provider, err := auth.NewJWTProvider(auth.JWTConfig{KeySet: keys, Issuer: issuer, Audience: project})

# Development Credentials

DevProvider accepts unsigned Basic credentials of the form
base64("<voterID>:<RFC3339 time>"). The optional time becomes the request's
current time, which lets the election windows be exercised by hand:

	curl -H "Authorization: Basic $(echo -n 6512345623:2025-06-10T09:00:00+07:00 | base64)" ...

It is only wired in the development environment.

# Header Dispatch

HeaderAuthenticator reads the Authorization header and hands Bearer
credentials to the token provider and Basic ones to the development
provider. A missing header is ErrMissingAuthorization; anything else it
cannot use is ErrInvalidToken.

# Voter Hashing

	hash := auth.HashVoterID(voterID, salt)

Returns the first 16 bytes (32 hex chars) of HMAC-SHA256. Used for audit
events so raw voter IDs never leave the service.
*/
package auth

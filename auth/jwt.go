// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

type JWTConfig struct {
	// Secret verifies HS256 tokens
	Secret []byte
	// PublicKeyPEM verifies RS256 tokens; takes precedence over Secret
	PublicKeyPEM []byte
	// KeySet verifies RS256 tokens by their kid header; takes precedence
	// over both
	KeySet        *KeySet
	Audience      string
	Issuer        string
	AllowedDomain string
}

// JWTProvider verifies ID tokens and derives the voter ID from the local
// part of the token's email claim
type JWTProvider struct {
	secret        []byte
	publicKey     *rsa.PublicKey
	keySet        *KeySet
	audience      string
	issuer        string
	allowedDomain string
	parser        *jwt.Parser
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

func NewJWTProvider(cfg JWTConfig) (*JWTProvider, error) {
	p := &JWTProvider{
		secret:        cfg.Secret,
		audience:      cfg.Audience,
		issuer:        cfg.Issuer,
		allowedDomain: cfg.AllowedDomain,
	}

	methods := []string{jwt.SigningMethodHS256.Alg()}
	if cfg.KeySet != nil {
		p.keySet = cfg.KeySet
		methods = []string{jwt.SigningMethodRS256.Alg()}
	} else if len(cfg.PublicKeyPEM) > 0 {
		key, err := jwt.ParseRSAPublicKeyFromPEM(cfg.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
		}
		p.publicKey = key
		methods = []string{jwt.SigningMethodRS256.Alg()}
	} else if len(cfg.Secret) == 0 {
		return nil, errors.New("either a JWT secret or an RSA public key is required")
	}

	p.parser = jwt.NewParser(jwt.WithValidMethods(methods))
	return p, nil
}

func (p *JWTProvider) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if p.keySet != nil {
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, ErrUnknownKey
			}
			return p.keySet.Key(ctx, kid)
		}
		if p.publicKey != nil {
			return p.publicKey, nil
		}
		return p.secret, nil
	}
}

func (p *JWTProvider) Authenticate(ctx context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrMissingAuthorization
	}

	var claims idTokenClaims
	token, err := p.parser.ParseWithClaims(credential, &claims, p.keyFunc(ctx))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if p.audience != "" && !claims.VerifyAudience(p.audience, true) {
		return Identity{}, ErrInvalidToken
	}
	if p.issuer != "" && !claims.VerifyIssuer(p.issuer, true) {
		return Identity{}, ErrInvalidToken
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return Identity{}, ErrInvalidToken
	}

	local, domain, ok := splitEmail(claims.Email)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	if !domainAllowed(domain, p.allowedDomain) {
		return Identity{}, ErrNotAuthorizedDomain
	}

	return Identity{VoterID: local, Email: claims.Email}, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrUnknownKey is returned when no published key matches a token's kid
var ErrUnknownKey = errors.New("unknown signing key")

const (
	defaultKeyRefresh = time.Hour
	minKeyRefetch     = time.Minute
)

// KeySet resolves RS256 verification keys by key ID. The URL serves a JSON
// object mapping kid to a PEM certificate or public key, the format of
// Google's securetoken x509 endpoint. Keys are refetched when the
// response's max-age lapses or a token names an unknown kid, at most once
// per minute for the latter.
type KeySet struct {
	url    string
	client *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expires   time.Time
	lastFetch time.Time
	refetch   time.Duration
	now       func() time.Time
}

func NewKeySet(url string, client *http.Client) *KeySet {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &KeySet{
		url:     url,
		client:  client,
		refetch: minKeyRefetch,
		now:     time.Now,
	}
}

// Key returns the public key for kid
func (ks *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	ks.mu.RLock()
	key, ok := ks.keys[kid]
	fresh := ks.now().Before(ks.expires)
	ks.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	now := ks.now()
	// Another caller may have refreshed while we waited
	if key, ok := ks.keys[kid]; ok && now.Before(ks.expires) {
		return key, nil
	}
	if now.Before(ks.expires) && now.Sub(ks.lastFetch) < ks.refetch {
		return nil, ErrUnknownKey
	}

	if err := ks.fetchLocked(ctx); err != nil {
		return nil, err
	}
	if key, ok := ks.keys[kid]; ok {
		return key, nil
	}
	return nil, ErrUnknownKey
}

func (ks *KeySet) fetchLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build key set request: %w", err)
	}
	resp, err := ks.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch key set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("key set returned status %d", resp.StatusCode)
	}

	var raw map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode key set: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(raw))
	for kid, pemText := range raw {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemText))
		if err != nil {
			return fmt.Errorf("failed to parse key %q: %w", kid, err)
		}
		keys[kid] = key
	}

	now := ks.now()
	ks.keys = keys
	ks.lastFetch = now
	ks.expires = now.Add(maxAge(resp.Header.Get("Cache-Control")))
	return nil
}

// maxAge reads max-age from a Cache-Control header
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultKeyRefresh
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyServer publishes a kid to PEM map that tests can rotate
type keyServer struct {
	mu      sync.Mutex
	keys    map[string]string
	fetches atomic.Int32
	srv     *httptest.Server
}

func newKeyServer(t *testing.T) *keyServer {
	t.Helper()
	ks := &keyServer{keys: make(map[string]string)}
	ks.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ks.fetches.Add(1)
		ks.mu.Lock()
		defer ks.mu.Unlock()
		w.Header().Set("Cache-Control", "public, max-age=3600")
		json.NewEncoder(w).Encode(ks.keys)
	}))
	t.Cleanup(ks.srv.Close)
	return ks
}

func (ks *keyServer) publish(t *testing.T, kid string, key *rsa.PrivateKey) {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.keys[kid] = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func signWithKid(t *testing.T, key *rsa.PrivateKey, kid string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims())
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestJWTProviderKeySetRotation(t *testing.T) {
	oldKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	newKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newKeyServer(t)
	server.publish(t, "k1", oldKey)

	keySet := NewKeySet(server.srv.URL, server.srv.Client())
	keySet.refetch = 0
	p, err := NewJWTProvider(JWTConfig{KeySet: keySet, AllowedDomain: "chula.ac.th"})
	require.NoError(t, err)
	ctx := context.Background()

	id, err := p.Authenticate(ctx, signWithKid(t, oldKey, "k1"))
	require.NoError(t, err)
	assert.Equal(t, "6512345623", id.VoterID)

	// the provider rotates in a new key
	server.publish(t, "k2", newKey)
	id, err = p.Authenticate(ctx, signWithKid(t, newKey, "k2"))
	require.NoError(t, err)
	assert.Equal(t, "6512345623", id.VoterID)
	assert.EqualValues(t, 2, server.fetches.Load())

	// a known kid is served from memory
	_, err = p.Authenticate(ctx, signWithKid(t, oldKey, "k1"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, server.fetches.Load())
}

func TestJWTProviderKeySetRejects(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newKeyServer(t)
	server.publish(t, "k1", key)
	p, err := NewJWTProvider(JWTConfig{KeySet: NewKeySet(server.srv.URL, server.srv.Client())})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"missing kid", signWithKid(t, key, "")},
		{"unknown kid", signWithKid(t, key, "k9")},
		{"wrong key for kid", signWithKid(t, other, "k1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Authenticate(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestKeySetThrottlesUnknownKid(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	server := newKeyServer(t)
	server.publish(t, "k1", key)

	keySet := NewKeySet(server.srv.URL, server.srv.Client())
	now := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	keySet.now = func() time.Time { return now }
	ctx := context.Background()

	_, err = keySet.Key(ctx, "k1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = keySet.Key(ctx, "nope")
		assert.ErrorIs(t, err, ErrUnknownKey)
	}
	assert.EqualValues(t, 1, server.fetches.Load())

	now = now.Add(2 * time.Minute)
	_, err = keySet.Key(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.EqualValues(t, 2, server.fetches.Load())
}

func TestMaxAge(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"public, max-age=19800, must-revalidate", 19800 * time.Second},
		{"no-cache", defaultKeyRefresh},
		{"max-age=abc", defaultKeyRefresh},
		{"", defaultKeyRefresh},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, maxAge(tt.header))
		})
	}
}

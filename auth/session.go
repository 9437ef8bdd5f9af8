// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionVerifier checks HS256 session tokens issued by the sign-in service.
// The token subject is the account id.
type SessionVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewSessionVerifier returns nil when secret is empty, which disables sessions.
func NewSessionVerifier(secret string) *SessionVerifier {
	if strings.TrimSpace(secret) == "" {
		return nil
	}
	return &SessionVerifier{secret: []byte(secret), now: time.Now}
}

// Verify parses the token and returns its account id.
func (v *SessionVerifier) Verify(token string) (string, error) {
	if v == nil {
		return "", ErrNoSession
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	accountID := strings.TrimSpace(claims.Subject)
	if accountID == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidSession)
	}
	return accountID, nil
}

// FromRequest verifies the bearer token on r.
// Returns ErrNoSession if sessions are disabled or no bearer token is present.
func (v *SessionVerifier) FromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if v == nil || !ok || strings.TrimSpace(token) == "" {
		return "", ErrNoSession
	}
	return v.Verify(strings.TrimSpace(token))
}

// IssueSession signs a session token for accountID. Used by tests and local tooling.
func IssueSession(accountID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Package auth implements the credential primitives for orgboard: password
// hashing and signed session token issuance/verification.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for any token that fails signature or
	// expiry validation. Callers must treat it the same as a missing token.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims represents the JWT claims structure embedded in session tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// TokenIssuer creates and verifies HMAC-signed session tokens. The secret and
// validity window are fixed at construction so there is exactly one place the
// process can be configured, and no mutable global to default silently.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer builds a TokenIssuer from an explicit secret and token TTL.
// An empty secret is only acceptable in dev mode, where a random one is
// generated per process; sessions then do not survive restarts.
func NewTokenIssuer(secret string, ttl time.Duration, devMode bool) (*TokenIssuer, error) {
	if secret == "" {
		if !devMode {
			return nil, errors.New("jwt secret is required outside dev mode")
		}
		secret = generateRandomSecret()
		slog.Warn("auth.jwt_secret not set; using an auto-generated secret, sessions will not persist across restarts")
	}
	if len(secret) < 32 {
		slog.Warn("auth.jwt_secret is shorter than the recommended 32 characters")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the validity window applied to issued tokens. The session store
// and the cookie max-age both derive their lifetimes from it.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue creates a signed session token for an authenticated user. The expiry
// is exactly now + TTL; ExpiresAt is returned so the caller can persist the
// same instant on the session row.
func (t *TokenIssuer) Issue(userID, email, name string) (token string, expiresAt time.Time, err error) {
	now := time.Now()
	expiresAt = now.Add(t.ttl)

	claims := &Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "orgboard",
			Subject:   userID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a session token, checking both the signature
// and the expiry. Any failure collapses to ErrInvalidToken so callers cannot
// leak why a token was rejected.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// generateRandomSecret creates a cryptographically secure random secret
func generateRandomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// rand.Read failing means the platform entropy source is broken;
		// a time-derived value keeps dev mode usable.
		return fmt.Sprintf("dev-fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

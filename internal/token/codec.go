// Package token implements the stateless access token codec. Access tokens
// are short-lived signed claims binding a user identity; the server keeps no
// record of issued tokens and cannot revoke them individually.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenTTL is how long an issued access token stays valid.
const AccessTokenTTL = 15 * time.Minute

var (
	// ErrInvalidToken is returned for malformed tokens and signature mismatches
	ErrInvalidToken = errors.New("invalid access token")
	// ErrExpiredToken is returned when the token's expiry has passed
	ErrExpiredToken = errors.New("access token expired")
)

// Codec signs and verifies access tokens with an injected process-wide
// secret. The secret is immutable after construction.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a codec with the given signing secret and token lifetime.
// A non-positive ttl falls back to AccessTokenTTL.
func NewCodec(secret []byte, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = AccessTokenTTL
	}
	return &Codec{secret: secret, ttl: ttl}
}

// Issue signs a claim for the given user id with an absolute expiry of
// now + ttl. A signing failure indicates a configuration fault, not a
// per-request condition.
func (c *Codec) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks the signature and expiry of an access token and returns the
// user id it was issued for. Verification is pure: no session lookup happens
// here. A token whose expiry equals the current instant counts as expired.
func (c *Codec) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	if !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// Package session provides the server-side session ledger: issuance,
// lookup, and revocation of refresh-token sessions. Sessions are persisted
// per user; expired entries are not purged proactively, they are rejected
// lazily at verification time.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// RefreshTokenTTL is the lifetime of a refresh-token session. The expiry is
// fixed at creation and never extended: renewing an access token does not
// touch the session.
const RefreshTokenTTL = 10 * 24 * time.Hour

// refreshTokenBytes of entropy per token; hex-encoded to 128 characters.
const refreshTokenBytes = 64

var (
	// ErrSessionNotFound is returned when no session matches a user id and token
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when the matching session has expired
	ErrSessionExpired = errors.New("session expired")
	// ErrPersistence is returned when the ledger cannot be written; the
	// caller must not treat the token as issued
	ErrPersistence = errors.New("session persistence failed")
)

// Manager defines the session ledger operations
type Manager interface {
	Create(ctx context.Context, userID string) (Session, error)
	Find(ctx context.Context, userID, token string) (*Session, error)
	Revoke(ctx context.Context, userID, token string) error
	ListForUser(ctx context.Context, userID string) ([]Session, error)
}

type manager struct {
	store Store
}

// NewManager creates a session manager backed by the given store
func NewManager(store Store) Manager {
	return &manager{store: store}
}

// Create generates a new refresh-token session for the user and persists it.
// The append is a single atomic store operation, so concurrent logins for
// the same user cannot lose each other's entries.
func (m *manager) Create(ctx context.Context, userID string) (Session, error) {
	token, err := generateRefreshToken()
	if err != nil {
		return Session{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	sess := Session{
		Token:     token,
		ExpiresAt: time.Now().Add(RefreshTokenTTL).Unix(),
		CreatedAt: time.Now(),
	}

	if err := m.store.Insert(ctx, userID, sess); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return sess, nil
}

// Find returns the session exactly matching both the user id and the token.
// Expiry is not evaluated here; callers check the returned entry with
// IsExpired so that only the presented session decides the outcome.
func (m *manager) Find(ctx context.Context, userID, token string) (*Session, error) {
	sess, err := m.store.Find(ctx, userID, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	return sess, nil
}

// Revoke removes the matching session entry. Revoking an absent token is
// not an error.
func (m *manager) Revoke(ctx context.Context, userID, token string) error {
	return m.store.Delete(ctx, userID, token)
}

// ListForUser returns every session entry on the user's record, expired
// ones included.
func (m *manager) ListForUser(ctx context.Context, userID string) ([]Session, error) {
	return m.store.ListByUser(ctx, userID)
}

// IsExpired reports whether a session expiry has passed. An expiry equal to
// the current second counts as expired.
func IsExpired(expiresAt int64) bool {
	return expiresAt <= time.Now().Unix()
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for manager tests
type memStore struct {
	mu        sync.Mutex
	sessions  map[string][]Session
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string][]Session)}
}

func (s *memStore) Insert(_ context.Context, userID string, sess Session) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = append(s.sessions[userID], sess)
	return nil
}

func (s *memStore) Find(_ context.Context, userID, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions[userID] {
		if sess.Token == token {
			found := sess
			return &found, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (s *memStore) Delete(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.sessions[userID][:0]
	for _, sess := range s.sessions[userID] {
		if sess.Token != token {
			kept = append(kept, sess)
		}
	}
	s.sessions[userID] = kept
	return nil
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Session(nil), s.sessions[userID]...), nil
}

func TestCreateGeneratesOpaqueToken(t *testing.T) {
	store := newMemStore()
	m := NewManager(store)

	sess, err := m.Create(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Len(t, sess.Token, 128)
	assert.Regexp(t, "^[0-9a-f]+$", sess.Token)

	wantExpiry := time.Now().Add(RefreshTokenTTL).Unix()
	assert.InDelta(t, wantExpiry, sess.ExpiresAt, 2)

	stored, err := m.Find(context.Background(), "user-1", sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, stored.Token)
}

func TestCreateTokensAreUnique(t *testing.T) {
	m := NewManager(newMemStore())

	seen := make(map[string]bool)
	for range 10 {
		sess, err := m.Create(context.Background(), "user-1")
		require.NoError(t, err)
		assert.False(t, seen[sess.Token])
		seen[sess.Token] = true
	}
}

func TestCreateStoreFailure(t *testing.T) {
	store := newMemStore()
	store.insertErr = assert.AnError
	m := NewManager(store)

	_, err := m.Create(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestFindMissingSession(t *testing.T) {
	m := NewManager(newMemStore())

	_, err := m.Find(context.Background(), "user-1", "no-such-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFindRequiresExactUserMatch(t *testing.T) {
	m := NewManager(newMemStore())

	sess, err := m.Create(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = m.Find(context.Background(), "user-2", sess.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRevokeRemovesOnlyMatchingSession(t *testing.T) {
	m := NewManager(newMemStore())
	ctx := context.Background()

	first, err := m.Create(ctx, "user-1")
	require.NoError(t, err)
	second, err := m.Create(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, "user-1", first.Token))

	_, err = m.Find(ctx, "user-1", first.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Find(ctx, "user-1", second.Token)
	assert.NoError(t, err)
}

func TestRevokeAbsentTokenSucceeds(t *testing.T) {
	m := NewManager(newMemStore())

	assert.NoError(t, m.Revoke(context.Background(), "user-1", "never-issued"))
}

func TestIsExpired(t *testing.T) {
	now := time.Now().Unix()

	assert.True(t, IsExpired(now-10))
	assert.True(t, IsExpired(now), "expiry equal to the current second counts as expired")
	assert.False(t, IsExpired(now+10))
}

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tasklist/internal/database"
)

// Store defines the interface for session persistence
type Store interface {
	Insert(ctx context.Context, userID string, sess Session) error
	Find(ctx context.Context, userID, token string) (*Session, error)
	Delete(ctx context.Context, userID, token string) error
	ListByUser(ctx context.Context, userID string) ([]Session, error)
}

// pgStore implements Store on PostgreSQL. Each session is its own row keyed
// by (user_id, token), so appends and removals are single-statement atomic
// writes rather than read-whole-record/write-whole-record cycles.
type pgStore struct {
	db database.Service
}

// NewPostgresStore creates a PostgreSQL-backed session store
func NewPostgresStore(db database.Service) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Insert(ctx context.Context, userID string, sess Session) error {
	query := `
		INSERT INTO sessions (user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.db.Exec(ctx, query, userID, sess.Token, sess.ExpiresAt, sess.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *pgStore) Find(ctx context.Context, userID, token string) (*Session, error) {
	query := `
		SELECT token, expires_at, created_at
		FROM sessions
		WHERE user_id = $1 AND token = $2
	`

	sess := &Session{}
	err := s.db.QueryRow(ctx, query, userID, token).Scan(&sess.Token, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return sess, nil
}

// Delete removes the matching row. Deleting a row that is already gone
// succeeds, which keeps revocation idempotent.
func (s *pgStore) Delete(ctx context.Context, userID, token string) error {
	query := `DELETE FROM sessions WHERE user_id = $1 AND token = $2`

	if _, err := s.db.Exec(ctx, query, userID, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *pgStore) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	query := `
		SELECT token, expires_at, created_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.Token, &sess.ExpiresAt, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

// Package lists implements owner-scoped CRUD for task lists. Every query is
// filtered by the authenticated user id; a list belonging to someone else is
// indistinguishable from a missing one.
package lists

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tasklist/internal/database"
)

// ErrListNotFound is returned when no list matches the id for this owner
var ErrListNotFound = errors.New("list not found")

// sortClauses whitelists the ORDER BY expressions reachable from the sort
// query parameter.
var sortClauses = map[string]string{
	"":         "created_at",
	"created":  "created_at",
	"-created": "created_at DESC",
	"title":    "title",
}

// Repository handles all database operations for lists
type Repository struct {
	db database.Service
}

// NewRepository creates a new lists repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

// ListByUser returns all lists owned by the user, ordered by the given sort
// key. Unknown sort keys fall back to creation order.
func (r *Repository) ListByUser(ctx context.Context, userID string, sort string) ([]List, error) {
	clause, ok := sortClauses[sort]
	if !ok {
		clause = sortClauses[""]
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, title, created_at
		FROM lists
		WHERE user_id = $1
		ORDER BY %s
	`, clause)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	lists := []List{}
	for rows.Next() {
		var l List
		if err := rows.Scan(&l.ID, &l.UserID, &l.Title, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, l)
	}

	return lists, rows.Err()
}

// Create inserts a new list for the user
func (r *Repository) Create(ctx context.Context, userID, title string) (*List, error) {
	query := `
		INSERT INTO lists (id, user_id, title, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, title, created_at
	`

	l := &List{}
	err := r.db.QueryRow(ctx, query, uuid.New(), userID, title, time.Now()).Scan(
		&l.ID, &l.UserID, &l.Title, &l.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	return l, nil
}

// Update changes the list title, scoped to the owner
func (r *Repository) Update(ctx context.Context, userID, listID, title string) (*List, error) {
	query := `
		UPDATE lists
		SET title = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, title, created_at
	`

	l := &List{}
	err := r.db.QueryRow(ctx, query, title, listID, userID).Scan(
		&l.ID, &l.UserID, &l.Title, &l.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to update list: %w", err)
	}

	return l, nil
}

// Delete removes the list and, through the FK cascade, its tasks
func (r *Repository) Delete(ctx context.Context, userID, listID string) error {
	query := `DELETE FROM lists WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, listID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrListNotFound
	}

	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

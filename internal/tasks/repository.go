// Package tasks implements CRUD for tasks inside a list. Mutations verify
// that the enclosing list belongs to the caller before touching any task;
// a foreign list reads as not found.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tasklist/internal/database"
)

var (
	// ErrListNotFound is returned when the list is missing or not the caller's
	ErrListNotFound = errors.New("list not found")
	// ErrTaskNotFound is returned when no task matches within the list
	ErrTaskNotFound = errors.New("task not found")
)

var sortClauses = map[string]string{
	"":         "created_at",
	"created":  "created_at",
	"-created": "created_at DESC",
	"title":    "title",
}

// Repository handles all database operations for tasks
type Repository struct {
	db database.Service
}

// NewRepository creates a new tasks repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

// listOwnedBy reports whether the list exists and belongs to the user
func (r *Repository) listOwnedBy(ctx context.Context, userID, listID string) (bool, error) {
	query := `SELECT 1 FROM lists WHERE id = $1 AND user_id = $2`

	var one int
	err := r.db.QueryRow(ctx, query, listID, userID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check list ownership: %w", err)
	}
	return true, nil
}

// ListByList returns all tasks in a list the user owns
func (r *Repository) ListByList(ctx context.Context, userID, listID, sort string) ([]Task, error) {
	owned, err := r.listOwnedBy(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrListNotFound
	}

	clause, ok := sortClauses[sort]
	if !ok {
		clause = sortClauses[""]
	}

	query := fmt.Sprintf(`
		SELECT id, list_id, title, completed, created_at
		FROM tasks
		WHERE list_id = $1
		ORDER BY %s
	`, clause)

	rows, err := r.db.Query(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.ListID, &t.Title, &t.Completed, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// Create inserts a new task into a list the user owns
func (r *Repository) Create(ctx context.Context, userID, listID, title string) (*Task, error) {
	owned, err := r.listOwnedBy(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrListNotFound
	}

	query := `
		INSERT INTO tasks (id, list_id, title, completed, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id, list_id, title, completed, created_at
	`

	t := &Task{}
	err = r.db.QueryRow(ctx, query, uuid.New(), listID, title, time.Now()).Scan(
		&t.ID, &t.ListID, &t.Title, &t.Completed, &t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return t, nil
}

// Update changes a task's title and/or completion inside a list the user owns
func (r *Repository) Update(ctx context.Context, userID, listID, taskID string, req UpdateTaskRequest) (*Task, error) {
	owned, err := r.listOwnedBy(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrListNotFound
	}

	query := `
		UPDATE tasks
		SET title = COALESCE($1, title), completed = COALESCE($2, completed)
		WHERE id = $3 AND list_id = $4
		RETURNING id, list_id, title, completed, created_at
	`

	t := &Task{}
	err = r.db.QueryRow(ctx, query, req.Title, req.Completed, taskID, listID).Scan(
		&t.ID, &t.ListID, &t.Title, &t.Completed, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return t, nil
}

// Delete removes a task from a list the user owns
func (r *Repository) Delete(ctx context.Context, userID, listID, taskID string) error {
	owned, err := r.listOwnedBy(ctx, userID, listID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrListNotFound
	}

	query := `DELETE FROM tasks WHERE id = $1 AND list_id = $2`

	tag, err := r.db.Exec(ctx, query, taskID, listID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

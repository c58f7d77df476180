package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Task is a single entry inside a list
type Task struct {
	ID        uuid.UUID `json:"_id"`
	ListID    uuid.UUID `json:"_listId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateTaskRequest is the body for POST /lists/:listId/tasks
type CreateTaskRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateTaskRequest is the body for PATCH /lists/:listId/tasks/:taskId.
// Pointer fields distinguish "absent" from zero values.
type UpdateTaskRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

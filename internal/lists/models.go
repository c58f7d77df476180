package lists

import (
	"time"

	"github.com/google/uuid"
)

// List is a task list owned by a single user
type List struct {
	ID        uuid.UUID `json:"_id"`
	UserID    uuid.UUID `json:"_userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateListRequest is the body for POST /lists
type CreateListRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateListRequest is the body for PATCH /lists/:listId
type UpdateListRequest struct {
	Title string `json:"title" binding:"required"`
}

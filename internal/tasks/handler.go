package tasks

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles task HTTP requests behind the access token gate
type Handler struct {
	repo *Repository
}

// NewHandler creates a new tasks handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /lists/:listId/tasks
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	tasks, err := h.repo.ListByList(c.Request.Context(), userID, c.Param("listId"), c.Query("sort"))
	if err != nil {
		h.writeError(c, userID, err, "failed to load tasks")
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// Create handles POST /lists/:listId/tasks
func (h *Handler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	userID := c.GetString("user_id")

	task, err := h.repo.Create(c.Request.Context(), userID, c.Param("listId"), req.Title)
	if err != nil {
		h.writeError(c, userID, err, "failed to create task")
		return
	}

	c.JSON(http.StatusOK, task)
}

// Update handles PATCH /lists/:listId/tasks/:taskId
func (h *Handler) Update(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := c.GetString("user_id")

	task, err := h.repo.Update(c.Request.Context(), userID, c.Param("listId"), c.Param("taskId"), req)
	if err != nil {
		h.writeError(c, userID, err, "failed to update task")
		return
	}

	c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /lists/:listId/tasks/:taskId
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")

	err := h.repo.Delete(c.Request.Context(), userID, c.Param("listId"), c.Param("taskId"))
	if err != nil {
		h.writeError(c, userID, err, "failed to delete task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

func (h *Handler) writeError(c *gin.Context, userID string, err error, fallback string) {
	switch {
	case errors.Is(err, ErrListNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "list not found"})
	case errors.Is(err, ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	default:
		slog.Error("Task operation failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

package lists

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles list HTTP requests. All routes run behind the access
// token gate, so user_id is always present in the context.
type Handler struct {
	repo *Repository
}

// NewHandler creates a new lists handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /lists
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	lists, err := h.repo.ListByUser(c.Request.Context(), userID, c.Query("sort"))
	if err != nil {
		slog.Error("Failed to list lists", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load lists"})
		return
	}

	c.JSON(http.StatusOK, lists)
}

// Create handles POST /lists
func (h *Handler) Create(c *gin.Context) {
	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	userID := c.GetString("user_id")

	list, err := h.repo.Create(c.Request.Context(), userID, req.Title)
	if err != nil {
		slog.Error("Failed to create list", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create list"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// Update handles PATCH /lists/:listId
func (h *Handler) Update(c *gin.Context) {
	var req UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	userID := c.GetString("user_id")

	list, err := h.repo.Update(c.Request.Context(), userID, c.Param("listId"), req.Title)
	if err != nil {
		if errors.Is(err, ErrListNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "list not found"})
			return
		}
		slog.Error("Failed to update list", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update list"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// Delete handles DELETE /lists/:listId
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")

	err := h.repo.Delete(c.Request.Context(), userID, c.Param("listId"))
	if err != nil {
		if errors.Is(err, ErrListNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "list not found"})
			return
		}
		slog.Error("Failed to delete list", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "list deleted"})
}

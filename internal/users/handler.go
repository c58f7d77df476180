package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasklist/internal/session"
	"tasklist/internal/token"
)

// Handler handles authentication-related HTTP requests
type Handler struct {
	users    Service
	sessions session.Manager
	codec    *token.Codec
}

// NewHandler creates a new authentication handler
func NewHandler(users Service, sessions session.Manager, codec *token.Codec) *Handler {
	return &Handler{
		users:    users,
		sessions: sessions,
		codec:    codec,
	}
}

// Signup handles POST /users. On success the response carries both tokens
// in headers and the public user profile in the body.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		case errors.Is(err, ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("Failed to register user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		}
		return
	}

	if !h.issueTokens(c, user) {
		return
	}

	c.JSON(http.StatusOK, user)
}

// Login handles POST /users/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		slog.Error("Failed to verify credentials", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	if !h.issueTokens(c, user) {
		return
	}

	c.JSON(http.StatusOK, user)
}

// NewAccessToken handles GET /users/me/access-token. It runs behind the
// session verification gate, so the refresh token has already been checked;
// renewal only reissues an access token and never touches the session.
func (h *Handler) NewAccessToken(c *gin.Context) {
	userID := c.GetString("user_id")

	access, err := h.codec.Issue(userID)
	if err != nil {
		slog.Error("Failed to sign access token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue access token"})
		return
	}

	c.Header(HeaderAccessToken, access)
	c.JSON(http.StatusOK, AccessTokenResponse{AccessToken: access})
}

// Logout handles DELETE /users/session. Removes exactly the session entry
// matching the presented refresh token; removing an already-absent session
// still succeeds.
func (h *Handler) Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	refreshToken := c.GetString("refresh_token")

	if err := h.sessions.Revoke(c.Request.Context(), userID, refreshToken); err != nil {
		slog.Error("Failed to revoke session", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "session removed"})
}

// issueTokens creates a refresh-token session and signs an access token for
// the user, attaching both as response headers. Reports false after writing
// an error response.
func (h *Handler) issueTokens(c *gin.Context, user *User) bool {
	sess, err := h.sessions.Create(c.Request.Context(), user.ID.String())
	if err != nil {
		slog.Error("Failed to create session", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return false
	}

	access, err := h.codec.Issue(user.ID.String())
	if err != nil {
		// Signing only fails on misconfiguration, not per request
		slog.Error("Failed to sign access token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue access token"})
		return false
	}

	c.Header(HeaderRefreshToken, sess.Token)
	c.Header(HeaderAccessToken, access)
	return true
}

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tasklist/internal/session"
	"tasklist/internal/token"
	"tasklist/internal/users"
)

// Authenticate is the fast-path gate for ordinary API calls: it validates
// the signed access token and binds the user id into the request context.
// No database access happens here. Renewal after a rejection is entirely
// the caller's responsibility.
func Authenticate(codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := codec.Verify(c.GetHeader(users.HeaderAccessToken))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// VerifySession gates the two session-sensitive operations (token renewal,
// logout) on the refresh token. It checks the ledger for an exact
// user-id/token match, then evaluates expiry of the matching entry only:
// other expired sessions on the same user never reject the request.
func VerifySession(sessions session.Manager, userStore users.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken := c.GetHeader(users.HeaderRefreshToken)
		userID := c.GetHeader(users.HeaderUserID)

		// A user id that is not a uuid cannot match any ledger entry, and
		// must not reach the store as a query parameter.
		if _, err := uuid.Parse(userID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "session not found",
			})
			return
		}

		sess, err := sessions.Find(c.Request.Context(), userID, refreshToken)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "session not found",
				})
				return
			}
			slog.Error("Session lookup failed", "error", err, "request_id", c.GetString("request_id"))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "failed to verify session",
			})
			return
		}

		if session.IsExpired(sess.ExpiresAt) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "session expired",
			})
			return
		}

		user, err := userStore.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "session not found",
				})
				return
			}
			slog.Error("User lookup failed", "error", err, "request_id", c.GetString("request_id"))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "failed to verify session",
			})
			return
		}

		if user.Sessions, err = sessions.ListForUser(c.Request.Context(), userID); err != nil {
			slog.Error("Session list failed", "error", err, "request_id", c.GetString("request_id"))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "failed to verify session",
			})
			return
		}

		c.Set("user_id", userID)
		c.Set("user", user)
		c.Set("refresh_token", refreshToken)

		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for log correlation
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()

		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()
	}
}

// LoggingMiddleware logs all requests with structured attributes
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rw := newResponseWriter(c.Writer)
		c.Writer = rw

		c.Next()

		status := c.Writer.Status()

		attrs := []any{
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", float64(time.Since(start).Milliseconds()),
			"client_ip", c.ClientIP(),
			"response_size", rw.Size(),
		}

		if userID := c.GetString("user_id"); userID != "" {
			attrs = append(attrs, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.Error("Request failed - server error", attrs...)
		case status >= 400:
			slog.Warn("Request failed - client error", attrs...)
		default:
			slog.Info("Request completed", attrs...)
		}
	}
}

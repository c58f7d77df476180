package server

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tasklist/internal/config"
	"tasklist/internal/users"
)

// RegisterRoutes builds the router. Signup and login are public; token
// renewal and logout sit behind the session verification gate; everything
// else requires a valid access token.
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(cors.New(corsConfig()))

	r.GET("/health", s.healthHandler)

	r.POST("/users", s.users.Signup)
	r.POST("/users/login", s.users.Login)

	sessionScoped := r.Group("/users")
	sessionScoped.Use(VerifySession(s.sessions, s.userStore))
	{
		sessionScoped.GET("/me/access-token", s.users.NewAccessToken)
		sessionScoped.DELETE("/session", s.users.Logout)
	}

	authed := r.Group("/lists")
	authed.Use(Authenticate(s.codec))
	{
		authed.GET("", s.lists.List)
		authed.POST("", s.lists.Create)
		authed.PATCH("/:listId", s.lists.Update)
		authed.DELETE("/:listId", s.lists.Delete)

		authed.GET("/:listId/tasks", s.tasks.List)
		authed.POST("/:listId/tasks", s.tasks.Create)
		authed.PATCH("/:listId/tasks/:taskId", s.tasks.Update)
		authed.DELETE("/:listId/tasks/:taskId", s.tasks.Delete)
	}

	return r
}

// corsConfig allows the auth headers on requests and exposes the token
// headers so browser clients can read reissued tokens from responses.
func corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PATCH", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			users.HeaderAccessToken, users.HeaderRefreshToken, users.HeaderUserID,
		},
		ExposeHeaders: []string{users.HeaderAccessToken, users.HeaderRefreshToken},
	}

	if origins := config.GetEnvOrDefault("CORS_ALLOW_ORIGINS", ""); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
		cfg.AllowCredentials = true
	} else {
		cfg.AllowAllOrigins = true
	}

	return cfg
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": s.db.Health(c.Request.Context()),
	})
}

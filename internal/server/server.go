// Package server wires the HTTP surface: the router, the two request gates,
// and the CORS/logging middleware stack.
package server

import (
	"tasklist/internal/database"
	"tasklist/internal/lists"
	"tasklist/internal/session"
	"tasklist/internal/tasks"
	"tasklist/internal/token"
	"tasklist/internal/users"
)

// Server holds the dependencies for the HTTP API
type Server struct {
	db        database.Service
	codec     *token.Codec
	sessions  session.Manager
	userStore users.Store

	users *users.Handler
	lists *lists.Handler
	tasks *tasks.Handler
}

// New wires the repositories, services, and handlers over the given
// database and token codec.
func New(db database.Service, codec *token.Codec) *Server {
	sessions := session.NewManager(session.NewPostgresStore(db))
	userRepo := users.NewRepository(db)
	userService := users.NewService(userRepo)

	return &Server{
		db:        db,
		codec:     codec,
		sessions:  sessions,
		userStore: userRepo,
		users:     users.NewHandler(userService, sessions, codec),
		lists:     lists.NewHandler(lists.NewRepository(db)),
		tasks:     tasks.NewHandler(tasks.NewRepository(db)),
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"tasklist/internal/config"
	"tasklist/internal/database"
	"tasklist/internal/logger"
	"tasklist/internal/server"
	"tasklist/internal/token"
)

func main() {
	log := logger.New()
	slog.SetDefault(log)

	if err := config.ValidateEnv([]string{"JWT_SECRET"}); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	secret, err := config.JWTSecret()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	codec := token.NewCodec(secret, config.GetEnvDuration("ACCESS_TOKEN_TTL", token.AccessTokenTTL))
	srv := server.New(db, codec)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", config.GetEnvOrDefault("PORT", "3000")),
		Handler:      srv.RegisterRoutes(),
		ReadTimeout:  config.GetEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout: config.GetEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:  config.GetEnvDuration("SERVER_IDLE_TIMEOUT", time.Minute),
	}

	go func() {
		slog.Info("Starting API server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}

	slog.Info("Server stopped")
}

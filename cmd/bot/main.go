// Proxybot - Telegram admin bot for proxy accounts
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ashureev/proxybot/internal/api"
	"github.com/ashureev/proxybot/internal/auth"
	"github.com/ashureev/proxybot/internal/bot"
	"github.com/ashureev/proxybot/internal/config"
	"github.com/ashureev/proxybot/internal/session"
	"github.com/ashureev/proxybot/internal/store"
	"github.com/ashureev/proxybot/internal/telegram"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting proxybot", "http_port", cfg.HTTPPort, "redis_sessions", cfg.UseRedisSessions())

	// Initialize the account directory.
	directory, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := directory.Close(); closeErr != nil {
			slog.Error("Failed to close account directory", "error", closeErr)
		}
	}()

	if err := directory.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Initialize the session store.
	var sessions session.Store
	if cfg.UseRedisSessions() {
		sessions, err = session.NewRedisStore(session.RedisConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			SessionTTL: cfg.SessionTTL,
		})
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		slog.Info("Redis session store connected", "addr", cfg.Redis.Addr)
	} else {
		sessions = session.NewMemoryStore()
		slog.Info("Using in-memory session store")
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	authorizer := auth.NewStaticList(cfg.AdminUsers)

	// Connect to Telegram.
	tg, err := telegram.New(cfg.BotToken, logger)
	if err != nil {
		slog.Error("Failed to connect to Telegram", "error", err)
		os.Exit(1)
	}

	dispatcher := bot.NewDispatcher(sessions, directory, authorizer, tg, cfg.ProxyHost, cfg.ProxyPort, logger)

	// Setup sidecar HTTP router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	api.NewHandler(directory).RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the long-poll loop.
	go tg.Poll(ctx, dispatcher.HandleMessage)
	slog.Info("Telegram long-poll loop started")

	// Start the HTTP server.
	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Proxybot stopped successfully")
}

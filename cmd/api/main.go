package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/docqa/internal/api"
	"github.com/nikhilbhutani/docqa/internal/config"
	"github.com/nikhilbhutani/docqa/internal/document"
	"github.com/nikhilbhutani/docqa/internal/llm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.App.LogLevel)}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		if !errors.Is(err, config.ErrMissingCredential) {
			slog.Error("invalid config", "error", err)
			os.Exit(1)
		}
		// Document CRUD still works; ask answers with a configuration error.
		slog.Error("generation disabled", "error", err)
	}

	ctx := context.Background()

	// Redis connection (optional)
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unavailable, rate limiter fails open until it returns", "error", err)
		}
		defer rdb.Close()
	}

	store := document.NewStore(document.WithLimits(cfg.Limits.MaxDocuments, cfg.Limits.MaxDocumentLength))
	gateway := llm.NewGateway(cfg.LLM)

	router := api.NewRouter(cfg, store, gateway, rdb)
	handler := router.Setup()
	defer router.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"app", cfg.App.Name,
			"version", cfg.App.Version,
			"addr", cfg.Addr(),
			"provider", cfg.LLM.Provider,
			"model", cfg.LLM.Model,
			"max_documents", cfg.Limits.MaxDocuments,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legalrag/internal/app"
	"legalrag/internal/config"
	"legalrag/internal/contextutil"
	"legalrag/internal/http"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = contextutil.WithLogger(ctx, logger)

	tp, err := app.Tracing(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	// Fails fast when the embedding model does not match the collection
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		_ = a.Close()
	}()

	// The generator is only needed for chat, so an unreachable one is not fatal
	if err := a.LLM.Ping(ctx); err != nil {
		slog.Warn("LLM not reachable, chat will fail until it is", "base_url", cfg.LLMBaseURL, "error", err)
	}

	deps := &http.Deps{
		ChatService:     a.ChatService,
		SearchService:   a.SearchService,
		DocumentService: a.DocumentService,
		VectorStore:     a.VectorStore,
		LLM:             a.LLM,
		CollectionName:  cfg.CollectionName,
		DefaultK:        cfg.SearchK,
		MaxUploadBytes:  cfg.MaxUploadBytes(),
		StaticDir:       staticDir(cfg.StaticDir),
	}

	if in := a.Inbox; in != nil {
		deps.Inbox = in
		slog.Info("Inbox enabled", "dir", in.Root())

		// Ingest what is already there, then follow new files
		go func() {
			if err := in.Scan(ctx); err != nil {
				slog.Error("Inbox scan completed with errors", "error", err)
			}
		}()
		go func() {
			if err := in.Watch(ctx); err != nil {
				slog.Error("Inbox watcher stopped", "error", err)
			}
		}()
	}

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           http.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", server.Addr, "vector_store", cfg.VectorStore)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		_ = a.Close()
		log.Fatalf("API server failed: %v", err)
	}
}

// staticDir returns dir if it exists, so a missing frontend disables static serving.
func staticDir(dir string) string {
	if dir == "" {
		return ""
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		slog.Warn("Static directory not found, frontend disabled", "dir", dir)
		return ""
	}
	return dir
}

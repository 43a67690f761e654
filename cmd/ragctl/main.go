package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"legalrag/internal/app"
	"legalrag/internal/cli"
	"legalrag/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	open := func(ctx context.Context) (*cli.Services, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		logger := app.NewLogger(cfg)
		slog.SetDefault(logger)

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &cli.Services{
			Documents: a.DocumentService,
			Search:    a.SearchService,
			Chat:      a.ChatService,
			Extractor: a.Extractor,
			Chunker:   a.Chunker,
			Close:     a.Close,
		}, nil
	}

	if err := cli.NewRootCmd(open).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

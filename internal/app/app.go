// Package app wires configuration into the ingestion and retrieval components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"legalrag/internal/apperr"
	"legalrag/internal/config"
	"legalrag/internal/contextutil"
	"legalrag/internal/extract"
	"legalrag/internal/inbox"
	"legalrag/internal/indexer"
	"legalrag/internal/llm"
	"legalrag/internal/observability"
	"legalrag/internal/rag"
	"legalrag/internal/service"
	"legalrag/internal/storage"
	"legalrag/internal/vectorstore"
)

// App holds the wired components shared by the server and the CLI.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	VectorStore vectorstore.VectorStore
	Embedder    *llm.EmbeddingsClient
	LLM         *llm.Client
	Chunker     *indexer.Chunker
	Pipeline    *indexer.Pipeline
	Extractor   *extract.Dispatcher
	Engine      rag.Engine

	ChatService     service.ChatService
	SearchService   service.SearchService
	DocumentService service.DocumentService

	// Inbox is nil unless an inbox directory is configured.
	Inbox *inbox.Inbox

	db      *sql.DB
	closers []func() error
}

// NewLogger builds the process logger from the configured level and format.
func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// New opens the vector store, ensures the collection and validates the
// embedding width before returning the wired components.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx = contextutil.WithLogger(ctx, logger)
	a := &App{Config: cfg, Logger: logger}
	ready := false
	defer func() {
		if !ready {
			_ = a.Close()
		}
	}()

	if cfg.UsesDatabase() {
		if err := a.openDatabase(); err != nil {
			return nil, err
		}
	}

	store, err := a.openVectorStore(ctx)
	if err != nil {
		return nil, err
	}
	a.VectorStore = store

	if err := store.EnsureCollection(ctx, cfg.CollectionName, cfg.VectorSize); err != nil {
		return nil, apperr.Configuration("app.New", "collection %q: %w", cfg.CollectionName, err)
	}
	logger.Info("Collection ready", "collection", cfg.CollectionName, "vector_size", cfg.VectorSize)

	a.Embedder = llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	a.LLM = llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	a.Chunker, err = indexer.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, apperr.Configuration("app.New", "chunker: %w", err)
	}
	a.Pipeline = indexer.NewPipeline(a.Chunker, a.Embedder, store, cfg.CollectionName)

	a.Extractor = extract.New(extract.Config{
		PDFToTextPath: cfg.PDFToTextPath,
		OCRURL:        cfg.OCRURL,
	})

	a.Engine = rag.NewEngine(a.Embedder, store, cfg.CollectionName, a.LLM, cfg.SearchK)

	a.ChatService = service.NewChatService(a.Engine)
	a.SearchService = service.NewSearchService(a.Engine)
	a.DocumentService = service.NewDocumentService(a.Extractor, a.Pipeline, cfg.MaxUploadBytes())

	if cfg.InboxDir != "" {
		a.Inbox, err = inbox.New(cfg.InboxDir, a.DocumentService, storage.NewInboxRepo(a.db), a.Extractor.Supported)
		if err != nil {
			return nil, apperr.Configuration("app.New", "inbox: %w", err)
		}
	}

	ready = true
	return a, nil
}

func (a *App) openVectorStore(ctx context.Context) (vectorstore.VectorStore, error) {
	cfg := a.Config

	switch cfg.VectorStore {
	case config.StoreQdrant:
		store, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			return nil, apperr.Configuration("app.openVectorStore", "qdrant client: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.Ping(ctx); err != nil {
			return nil, apperr.ExternalService("app.openVectorStore", err)
		}
		a.Logger.Info("Qdrant vector store connected", "url", cfg.QdrantURL)
		return store, nil

	case config.StoreSQLite:
		a.Logger.Info("SQLite vector store opened", "path", cfg.DBPath)
		return vectorstore.NewSQLiteStore(storage.NewChunkRepo(a.db)), nil
	}

	return nil, apperr.Configuration("app.openVectorStore", "unknown vector store %q", cfg.VectorStore)
}

// Open is New followed by CheckEmbedder. Everything New opened is closed
// again when the check fails.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a, err := New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.CheckEmbedder(contextutil.WithLogger(ctx, logger)); err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.Info("Embedding client validated", "vector_size", a.Embedder.Dimension())
	return a, nil
}

// openDatabase opens and migrates the SQLite database at DBPath.
func (a *App) openDatabase() error {
	db, err := storage.New(a.Config.DBPath)
	if err != nil {
		return apperr.Configuration("app.openDatabase", "open database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	if err := storage.Migrate(db); err != nil {
		return apperr.Configuration("app.openDatabase", "migrate database: %w", err)
	}
	a.db = db
	return nil
}

// CheckEmbedder embeds a probe text and fails when the vector width does not
// match the collection.
func (a *App) CheckEmbedder(ctx context.Context) error {
	vecs, err := a.Embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		return apperr.ExternalService("app.CheckEmbedder", err)
	}
	want := a.Embedder.Dimension()
	if len(vecs) == 0 || len(vecs[0]) != want {
		got := 0
		if len(vecs) > 0 {
			got = len(vecs[0])
		}
		return apperr.Configuration("app.CheckEmbedder", "embedding vector size mismatch: expected %d, got %d", want, got)
	}
	return nil
}

// Tracing starts the OTLP exporter when an endpoint is configured.
func Tracing(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, error) {
	tc := observability.DefaultTracingConfig()
	tc.OTLPEndpoint = cfg.OTLPEndpoint
	tp, err := observability.InitTracing(ctx, tc)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	return tp, nil
}

// Close releases the vector store and database.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"legalrag/internal/handlers"
	"legalrag/internal/service"
	"legalrag/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService     service.ChatService
	SearchService   service.SearchService
	DocumentService service.DocumentService
	VectorStore     vectorstore.VectorStore
	// LLM is pinged by the health check when set.
	LLM handlers.Pinger
	// Inbox enables POST /api/index when set.
	Inbox          handlers.Scanner
	CollectionName string
	DefaultK       int
	MaxUploadBytes int64
	// StaticDir is served at / when set.
	StaticDir string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	uploadHandler := handlers.NewUploadHandler(deps.DocumentService, deps.MaxUploadBytes)
	searchHandler := handlers.NewSearchHandler(deps.SearchService, deps.DefaultK)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.LLM, deps.CollectionName)

	// Paths used by the bundled frontend
	r.Method(http.MethodGet, "/health", healthHandler)
	r.Method(http.MethodPost, "/upload", uploadHandler)
	r.Method(http.MethodPost, "/chat", chatHandler)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodPost, "/upload", uploadHandler)
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodGet, "/search", searchHandler)
		if deps.Inbox != nil {
			r.Method(http.MethodPost, "/index", handlers.NewIndexHandler(deps.Inbox))
		}
	})

	if deps.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(deps.StaticDir)))
	}

	return r
}

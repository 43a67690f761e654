package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"legalrag/internal/contextutil"
	"legalrag/internal/vectorstore"
)

// Pinger checks that a collaborator is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	vectorStore        vectorstore.VectorStore
	llm                Pinger
	collectionName     string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. llm may be nil to skip the generator check.
func NewHealthHandler(vectorStore vectorstore.VectorStore, llm Pinger, collectionName string) *HealthHandler {
	return &HealthHandler{
		vectorStore:        vectorStore,
		llm:                llm,
		collectionName:     collectionName,
		healthCheckTimeout: 5 * time.Second,
	}
}

// CollectionHealth describes the document collection.
type CollectionHealth struct {
	Name        string `json:"name"`
	PointsCount int    `json:"points_count"`
	VectorSize  int    `json:"vector_size"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "ok", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	Collection *CollectionHealth `json:"collection,omitempty"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// Returns 200 if the vector store is reachable, 503 otherwise. An unreachable
// LLM only degrades the status since documents can still be uploaded.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]string),
	}
	httpStatus := http.StatusOK

	if info := h.checkVectorStore(checkCtx, logger); info != nil {
		response.Checks["vector_store"] = "ok"
		response.Collection = &CollectionHealth{
			Name:        h.collectionName,
			PointsCount: info.PointsCount,
			VectorSize:  info.VectorSize,
		}
	} else {
		response.Checks["vector_store"] = "error"
		response.Issues = append(response.Issues, "vector_store_unavailable")
		response.Status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	if h.llm != nil {
		if err := h.llm.Ping(checkCtx); err != nil {
			logger.WarnContext(ctx, "llm health check failed", "error", err)
			response.Checks["llm"] = "error"
			response.Issues = append(response.Issues, "llm_unavailable")
			if response.Status == "ok" {
				response.Status = "degraded"
			}
		} else {
			response.Checks["llm"] = "ok"
		}
	}

	writeJSON(ctx, w, httpStatus, response)
}

// checkVectorStore returns the collection info, or nil if the store is unreachable.
func (h *HealthHandler) checkVectorStore(ctx context.Context, logger *slog.Logger) *vectorstore.CollectionInfo {
	info, err := h.vectorStore.CollectionInfo(ctx, h.collectionName)
	if err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		return nil
	}
	return info
}

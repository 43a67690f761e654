package handlers

import (
	"context"
	"net/http"

	"legalrag/internal/contextutil"
)

// Scanner ingests every supported file of a directory.
type Scanner interface {
	Scan(ctx context.Context) error
}

// IndexHandler handles HTTP requests for re-scanning the inbox directory.
type IndexHandler struct {
	scanner Scanner
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(scanner Scanner) *IndexHandler {
	return &IndexHandler{scanner: scanner}
}

// IndexResponse represents the response from the index endpoint.
type IndexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP starts an inbox scan in the background and returns 202.
// Files are ingested again on every scan.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	logger.InfoContext(ctx, "inbox scan triggered via API")

	// The scan outlives the request; the logger travels with the context values.
	scanCtx := context.WithoutCancel(ctx)
	go func() {
		if err := h.scanner.Scan(scanCtx); err != nil {
			logger.ErrorContext(scanCtx, "inbox scan completed with errors", "error", err)
		} else {
			logger.InfoContext(scanCtx, "inbox scan completed successfully")
		}
	}()

	writeJSON(ctx, w, http.StatusAccepted, IndexResponse{
		Message: "Inbox scan started. Check server logs for progress.",
		Status:  "accepted",
	})
}

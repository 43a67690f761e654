package handlers

import (
	"errors"
	"io"
	"net/http"

	"legalrag/internal/contextutil"
	"legalrag/internal/service"
)

// multipartOverhead is the allowance for multipart headers on top of the file size limit.
const multipartOverhead = 1 << 20

// UploadHandler handles document uploads.
type UploadHandler struct {
	documentService service.DocumentService
	maxBytes        int64
}

// NewUploadHandler creates a new UploadHandler. maxBytes limits the uploaded file size.
func NewUploadHandler(documentService service.DocumentService, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		documentService: documentService,
		maxBytes:        maxBytes,
	}
}

// UploadResponse represents the HTTP response payload for an upload.
type UploadResponse struct {
	Filename       string `json:"filename"`
	Status         string `json:"status"`
	ExtractedChars int    `json:"extracted_chars"`
	Chunks         int    `json:"chunks"`
}

// ServeHTTP accepts a multipart form with a single "file" field.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		logger.WarnContext(ctx, "missing file in upload", "error", err)
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	// Read one byte past the limit so the service can reject oversized files.
	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		logger.ErrorContext(ctx, "failed to read upload", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	resp, err := h.documentService.Upload(ctx, service.UploadRequest{
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to ingest document")
		return
	}

	logger.InfoContext(ctx, "document uploaded", "filename", resp.Filename, "chunks", resp.Chunks)
	writeJSON(ctx, w, http.StatusOK, UploadResponse{
		Filename:       resp.Filename,
		Status:         resp.Status,
		ExtractedChars: resp.ExtractedChars,
		Chunks:         resp.Chunks,
	})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"legalrag/internal/contextutil"
	"legalrag/internal/extract"
)

// StatusIngested is reported for every accepted upload.
const StatusIngested = "Ingested successfully"

// Extractor turns an uploaded file into text.
type Extractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// Ingester chunks, embeds and stores document text.
type Ingester interface {
	// Ingest returns the IDs of the points written.
	Ingest(ctx context.Context, filename, text string) ([]string, error)
	Remove(ctx context.Context, ids []string) error
}

// UploadRequest is a single uploaded file.
type UploadRequest struct {
	Filename string
	Data     []byte
}

// UploadResponse describes the outcome of an upload.
type UploadResponse struct {
	Filename       string
	Status         string
	ExtractedChars int
	Chunks         int
	// PointIDs identifies the stored chunks so a later version can replace them.
	PointIDs []string
}

// DocumentService ingests uploaded documents.
type DocumentService interface {
	Upload(ctx context.Context, req UploadRequest) (UploadResponse, error)
	// Remove deletes the chunks of an earlier upload.
	Remove(ctx context.Context, pointIDs []string) error
}

type documentService struct {
	extractor Extractor
	ingester  Ingester
	maxBytes  int64
}

// NewDocumentService creates a DocumentService. maxBytes <= 0 disables the size limit.
func NewDocumentService(extractor Extractor, ingester Ingester, maxBytes int64) DocumentService {
	return &documentService{
		extractor: extractor,
		ingester:  ingester,
		maxBytes:  maxBytes,
	}
}

// Upload extracts the text of the file and ingests it. A file without any
// text is accepted and produces no chunks.
func (s *documentService) Upload(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	filename := filepath.Base(req.Filename)
	if req.Filename == "" || filename == "." || filename == string(filepath.Separator) {
		return UploadResponse{}, &ValidationError{Field: "file", Message: "filename is required"}
	}
	if len(req.Data) == 0 {
		return UploadResponse{}, &ValidationError{Field: "file", Message: "file is empty"}
	}
	if s.maxBytes > 0 && int64(len(req.Data)) > s.maxBytes {
		return UploadResponse{}, &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file exceeds %d bytes", s.maxBytes),
		}
	}

	logger.InfoContext(ctx, "processing upload", "filename", filename, "bytes", len(req.Data))

	text, err := s.extractor.Extract(ctx, filename, req.Data)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			return UploadResponse{}, &ValidationError{Field: "file", Message: err.Error()}
		}
		logger.ErrorContext(ctx, "failed to extract text", "filename", filename, "error", err)
		return UploadResponse{}, WrapError(err, "failed to extract text")
	}

	ids, err := s.ingester.Ingest(ctx, filename, text)
	if err != nil {
		logger.ErrorContext(ctx, "failed to ingest document", "filename", filename, "error", err)
		return UploadResponse{}, WrapError(err, "failed to ingest document")
	}
	if len(ids) == 0 {
		logger.WarnContext(ctx, "document produced no chunks", "filename", filename)
	}

	return UploadResponse{
		Filename:       filename,
		Status:         StatusIngested,
		ExtractedChars: utf8.RuneCountInString(text),
		Chunks:         len(ids),
		PointIDs:       ids,
	}, nil
}

// Remove deletes previously stored chunks by point ID.
func (s *documentService) Remove(ctx context.Context, pointIDs []string) error {
	if err := s.ingester.Remove(ctx, pointIDs); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to remove chunks", "count", len(pointIDs), "error", err)
		return WrapError(err, "failed to remove chunks")
	}
	return nil
}

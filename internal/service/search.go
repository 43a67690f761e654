package service

import (
	"context"
	"strings"

	"legalrag/internal/contextutil"
	"legalrag/internal/rag"
)

// MaxSearchK caps the number of chunks a single search or chat request may retrieve.
const MaxSearchK = 50

// SearchRequest is a retrieval-only query.
type SearchRequest struct {
	Query string
	K     int
}

// SearchService runs retrieval without generation.
type SearchService interface {
	Search(ctx context.Context, req SearchRequest) ([]rag.RetrievedChunk, error)
}

type searchService struct {
	engine RAGEngine
}

// NewSearchService creates a new SearchService.
func NewSearchService(engine RAGEngine) SearchService {
	return &searchService{engine: engine}
}

// Search returns at most K chunks, nearest first.
func (s *searchService) Search(ctx context.Context, req SearchRequest) ([]rag.RetrievedChunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Query) == "" {
		return nil, &ValidationError{Field: "q", Message: "cannot be empty"}
	}
	if req.K <= 0 || req.K > MaxSearchK {
		return nil, &ValidationError{Field: "k", Message: "must be between 1 and 50"}
	}

	chunks, err := s.engine.SearchChunks(ctx, req.Query, req.K)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "error", err)
		return nil, WrapError(err, "failed to search documents")
	}
	return chunks, nil
}

package handlers

import (
	"net/http"
	"strconv"

	"legalrag/internal/contextutil"
	"legalrag/internal/service"
)

// SearchHandler handles retrieval-only queries.
type SearchHandler struct {
	searchService service.SearchService
	defaultK      int
}

// NewSearchHandler creates a new SearchHandler. defaultK is used when the request has no k.
func NewSearchHandler(searchService service.SearchService, defaultK int) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		defaultK:      defaultK,
	}
}

// SearchResult is a single retrieved chunk.
type SearchResult struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float32 `json:"score"`
	Rank       int     `json:"rank"`
}

// SearchResponse represents the HTTP response payload for a search.
type SearchResponse struct {
	Query   string         `json:"query"`
	K       int            `json:"k"`
	Results []SearchResult `json:"results"`
}

// ServeHTTP handles GET /api/search?q=...&k=...
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query().Get("q")
	k := h.defaultK
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Validation error: k must be an integer")
			return
		}
		k = parsed
	}

	chunks, err := h.searchService.Search(ctx, service.SearchRequest{Query: query, K: k})
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to search documents")
		return
	}

	results := make([]SearchResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, SearchResult{
			ID:         c.ID,
			Text:       c.Text,
			Source:     c.Source,
			ChunkIndex: c.ChunkIndex,
			Score:      c.Score,
			Rank:       c.Rank,
		})
	}
	writeJSON(ctx, w, http.StatusOK, SearchResponse{Query: query, K: k, Results: results})
}

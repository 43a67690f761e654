package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_deps.go -package=mocks legalrag/internal/service RAGEngine,Extractor,Ingester
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_services.go -package=mocks legalrag/internal/service ChatService,SearchService,DocumentService

import (
	"context"
	"fmt"
	"strings"
	"time"

	"legalrag/internal/contextutil"
	"legalrag/internal/rag"
)

// RAGEngine is the retrieval and answering engine as seen by the service layer.
type RAGEngine interface {
	SearchChunks(ctx context.Context, query string, k int) ([]rag.RetrievedChunk, error)
	Ask(ctx context.Context, req rag.AskRequest) (rag.AskResponse, error)
}

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Message string
	// K is the number of chunks to retrieve, at most MaxSearchK. Zero uses the engine default.
	K int
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Response  string
	Context   []string
	TimeTaken time.Duration
}

// ChatService answers questions from the ingested documents.
type ChatService interface {
	// Chat retrieves context for the message and generates an answer.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// chatService implements ChatService.
type chatService struct {
	engine RAGEngine
}

// NewChatService creates a new ChatService.
func NewChatService(engine RAGEngine) ChatService {
	return &chatService{engine: engine}
}

// Chat validates the request and delegates to the engine.
// Engine errors keep their kind so the HTTP layer can map them.
func (s *chatService) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Message) == "" {
		logger.WarnContext(ctx, "empty message in chat request")
		return ChatResponse{}, &ValidationError{
			Field:   "message",
			Message: "cannot be empty",
		}
	}
	if req.K < 0 || req.K > MaxSearchK {
		return ChatResponse{}, &ValidationError{
			Field:   "k",
			Message: fmt.Sprintf("must be between 0 and %d", MaxSearchK),
		}
	}

	resp, err := s.engine.Ask(ctx, rag.AskRequest{Question: req.Message, K: req.K})
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer question", "error", err)
		return ChatResponse{}, WrapError(err, "failed to answer question")
	}

	logger.InfoContext(ctx, "chat request processed successfully",
		"message_length", len(req.Message),
		"reply_length", len(resp.Answer),
		"context_chunks", len(resp.Context),
	)
	return ChatResponse{
		Response:  resp.Answer,
		Context:   resp.Context,
		TimeTaken: resp.TimeTaken,
	}, nil
}

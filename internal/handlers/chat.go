package handlers

import (
	"encoding/json"
	"net/http"

	"legalrag/internal/contextutil"
	"legalrag/internal/service"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Message string `json:"message"`
	K       int    `json:"k,omitempty"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Response string   `json:"response"`
	Context  []string `json:"context"`
	// TimeTaken is the generation time in seconds.
	TimeTaken float64 `json:"time_taken"`
}

// ServeHTTP handles HTTP requests for chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcResp, err := h.chatService.Chat(ctx, service.ChatRequest{
		Message: req.Message,
		K:       req.K,
	})
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to process chat request")
		return
	}

	contextChunks := svcResp.Context
	if contextChunks == nil {
		contextChunks = []string{}
	}
	writeJSON(ctx, w, http.StatusOK, ChatResponse{
		Response:  svcResp.Response,
		Context:   contextChunks,
		TimeTaken: svcResp.TimeTaken.Seconds(),
	})
}

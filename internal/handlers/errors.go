package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"legalrag/internal/apperr"
	"legalrag/internal/contextutil"
	"legalrag/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// statusForError maps service and engine errors to an HTTP status code.
// A search failure is a bad gateway only when an external service caused it.
func statusForError(err error) int {
	switch {
	case service.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrSearch):
		if errors.Is(err, apperr.ErrExternalService) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	case errors.Is(err, apperr.ErrIngestion), errors.Is(err, apperr.ErrConfiguration):
		return http.StatusInternalServerError
	case errors.Is(err, apperr.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps service errors to appropriate HTTP status codes and responses.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	status := statusForError(err)
	if status == http.StatusBadRequest {
		logger.WarnContext(ctx, "request rejected", "error", err)
		var validationErr *service.ValidationError
		errors.As(err, &validationErr)
		writeError(w, status, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}

	logger.ErrorContext(ctx, "service error", "error", err, "status", status)
	switch {
	case status == http.StatusBadGateway:
		writeError(w, status, "External service error")
	case errors.Is(err, apperr.ErrConfiguration):
		writeError(w, status, "Configuration error")
	default:
		writeError(w, status, defaultMsg)
	}
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	app_errors "scribe-ai/backend/internal/errors"
)

// This file contains shared DTOs (Data Transfer Objects) for API responses
// and helper functions for sending consistent HTTP responses.

// ErrorResponse defines the standard JSON structure for error messages:
// a stable machine-readable kind plus a human-readable summary.
type ErrorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// StatusResponse defines a generic success response, typically for operations
// like POST, PUT, DELETE that don't need to return a full resource.
type StatusResponse struct {
	Status string `json:"status"`
}

// UpdateTitleRequest is the DTO for the manual conversation title update
// endpoint.
type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}

// TurnRequestBody is the DTO for starting one agentic turn on a conversation.
type TurnRequestBody struct {
	Content string   `json:"content" validate:"required,min=1"`
	UserID  string   `json:"user_id"`
	Model   string   `json:"model"`
	Scopes  []string `json:"scopes"`
}

// respondWithError is the centralized error handling function for the API
// layer. It maps business-layer errors to HTTP status codes and formats a
// standard JSON error response.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var kind string
	var message string

	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		kind = "not_found"
		message = "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		kind = "validation_failed"
		// Validation errors from the service layer are already descriptive
		// and safe to show.
		message = err.Error()
	case errors.Is(err, app_errors.ErrConflict):
		statusCode = http.StatusConflict
		kind = "conflict"
		message = "The conversation already has a turn in flight."
	case errors.Is(err, app_errors.ErrPermission):
		statusCode = http.StatusForbidden
		kind = "permission_denied"
		message = "You do not have permission to perform this action."
	case errors.Is(err, app_errors.ErrRateLimited):
		statusCode = http.StatusTooManyRequests
		kind = "rate_limit_exceeded"
		message = "Rate limit exceeded. Please retry later."
	case errors.Is(err, app_errors.ErrCircuitOpen):
		statusCode = http.StatusServiceUnavailable
		kind = "circuit_open"
		message = "A downstream service is temporarily unavailable."
	case errors.Is(err, app_errors.ErrStreamTransport):
		statusCode = http.StatusBadGateway
		kind = "stream_transport_failed"
		message = "The model provider is unreachable. Please retry."
	case errors.Is(err, app_errors.ErrTimeout):
		statusCode = http.StatusGatewayTimeout
		kind = "timeout"
		message = "The operation timed out."
	default:
		// Any unhandled error is an internal server error. This prevents
		// leaking implementation details to the client.
		statusCode = http.StatusInternalServerError
		kind = "internal"
		message = "An unexpected internal server error occurred."
	}

	// The original, more detailed error is logged for debugging, while the
	// generic message goes to the client.
	slog.Warn("Responding with error", "status_code", statusCode, "kind", kind, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Kind: kind, Error: message})
}

// respondWithJSON is a low-level helper for marshaling a payload to JSON
// and writing it to the http.ResponseWriter with a given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

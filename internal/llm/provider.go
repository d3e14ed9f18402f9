package llm

import (
	"context"

	"scribe-ai/backend/internal/model"
)

// GenerateRequest describes a single model invocation. Messages carry the
// full conversation so far, including assistant tool_calls messages and tool
// result messages from earlier rounds.
type GenerateRequest struct {
	Model    string
	Messages []model.Message
	Tools    []model.ToolDefinition
}

// GenerateResponse is the result of a non-streaming completion. Used for
// support tasks such as title generation.
type GenerateResponse struct {
	Content string
}

// StreamReader yields deltas from an open model stream. Next returns io.EOF
// when the stream ends normally; any other error is a transport failure.
// Callers must Close the reader when done.
type StreamReader interface {
	Next() (model.Delta, error)
	Close() error
}

// Provider is the interface for a chat-completion model backend.
type Provider interface {
	// OpenStream starts a streaming completion. Errors from OpenStream and
	// from the returned reader wrap ErrStreamTransport when retryable.
	OpenStream(ctx context.Context, req *GenerateRequest) (StreamReader, error)

	// Complete performs a non-streaming completion.
	Complete(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}

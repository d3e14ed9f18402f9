package interfaces

import (
	"context"

	"scribe-ai/backend/internal/model"
	"scribe-ai/backend/internal/service"
)

// This file defines the interfaces for our core services. Depending on these
// interfaces instead of concrete implementations decouples the API layer from
// the service layer and enables testing via mocking.

// ConversationService defines the contract for conversation CRUD logic.
type ConversationService interface {
	CreateConversation(ctx context.Context, req *service.CreateConversationRequest) (*model.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error)
	GetFullConversation(ctx context.Context, conversationID string) (*model.FullConversation, error)
	UpdateConversationTitle(ctx context.Context, conversationID, newTitle string) error
	DeleteConversation(ctx context.Context, conversationID string) error
}

// TurnService defines the contract for running one agentic turn to
// completion.
type TurnService interface {
	RunTurn(ctx context.Context, req *service.TurnRequest) (*service.TurnResult, error)
}

// OpsService defines the contract for runtime observability and the
// operational reset.
type OpsService interface {
	Snapshot() service.OpsSnapshot
	Reset()
}

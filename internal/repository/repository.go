package repository

import (
	"context"

	"scribe-ai/backend/internal/model"
)

// BatchResult reports the outcome of a CommitBatch call.
type BatchResult struct {
	// Applied is false when the batch id was already committed and the
	// call was an idempotent replay.
	Applied bool
	// Messages are the messages actually persisted by this call, with
	// ids, sequence numbers, and timestamps assigned.
	Messages []model.Message
	// DuplicatesFiltered counts submitted messages that were dropped as
	// duplicates of already-persisted state.
	DuplicatesFiltered int
}

// Repository defines the conversation log storage operations.
type Repository interface {
	CreateConversation(ctx context.Context, conversation *model.Conversation) error
	GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error)
	GetConversations(ctx context.Context, userID string) ([]*model.Conversation, error)
	UpdateConversationTitle(ctx context.Context, conversationID, newTitle string) error
	DeleteConversation(ctx context.Context, conversationID string) error

	// AddMessage appends a single message outside any batch, used for the
	// incoming user message before the orchestration loop starts.
	AddMessage(ctx context.Context, conversationID string, message *model.Message) error

	// GetMessages returns the conversation log in append order.
	GetMessages(ctx context.Context, conversationID string) ([]model.Message, error)

	// CommitBatch appends one orchestration round's messages as a single
	// atomic, idempotent, deduplicated unit keyed by batchID. Either the
	// full ordered set becomes visible or nothing does; a replay of an
	// already-committed batchID applies nothing and reports Applied=false.
	CommitBatch(ctx context.Context, conversationID, batchID string, messages []model.Message) (*BatchResult, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	app_errors "scribe-ai/backend/internal/errors"
	"scribe-ai/backend/internal/model"
	"scribe-ai/backend/internal/repository"
)

// ConversationService implements conversation CRUD on top of the repository.
type ConversationService struct {
	repo         repository.Repository
	defaultModel string
}

func NewConversationService(repo repository.Repository, defaultModel string) *ConversationService {
	return &ConversationService{repo: repo, defaultModel: defaultModel}
}

// CreateConversationRequest is the client request for a new conversation.
type CreateConversationRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Title  string `json:"title"`
	Model  string `json:"model"`
}

func (s *ConversationService) CreateConversation(ctx context.Context, req *CreateConversationRequest) (*model.Conversation, error) {
	now := time.Now().UTC()
	conversation := &model.Conversation{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Title:     req.Title,
		Model:     req.Model,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if conversation.Title == "" {
		conversation.Title = "New Conversation"
	}
	if conversation.Model == "" {
		conversation.Model = s.defaultModel
	}
	if err := s.repo.CreateConversation(ctx, conversation); err != nil {
		return nil, fmt.Errorf("could not create conversation: %w", err)
	}
	return conversation, nil
}

func (s *ConversationService) ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	return s.repo.GetConversations(ctx, userID)
}

func (s *ConversationService) GetFullConversation(ctx context.Context, conversationID string) (*model.FullConversation, error) {
	conversation, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: conversation %s", app_errors.ErrNotFound, conversationID)
		}
		return nil, err
	}
	messages, err := s.repo.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("could not get messages: %w", err)
	}
	return &model.FullConversation{Conversation: *conversation, Messages: messages}, nil
}

func (s *ConversationService) UpdateConversationTitle(ctx context.Context, conversationID, newTitle string) error {
	if newTitle == "" {
		return fmt.Errorf("%w: title cannot be empty", app_errors.ErrValidation)
	}
	return s.repo.UpdateConversationTitle(ctx, conversationID, newTitle)
}

func (s *ConversationService) DeleteConversation(ctx context.Context, conversationID string) error {
	return s.repo.DeleteConversation(ctx, conversationID)
}

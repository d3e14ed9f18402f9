package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	app_errors "scribe-ai/backend/internal/errors"
	"scribe-ai/backend/internal/model"
	"scribe-ai/backend/internal/repository"
	mock_repo "scribe-ai/backend/internal/repository/mocks"
	"scribe-ai/backend/internal/service"
)

func TestConversationService_CreateConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		svc := service.NewConversationService(repo, "gpt-oss")

		var created *model.Conversation
		repo.On("CreateConversation", ctx, mock.AnythingOfType("*model.Conversation")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*model.Conversation)
			}).
			Return(nil).Once()

		conversation, err := svc.CreateConversation(ctx, &service.CreateConversationRequest{
			UserID: "user-1",
			Title:  "Groceries",
			Model:  "gpt-oss-large",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, conversation.ID)
		assert.Equal(t, "Groceries", conversation.Title)
		assert.Equal(t, "gpt-oss-large", conversation.Model)
		assert.Same(t, conversation, created)
	})

	t.Run("Defaults", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		svc := service.NewConversationService(repo, "gpt-oss")

		repo.On("CreateConversation", ctx, mock.AnythingOfType("*model.Conversation")).
			Return(nil).Once()

		conversation, err := svc.CreateConversation(ctx, &service.CreateConversationRequest{UserID: "user-1"})
		require.NoError(t, err)
		assert.Equal(t, "New Conversation", conversation.Title)
		assert.Equal(t, "gpt-oss", conversation.Model)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		svc := service.NewConversationService(repo, "gpt-oss")

		repo.On("CreateConversation", ctx, mock.AnythingOfType("*model.Conversation")).
			Return(errors.New("disk full")).Once()

		_, err := svc.CreateConversation(ctx, &service.CreateConversationRequest{UserID: "user-1"})
		assert.ErrorContains(t, err, "could not create conversation")
	})
}

func TestConversationService_GetFullConversation(t *testing.T) {
	ctx := context.Background()
	conversationID := "conv-1"

	t.Run("Success", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		svc := service.NewConversationService(repo, "gpt-oss")

		conversation := &model.Conversation{ID: conversationID, UserID: "user-1", Title: "Groceries"}
		messages := []model.Message{
			{ID: "m1", Role: model.RoleUser, Content: "hi", Timestamp: time.Now().UTC()},
		}
		repo.On("GetConversation", ctx, conversationID).Return(conversation, nil).Once()
		repo.On("GetMessages", ctx, conversationID).Return(messages, nil).Once()

		full, err := svc.GetFullConversation(ctx, conversationID)
		require.NoError(t, err)
		assert.Equal(t, conversationID, full.ID)
		assert.Len(t, full.Messages, 1)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		svc := service.NewConversationService(repo, "gpt-oss")

		repo.On("GetConversation", ctx, conversationID).Return(nil, repository.ErrNotFound).Once()

		_, err := svc.GetFullConversation(ctx, conversationID)
		assert.ErrorIs(t, err, app_errors.ErrNotFound)
	})
}

func TestConversationService_UpdateConversationTitle(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		svc := service.NewConversationService(repo, "gpt-oss")

		repo.On("UpdateConversationTitle", ctx, "conv-1", "Renamed").Return(nil).Once()

		assert.NoError(t, svc.UpdateConversationTitle(ctx, "conv-1", "Renamed"))
	})

	t.Run("EmptyTitle", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		svc := service.NewConversationService(repo, "gpt-oss")

		err := svc.UpdateConversationTitle(ctx, "conv-1", "")
		assert.ErrorIs(t, err, app_errors.ErrValidation)
	})
}

func TestConversationService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := mock_repo.NewMockRepository(t)
	svc := service.NewConversationService(repo, "gpt-oss")

	conversations := []*model.Conversation{{ID: "conv-1"}, {ID: "conv-2"}}
	repo.On("GetConversations", ctx, "user-1").Return(conversations, nil).Once()
	repo.On("DeleteConversation", ctx, "conv-1").Return(nil).Once()

	listed, err := svc.ListConversations(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	assert.NoError(t, svc.DeleteConversation(ctx, "conv-1"))
}

package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scribe-ai/backend/internal/api"
	app_errors "scribe-ai/backend/internal/errors"
	"scribe-ai/backend/internal/interfaces/mocks"
	"scribe-ai/backend/internal/model"
	"scribe-ai/backend/internal/service"
)

type handlerMocks struct {
	conversations *mocks.MockConversationService
	turns         *mocks.MockTurnService
	ops           *mocks.MockOpsService
}

func setupRouter(t *testing.T) (http.Handler, handlerMocks) {
	m := handlerMocks{
		conversations: mocks.NewMockConversationService(t),
		turns:         mocks.NewMockTurnService(t),
		ops:           mocks.NewMockOpsService(t),
	}
	router := api.NewRouter(
		api.NewConversationHandler(m.conversations, m.turns),
		api.NewOpsHandler(m.ops),
	)
	return router, m
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCreateConversation(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, m := setupRouter(t)
		created := &model.Conversation{ID: "conv-1", UserID: "user-1", Title: "Groceries"}
		m.conversations.On("CreateConversation", mock.Anything, mock.AnythingOfType("*service.CreateConversationRequest")).
			Return(created, nil).Once()

		rr := doRequest(router, http.MethodPost, "/api/v1/conversations", `{"user_id":"user-1","title":"Groceries"}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp model.Conversation
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "conv-1", resp.ID)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := doRequest(router, http.MethodPost, "/api/v1/conversations", `{"user_id":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("DefaultUser", func(t *testing.T) {
		router, m := setupRouter(t)
		m.conversations.On("CreateConversation", mock.Anything, mock.MatchedBy(func(req *service.CreateConversationRequest) bool {
			return req.UserID == "default-user"
		})).Return(&model.Conversation{ID: "conv-1"}, nil).Once()

		rr := doRequest(router, http.MethodPost, "/api/v1/conversations", `{}`)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})
}

func TestGetConversation(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, m := setupRouter(t)
		full := &model.FullConversation{
			Conversation: model.Conversation{ID: "conv-1", Title: "Groceries"},
			Messages:     []model.Message{{Role: model.RoleUser, Content: "hi"}},
		}
		m.conversations.On("GetFullConversation", mock.Anything, "conv-1").Return(full, nil).Once()

		rr := doRequest(router, http.MethodGet, "/api/v1/conversations/conv-1", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp model.FullConversation
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Len(t, resp.Messages, 1)
	})

	t.Run("NotFound", func(t *testing.T) {
		router, m := setupRouter(t)
		m.conversations.On("GetFullConversation", mock.Anything, "missing").
			Return(nil, fmt.Errorf("%w: conversation missing", app_errors.ErrNotFound)).Once()

		rr := doRequest(router, http.MethodGet, "/api/v1/conversations/missing", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InternalError", func(t *testing.T) {
		router, m := setupRouter(t)
		m.conversations.On("GetFullConversation", mock.Anything, "conv-1").
			Return(nil, app_errors.ErrInternal).Once()

		rr := doRequest(router, http.MethodGet, "/api/v1/conversations/conv-1", "")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestUpdateConversationTitle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, m := setupRouter(t)
		m.conversations.On("UpdateConversationTitle", mock.Anything, "conv-1", "Renamed").Return(nil).Once()

		rr := doRequest(router, http.MethodPut, "/api/v1/conversations/conv-1/title", `{"title":"Renamed"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("EmptyTitle", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := doRequest(router, http.MethodPut, "/api/v1/conversations/conv-1/title", `{"title":""}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleTurn(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, m := setupRouter(t)
		result := &service.TurnResult{
			ConversationID:    "conv-1",
			Content:           "Created the note.",
			Rounds:            2,
			ToolCallsExecuted: 1,
		}
		m.turns.On("RunTurn", mock.Anything, mock.MatchedBy(func(req *service.TurnRequest) bool {
			return req.ConversationID == "conv-1" &&
				req.Content == "Add milk to my groceries" &&
				len(req.Scopes) == 2
		})).Return(result, nil).Once()

		rr := doRequest(router, http.MethodPost, "/api/v1/conversations/conv-1/turns",
			`{"content":"Add milk to my groceries"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp service.TurnResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Rounds)
		assert.Equal(t, "Created the note.", resp.Content)
	})

	t.Run("MissingContent", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := doRequest(router, http.MethodPost, "/api/v1/conversations/conv-1/turns", `{}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Conflict", func(t *testing.T) {
		router, m := setupRouter(t)
		m.turns.On("RunTurn", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: conversation conv-1 already has a turn in flight", app_errors.ErrConflict)).Once()

		rr := doRequest(router, http.MethodPost, "/api/v1/conversations/conv-1/turns", `{"content":"hi"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)

		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "conflict", resp.Kind)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("RateLimited", func(t *testing.T) {
		router, m := setupRouter(t)
		m.turns.On("RunTurn", mock.Anything, mock.Anything).
			Return(nil, app_errors.ErrRateLimited).Once()

		rr := doRequest(router, http.MethodPost, "/api/v1/conversations/conv-1/turns", `{"content":"hi"}`)
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)

		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "rate_limit_exceeded", resp.Kind)
	})

	t.Run("ProviderDown", func(t *testing.T) {
		router, m := setupRouter(t)
		m.turns.On("RunTurn", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: upstream returned 502", app_errors.ErrStreamTransport)).Once()

		rr := doRequest(router, http.MethodPost, "/api/v1/conversations/conv-1/turns", `{"content":"hi"}`)
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestOpsEndpoints(t *testing.T) {
	t.Run("Metrics", func(t *testing.T) {
		router, m := setupRouter(t)
		snapshot := service.OpsSnapshot{
			Orchestrator: service.MetricsSnapshot{TurnsCompleted: 7},
		}
		m.ops.On("Snapshot").Return(snapshot).Once()

		rr := doRequest(router, http.MethodGet, "/api/v1/ops/metrics", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp service.OpsSnapshot
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, int64(7), resp.Orchestrator.TurnsCompleted)
	})

	t.Run("Reset", func(t *testing.T) {
		router, m := setupRouter(t)
		m.ops.On("Reset").Return().Once()

		rr := doRequest(router, http.MethodPost, "/api/v1/ops/reset", "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestHealthz(t *testing.T) {
	router, _ := setupRouter(t)
	rr := doRequest(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

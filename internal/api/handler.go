package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "scribe-ai/backend/internal/errors"
	"scribe-ai/backend/internal/interfaces"
	"scribe-ai/backend/internal/service"
	"scribe-ai/backend/internal/tool"
)

// defaultUserID stands in until real authentication is wired in front of the
// API.
const defaultUserID = "default-user"

// ConversationHandler handles HTTP requests for conversations and turns.
type ConversationHandler struct {
	conversations interfaces.ConversationService
	turns         interfaces.TurnService
}

func NewConversationHandler(conversations interfaces.ConversationService, turns interfaces.TurnService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, turns: turns}
}

func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req service.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	conversation, err := h.conversations.CreateConversation(r.Context(), &req)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, conversation)
}

func (h *ConversationHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = defaultUserID
	}
	conversations, err := h.conversations.ListConversations(r.Context(), userID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, conversations)
}

func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	full, err := h.conversations.GetFullConversation(r.Context(), conversationID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, full)
}

func (h *ConversationHandler) UpdateConversationTitle(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	if err := h.conversations.UpdateConversationTitle(r.Context(), conversationID, req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if err := h.conversations.DeleteConversation(r.Context(), conversationID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleTurn runs one full agentic turn on a conversation. The response is
// the final turn result; a turn that hits the round budget still responds
// 200 with the budget notice as its content.
func (h *ConversationHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var body TurnRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&body); err != nil {
		respondWithError(w, err)
		return
	}
	if body.UserID == "" {
		body.UserID = defaultUserID
	}
	if len(body.Scopes) == 0 {
		body.Scopes = []string{tool.ScopeRead, tool.ScopeWrite}
	}

	result, err := h.turns.RunTurn(r.Context(), &service.TurnRequest{
		ConversationID: conversationID,
		UserID:         body.UserID,
		Content:        body.Content,
		Model:          body.Model,
		Scopes:         body.Scopes,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

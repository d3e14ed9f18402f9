package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"scribe-ai/backend/internal/backoff"
	app_errors "scribe-ai/backend/internal/errors"
	"scribe-ai/backend/internal/llm"
	"scribe-ai/backend/internal/model"
	"scribe-ai/backend/internal/ratelimit"
	"scribe-ai/backend/internal/repository"
)

const maxRoundsNotice = "I reached the maximum number of tool-calling rounds for this request. " +
	"Here is what I completed so far; please send a follow-up message to continue."

// OrchestratorConfig holds the orchestration knobs.
type OrchestratorConfig struct {
	Model         string
	SupportModel  string
	SystemPrompt  string
	MaxRounds     int
	StreamTimeout time.Duration
	StreamRetries int
	Backoff       backoff.Policy
}

// TurnRequest starts one user turn on a conversation.
type TurnRequest struct {
	ConversationID string
	UserID         string
	Content        string
	// Model overrides the configured main model when set.
	Model string
	// Scopes are the capability scopes granted to this turn's tool calls.
	Scopes []string
}

// TurnResult is the final outcome of one fully orchestrated turn.
type TurnResult struct {
	ConversationID    string `json:"conversation_id"`
	Content           string `json:"content"`
	Reasoning         string `json:"reasoning,omitempty"`
	Rounds            int    `json:"rounds"`
	ToolCallsExecuted int    `json:"tool_calls_executed"`
	MaxRoundsReached  bool   `json:"max_rounds_reached"`
}

// Orchestrator drives the agentic loop: stream the model, reassemble tool
// calls, execute them through the gateway, persist each round atomically,
// and feed the results back until the model produces a final answer.
type Orchestrator struct {
	provider llm.Provider
	gateway  *ToolGateway
	repo     repository.Repository
	metrics  *Metrics
	limiter  *ratelimit.Limiter
	config   OrchestratorConfig

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewOrchestrator(
	provider llm.Provider,
	gateway *ToolGateway,
	repo repository.Repository,
	metrics *Metrics,
	limiter *ratelimit.Limiter,
	config OrchestratorConfig,
) *Orchestrator {
	if config.MaxRounds <= 0 {
		config.MaxRounds = 10
	}
	if config.StreamRetries <= 0 {
		config.StreamRetries = 3
	}
	return &Orchestrator{
		provider: provider,
		gateway:  gateway,
		repo:     repo,
		metrics:  metrics,
		limiter:  limiter,
		config:   config,
		inFlight: make(map[string]struct{}),
	}
}

// acquire marks a conversation as having a turn in flight. A second turn on
// the same conversation is rejected rather than queued: two concurrent loops
// would race on persistence and interleave tool side effects.
func (o *Orchestrator) acquire(conversationID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inFlight[conversationID]; busy {
		return false
	}
	o.inFlight[conversationID] = struct{}{}
	return true
}

func (o *Orchestrator) release(conversationID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, conversationID)
}

// RunTurn processes one user message to completion.
func (o *Orchestrator) RunTurn(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	// Turns count against their own quota, separate from the per-user tool
	// budget the gateway enforces mid-turn.
	if decision := o.limiter.Check("chat:" + req.UserID); !decision.Allowed {
		return nil, fmt.Errorf("%w: chat quota exhausted for user %s, resets at %s",
			app_errors.ErrRateLimited, req.UserID, decision.ResetTime.UTC().Format(time.RFC3339))
	}

	if !o.acquire(req.ConversationID) {
		return nil, fmt.Errorf("%w: conversation %s already has a turn in flight",
			app_errors.ErrConflict, req.ConversationID)
	}
	defer o.release(req.ConversationID)

	conversation, err := o.repo.GetConversation(ctx, req.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: conversation %s", app_errors.ErrNotFound, req.ConversationID)
		}
		return nil, err
	}

	userMessage := &model.Message{Role: model.RoleUser, Content: req.Content}
	if err := o.repo.AddMessage(ctx, req.ConversationID, userMessage); err != nil {
		return nil, fmt.Errorf("could not persist user message: %w", err)
	}

	history, err := o.loadHistory(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	result, err := o.loop(ctx, req, history)
	if err != nil {
		o.metrics.TurnFailed()
		return nil, err
	}
	o.metrics.TurnCompleted()

	if conversation.Title == "" || conversation.Title == "New Conversation" {
		go o.generateTitle(context.Background(), req.ConversationID, req.Content, result.Content)
	}

	return result, nil
}

// loop runs streaming rounds until the model stops requesting tools or the
// round budget runs out.
func (o *Orchestrator) loop(ctx context.Context, req *TurnRequest, history []model.Message) (*TurnResult, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = o.config.Model
	}
	caller := CallerContext{
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		Scopes:         req.Scopes,
	}

	result := &TurnResult{ConversationID: req.ConversationID}

	for round := 1; round <= o.config.MaxRounds; round++ {
		parsed, err := o.streamRound(ctx, modelName, history)
		if err != nil {
			return nil, err
		}
		o.metrics.RoundExecuted()
		o.metrics.ToolCallsDropped(parsed.Dropped)
		result.Rounds = round

		if len(parsed.ToolCalls) == 0 {
			// Final answer: persist the closing assistant message as its
			// own single-message batch.
			assistant := model.Message{
				Role:      model.RoleAssistant,
				Content:   parsed.Content,
				Reasoning: parsed.Reasoning,
			}
			if err := o.commitTurn(ctx, req.ConversationID, []model.Message{assistant}); err != nil {
				return nil, err
			}
			result.Content = parsed.Content
			result.Reasoning = parsed.Reasoning
			return result, nil
		}

		assistant := model.Message{
			Role:      model.RoleAssistant,
			Content:   parsed.Content,
			Reasoning: parsed.Reasoning,
			ToolCalls: make([]model.ToolCall, 0, len(parsed.ToolCalls)),
		}
		for _, call := range parsed.ToolCalls {
			assistant.ToolCalls = append(assistant.ToolCalls, model.ToolCall{
				ID:        call.ID,
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}

		// Tool calls run strictly in parse order: a later call may depend
		// on an earlier one's side effects. A failing call never aborts
		// its siblings.
		turn := []model.Message{assistant}
		for _, call := range parsed.ToolCalls {
			toolResult := o.gateway.Execute(ctx, call, caller)
			result.ToolCallsExecuted++
			turn = append(turn, model.Message{
				Role:       model.RoleTool,
				Content:    toolResult.Content,
				ToolCallID: toolResult.ToolCallID,
				Name:       toolResult.Name,
			})
		}

		if err := o.commitTurn(ctx, req.ConversationID, turn); err != nil {
			return nil, err
		}
		history = append(history, turn...)
	}

	// Round budget exhausted: close the turn with a notice instead of
	// failing the whole request.
	slog.Warn("round budget exhausted", "conversation_id", req.ConversationID, "rounds", o.config.MaxRounds)
	assistant := model.Message{Role: model.RoleAssistant, Content: maxRoundsNotice}
	if err := o.commitTurn(ctx, req.ConversationID, []model.Message{assistant}); err != nil {
		return nil, err
	}
	result.Content = maxRoundsNotice
	result.MaxRoundsReached = true
	return result, nil
}

// streamRound opens a model stream and drives the parser over it, retrying
// transport failures with backoff. A round that yields neither content nor a
// usable tool call while dropping unparseable ones counts as a transport
// failure and is retried the same way.
func (o *Orchestrator) streamRound(ctx context.Context, modelName string, history []model.Message) (*llm.ParseResult, error) {
	genReq := &llm.GenerateRequest{
		Model:    modelName,
		Messages: history,
		Tools:    o.gateway.Definitions(),
	}

	retryable := func(err error) bool {
		return errors.Is(err, app_errors.ErrStreamTransport) || errors.Is(err, app_errors.ErrTimeout)
	}

	return backoff.Retry(ctx, o.config.Backoff, o.config.StreamRetries, retryable,
		func(attempt int) (*llm.ParseResult, error) {
			if attempt > 1 {
				o.metrics.StreamRetry()
			}
			return o.consumeStream(ctx, genReq)
		})
}

func (o *Orchestrator) consumeStream(ctx context.Context, genReq *llm.GenerateRequest) (*llm.ParseResult, error) {
	streamCtx := ctx
	var cancel context.CancelFunc
	if o.config.StreamTimeout > 0 {
		streamCtx, cancel = context.WithTimeout(ctx, o.config.StreamTimeout)
		defer cancel()
	}

	reader, err := o.provider.OpenStream(streamCtx, genReq)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	parser := llm.NewStreamParser()
	for {
		delta, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		parser.Feed(delta)
	}

	parsed := parser.Finish()
	if parsed.Content == "" && len(parsed.ToolCalls) == 0 && parsed.Dropped > 0 {
		return nil, fmt.Errorf("%w: stream produced no usable output (%d unparseable tool calls)",
			app_errors.ErrStreamTransport, parsed.Dropped)
	}
	return &parsed, nil
}

func (o *Orchestrator) commitTurn(ctx context.Context, conversationID string, messages []model.Message) error {
	batchID := uuid.New().String()
	batch, err := o.repo.CommitBatch(ctx, conversationID, batchID, messages)
	if err != nil {
		return fmt.Errorf("could not commit turn: %w", err)
	}
	if batch.Applied {
		o.metrics.BatchCommitted()
	} else {
		o.metrics.BatchReplayed()
	}
	return nil
}

// loadHistory returns the conversation as model context: the system prompt
// followed by the persisted log, minus assistant tool calls that are still
// missing a result (and any orphaned results), which must not be replayed
// until resolved.
func (o *Orchestrator) loadHistory(ctx context.Context, conversationID string) ([]model.Message, error) {
	persisted, err := o.repo.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("could not load conversation history: %w", err)
	}

	history := make([]model.Message, 0, len(persisted)+1)
	history = append(history, model.Message{Role: model.RoleSystem, Content: o.config.SystemPrompt})
	history = append(history, sanitizeHistory(persisted)...)
	return history, nil
}

// sanitizeHistory drops assistant messages whose tool calls are not all
// resolved by a tool message, and tool messages that no kept assistant
// message requested.
func sanitizeHistory(messages []model.Message) []model.Message {
	resolved := make(map[string]bool)
	for _, msg := range messages {
		if msg.Role == model.RoleTool && msg.ToolCallID != "" {
			resolved[msg.ToolCallID] = true
		}
	}

	requested := make(map[string]bool)
	kept := make([]model.Message, 0, len(messages))
	for _, msg := range messages {
		switch {
		case msg.Role == model.RoleAssistant && len(msg.ToolCalls) > 0:
			complete := true
			for _, call := range msg.ToolCalls {
				if !resolved[call.ID] {
					complete = false
					break
				}
			}
			if !complete {
				continue
			}
			for _, call := range msg.ToolCalls {
				requested[call.ID] = true
			}
			kept = append(kept, msg)
		case msg.Role == model.RoleTool:
			if !requested[msg.ToolCallID] {
				continue
			}
			kept = append(kept, msg)
		default:
			kept = append(kept, msg)
		}
	}
	return kept
}

// generateTitle asks the support model for a short conversation title after
// the first completed turn.
func (o *Orchestrator) generateTitle(ctx context.Context, conversationID, userQuery, assistantResponse string) {
	messages := []model.Message{
		{
			Role:    model.RoleSystem,
			Content: "You are an expert at creating short, concise titles for conversations. Respond with only the title, and nothing else.",
		},
		{
			Role: model.RoleUser,
			Content: fmt.Sprintf("Based on the following conversation, what would be a good title?\n\n---\nUser: %s\n\nAssistant: %s\n---",
				truncate(userQuery, 150),
				truncate(assistantResponse, 200),
			),
		},
	}

	resp, err := o.provider.Complete(ctx, &llm.GenerateRequest{
		Model:    o.config.SupportModel,
		Messages: messages,
	})
	if err != nil {
		slog.Warn("title generation failed", "conversation_id", conversationID, "error", err)
		return
	}

	title := strings.TrimSpace(resp.Content)
	title = strings.Trim(title, `"'`)
	if title == "" {
		return
	}
	if err := o.repo.UpdateConversationTitle(ctx, conversationID, title); err != nil {
		slog.Warn("could not save generated title", "conversation_id", conversationID, "error", err)
	}
}

// truncate shortens s to at most max runes, never splitting a multi-byte
// character.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scribe-ai/backend/internal/circuit"
	app_errors "scribe-ai/backend/internal/errors"
	"scribe-ai/backend/internal/llm"
	"scribe-ai/backend/internal/model"
	"scribe-ai/backend/internal/ratelimit"
	"scribe-ai/backend/internal/tool"
)

// CallerContext carries the identity and capability scopes of whoever a tool
// executes on behalf of.
type CallerContext struct {
	UserID         string
	ConversationID string
	Scopes         []string
}

func (c CallerContext) hasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ToolGateway resolves and executes tool calls under rate limiting, circuit
// breaking, schema validation, and capability gating. Every failure mode is
// folded into a ToolCallResult with success=false; Execute never returns an
// error to the orchestration loop.
type ToolGateway struct {
	registry    *tool.Registry
	breakers    *circuit.Registry
	limiter     *ratelimit.Limiter
	metrics     *Metrics
	callTimeout time.Duration
}

func NewToolGateway(
	registry *tool.Registry,
	breakers *circuit.Registry,
	limiter *ratelimit.Limiter,
	metrics *Metrics,
	callTimeout time.Duration,
) *ToolGateway {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &ToolGateway{
		registry:    registry,
		breakers:    breakers,
		limiter:     limiter,
		metrics:     metrics,
		callTimeout: callTimeout,
	}
}

// Definitions exposes the registered tools' wire definitions.
func (g *ToolGateway) Definitions() []model.ToolDefinition {
	return g.registry.Definitions()
}

// Execute runs one parsed tool call and returns its result, success or not.
func (g *ToolGateway) Execute(ctx context.Context, call llm.ParsedToolCall, caller CallerContext) model.ToolCallResult {
	decision := g.limiter.Check("user:" + caller.UserID)
	if !decision.Allowed {
		return g.failure(call, app_errors.ErrRateLimited, map[string]any{
			"reset_time": decision.ResetTime.UTC().Format(time.RFC3339),
		})
	}

	impl, err := g.registry.Resolve(call.Name)
	if err != nil {
		return g.failure(call, err, nil)
	}

	if err := tool.ValidateArgs(call.Args, impl.Schema()); err != nil {
		return g.failure(call, err, nil)
	}

	if !caller.hasScope(impl.Scope()) {
		return g.failure(call,
			fmt.Errorf("%w: tool %s requires scope %s", app_errors.ErrPermission, call.Name, impl.Scope()),
			nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	var output any
	breaker := g.breakers.Get(impl.Service())
	err = breaker.Execute(callCtx, func(ctx context.Context) error {
		var execErr error
		output, execErr = impl.Execute(ctx, call.Args)
		return execErr
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: tool %s", app_errors.ErrTimeout, call.Name)
		}
		return g.failure(call, err, nil)
	}

	payload, err := json.Marshal(map[string]any{"success": true, "data": output})
	if err != nil {
		return g.failure(call, fmt.Errorf("could not serialize tool output: %w", err), nil)
	}

	g.metrics.ToolCallExecuted()
	return model.ToolCallResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    string(payload),
		Success:    true,
	}
}

// failure serializes an error into a structured tool result the model can
// react to on its next round.
func (g *ToolGateway) failure(call llm.ParsedToolCall, err error, details map[string]any) model.ToolCallResult {
	g.metrics.ToolCallFailed()
	slog.Warn("tool call failed", "tool", call.Name, "tool_call_id", call.ID, "error", err)

	errorPayload := map[string]any{
		"code":    errorCode(err),
		"message": err.Error(),
	}
	for key, value := range details {
		errorPayload[key] = value
	}

	payload, marshalErr := json.Marshal(map[string]any{"success": false, "error": errorPayload})
	if marshalErr != nil {
		payload = []byte(`{"success":false,"error":{"code":"internal","message":"unserializable error"}}`)
	}

	return model.ToolCallResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    string(payload),
		Success:    false,
	}
}

// errorCode maps an error to a stable machine-readable code carried in the
// tool result payload.
func errorCode(err error) string {
	switch {
	case errors.Is(err, app_errors.ErrToolNotFound):
		return "tool_not_found"
	case errors.Is(err, app_errors.ErrSchemaValidation):
		return "schema_validation_failed"
	case errors.Is(err, app_errors.ErrPermission):
		return "permission_denied"
	case errors.Is(err, app_errors.ErrRateLimited):
		return "rate_limit_exceeded"
	case errors.Is(err, app_errors.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, app_errors.ErrTimeout):
		return "timeout"
	case errors.Is(err, app_errors.ErrNotFound):
		return "not_found"
	default:
		return "execution_failed"
	}
}

// Package tool defines the tool abstraction exposed to the model, the
// registry that resolves tool names, and the builtin knowledge-base tools.
package tool

import (
	"context"

	"scribe-ai/backend/internal/model"
)

// Capability scopes. A caller may only invoke tools whose scope it was
// granted.
const (
	ScopeRead  = "kb:read"
	ScopeWrite = "kb:write"
)

// JSONSchema captures the subset of JSON Schema used for argument validation.
type JSONSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
}

// Tool is a single capability the model can invoke.
type Tool interface {
	// Name is the identifier the model uses to call the tool.
	Name() string
	// Description tells the model what the tool does.
	Description() string
	// Schema declares the argument object shape. May be nil for tools
	// that take no arguments.
	Schema() *JSONSchema
	// Scope is the capability the caller must hold to invoke the tool.
	Scope() string
	// Service names the backing dependency, used to pick the circuit
	// breaker guarding the call.
	Service() string
	// Execute runs the tool. The returned value is serialized to JSON as
	// the tool result payload.
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// Definition converts a tool into the wire shape sent to the model.
func Definition(t Tool) model.ToolDefinition {
	def := model.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
	}
	schema := t.Schema()
	if schema == nil {
		schema = &JSONSchema{Type: "object", Properties: map[string]any{}}
	}
	def.Parameters = map[string]any{
		"type":       schema.Type,
		"properties": schema.Properties,
	}
	if len(schema.Required) > 0 {
		def.Parameters["required"] = schema.Required
	}
	return def
}

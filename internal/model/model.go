package model

import (
	"encoding/json"
	"time"
)

// Message roles. Tool messages carry the result of a single tool call and
// point back at the assistant tool call that requested it.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Conversation stores metadata about a conversation.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToolCall is a structured request from the model to invoke a named tool.
// Arguments is the raw JSON argument object as reassembled from the stream.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one turn unit in a conversation. Content is empty (persisted as
// NULL) on assistant messages that carry only tool calls. ToolCallID and Name
// are set only on tool messages and must resolve to exactly one tool call of
// the immediately preceding assistant message.
type Message struct {
	ID         string     `json:"id"`
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Reasoning  string     `json:"reasoning,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// FullConversation includes the conversation metadata and all its messages
// in append order.
type FullConversation struct {
	Conversation
	Messages []Message `json:"messages"`
}

// ToolCallResult captures the outcome of one tool call, success or failure.
// Content is a JSON payload that always includes a "success" boolean so
// consumers never need transport-level status to know the outcome.
type ToolCallResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	Success    bool   `json:"success"`
}

// ToolCallFragment is one piece of an in-progress tool call as transported on
// a stream delta. Index keys the assembly; ID and Name may arrive only in the
// first fragment for that index.
type ToolCallFragment struct {
	Index             int
	ID                string
	Name              string
	ArgumentsFragment string
}

// Delta is one incremental fragment of a streaming model response. Any
// combination of fields may be set on a single delta; none is exclusive of
// another.
type Delta struct {
	Content           string
	Reasoning         string
	ToolCallFragments []ToolCallFragment
	Done              bool
}

// ToolDefinition describes a tool to the model: a name, a human-readable
// description, and a JSON schema for its arguments.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Note is a knowledge-base note operated on by the builtin tools.
type Note struct {
	ID        string          `json:"id"`
	FolderID  *string         `json:"folder_id,omitempty"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Folder groups notes in the knowledge base.
type Folder struct {
	ID        string    `json:"id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

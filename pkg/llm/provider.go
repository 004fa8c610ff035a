// Package llm defines the provider abstraction the tool-dispatch loop talks
// to, along with the message and tool-call model shared across the service.
//
// Providers handle API communication only. The agent layer owns conversation
// state, tool execution, and loop bounds; this separation keeps providers
// reusable and testable independently of orchestration.
package llm

import "context"

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a structured tool invocation emitted by the model. Each call is
// executed at most once; its result is appended as exactly one tool message
// carrying the same ID before the conversation is resubmitted.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON per the tool's schema
}

// Message is one role-tagged conversation entry. ToolCallID back-references
// the assistant-issued call a tool message answers; ToolCalls is set on
// assistant messages that request tool execution.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`

	// Raw carries the provider's native representation of a message it
	// produced, so resubmitting the conversation round-trips tool-call
	// payloads exactly. Opaque to everything but the producing provider.
	Raw interface{} `json:"-"`
}

// ToolDefinition describes one callable tool submitted with every completion.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON schema for the arguments object
}

// Provider is the LLM collaborator interface.
type Provider interface {
	// Complete submits the conversation plus the tool schema and returns the
	// assistant's response: either final content, or one or more tool calls.
	Complete(ctx context.Context, messages []Message, tools []ToolDefinition) (*Message, error)

	// GetModel returns the model name in use.
	GetModel() string
}

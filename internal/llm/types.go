package llm

import (
	"encoding/json"
)

// ToolDefinition describes a callable tool to the model.
//
// Parameters is a JSON Schema object.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ChatRequest is one model turn: an optional system prompt, the thread so far
// and the tools the model may call.
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDefinition

	// MaxTokens and Temperature override the client config when set.
	MaxTokens   int
	Temperature *float64
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

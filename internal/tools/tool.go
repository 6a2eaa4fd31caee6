package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MimeLyc/deep-research-agent/internal/llm"
)

// ToolResult represents the result of a tool execution
type ToolResult struct {
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Tool defines the interface for tools that can be called by the agent
type Tool interface {
	// Name returns the unique name of the tool
	Name() string

	// Description returns a description of what the tool does
	Description() string

	// Parameters returns the JSON Schema for the tool's parameters
	Parameters() json.RawMessage

	// Execute runs the tool with the arguments the model supplied.
	// Problems the model can fix (bad arguments, missing files) are reported
	// as a ToolResult with IsError set; the returned error is reserved for
	// failures of the tool itself.
	Execute(ctx context.Context, args map[string]any) (ToolResult, error)
}

// DecodeArgs copies a schema-less argument map into the struct v.
func DecodeArgs(args map[string]any, v any) error {
	if raw, ok := args[llm.RawArgumentsKey]; ok {
		return fmt.Errorf("arguments are not valid JSON: %v", raw)
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func errorResult(format string, args ...any) ToolResult {
	return ToolResult{Content: fmt.Sprintf(format, args...), IsError: true}
}

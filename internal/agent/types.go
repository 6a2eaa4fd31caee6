package agent

import (
	"context"
	"errors"

	"github.com/MimeLyc/deep-research-agent/internal/llm"
	"github.com/MimeLyc/deep-research-agent/internal/tools"
)

// ErrMaxIterations is returned when the model is still calling tools after
// the iteration limit. The partial result is returned alongside it.
var ErrMaxIterations = errors.New("max iterations reached without completion")

// ChatModel produces the next assistant turn for a thread.
// *llm.Client satisfies it.
type ChatModel interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.AIMessage, error)
}

// Invoker runs an agent to completion on a message thread.
type Invoker interface {
	Invoke(ctx context.Context, in Input) (*Result, error)
}

// Input is the state handed to an agent invocation.
type Input struct {
	Messages []llm.Message
}

// Result is the final state of an invocation.
type Result struct {
	// Messages holds the input messages followed by every generated message, in order.
	Messages []llm.Message

	// Todos is the plan as last written by the agent
	Todos []tools.Todo

	// ToolCalls contains a record of all tool calls made during execution
	ToolCalls []ToolCallRecord

	// Iterations is the number of LLM calls made
	Iterations int
}

// ToolCallRecord records a single tool call and its result
type ToolCallRecord struct {
	// ToolName is the name of the tool that was called
	ToolName string

	// Arguments is the JSON arguments passed to the tool
	Arguments string

	// Result is the output from the tool
	Result string

	// IsError indicates if the tool execution resulted in an error
	IsError bool
}

package tools

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// ThinkTool is a scratchpad: the model records a reflection and gets it
// echoed back. It performs no side effects outside this tool.
type ThinkTool struct {
	mu          sync.Mutex
	reflections []string
}

func NewThinkTool() *ThinkTool {
	return &ThinkTool{}
}

func (t *ThinkTool) Name() string {
	return "think_tool"
}

func (t *ThinkTool) Description() string {
	return `Tool for strategic reflection on research progress and decision-making.
Use it after each search to analyze the results and plan next steps:
what key information was found, what is still missing, whether there is enough to answer, and whether to search again or write the answer.`
}

func (t *ThinkTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"reflection": {
				"type": "string",
				"description": "Your detailed reflection on research progress, findings, gaps, and next steps"
			}
		},
		"required": ["reflection"]
	}`)
}

func (t *ThinkTool) Execute(_ context.Context, args map[string]any) (ToolResult, error) {
	var in struct {
		Reflection string `json:"reflection"`
	}
	if err := DecodeArgs(args, &in); err != nil {
		return errorResult("%v", err), nil
	}
	if strings.TrimSpace(in.Reflection) == "" {
		return errorResult("reflection is required"), nil
	}

	t.mu.Lock()
	t.reflections = append(t.reflections, in.Reflection)
	t.mu.Unlock()

	return ToolResult{Content: "Reflection recorded: " + in.Reflection}, nil
}

// Reflections returns every reflection recorded so far.
func (t *ThinkTool) Reflections() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.reflections...)
}

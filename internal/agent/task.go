package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/MimeLyc/deep-research-agent/internal/backend"
	"github.com/MimeLyc/deep-research-agent/internal/llm"
	"github.com/MimeLyc/deep-research-agent/internal/tools"
)

// GeneralPurposeAgent is the sub-agent that is always available through task.
const GeneralPurposeAgent = "general-purpose"

// SubAgent is a specialised agent the main agent can delegate to.
type SubAgent struct {
	Name         string
	Description  string
	SystemPrompt string
	Tools        []tools.Tool
	// Model overrides the main agent's model when set
	Model ChatModel
}

// taskTool runs a sub-agent on a fresh thread holding only the task
// description and returns its final answer.
type taskTool struct {
	agents        map[string]SubAgent
	backend       backend.Backend
	model         ChatModel
	maxIterations int
	debug         bool
}

func newTaskTool(agents []SubAgent, b backend.Backend, model ChatModel, maxIterations int, debug bool) *taskTool {
	byName := make(map[string]SubAgent, len(agents))
	for _, sa := range agents {
		byName[sa.Name] = sa
	}
	return &taskTool{
		agents:        byName,
		backend:       b,
		model:         model,
		maxIterations: maxIterations,
		debug:         debug,
	}
}

func (t *taskTool) Name() string {
	return "task"
}

func (t *taskTool) names() []string {
	names := make([]string, 0, len(t.agents))
	for name := range t.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *taskTool) Description() string {
	var b strings.Builder
	b.WriteString("Launch an ephemeral subagent to handle a complex, isolated task.\n\nAvailable agent types:\n")
	for _, name := range t.names() {
		fmt.Fprintf(&b, "- %s: %s\n", name, t.agents[name].Description)
	}
	b.WriteString("\nThe subagent cannot see this conversation. Put everything it needs into the description.")
	return b.String()
}

func (t *taskTool) Parameters() json.RawMessage {
	enum, _ := json.Marshal(t.names())
	return json.RawMessage(fmt.Sprintf(`{
		"type": "object",
		"properties": {
			"description": {
				"type": "string",
				"description": "Detailed, self-contained task for the subagent"
			},
			"subagent_type": {
				"type": "string",
				"enum": %s,
				"description": "Which subagent to run"
			}
		},
		"required": ["description", "subagent_type"]
	}`, enum))
}

func (t *taskTool) Execute(ctx context.Context, args map[string]any) (tools.ToolResult, error) {
	var in struct {
		Description  string `json:"description"`
		SubagentType string `json:"subagent_type"`
	}
	if err := tools.DecodeArgs(args, &in); err != nil {
		return tools.ToolResult{Content: err.Error(), IsError: true}, nil
	}
	if strings.TrimSpace(in.Description) == "" {
		return tools.ToolResult{Content: "description is required", IsError: true}, nil
	}
	sa, ok := t.agents[in.SubagentType]
	if !ok {
		return tools.ToolResult{
			Content: fmt.Sprintf("unknown subagent_type %q, available: %s", in.SubagentType, strings.Join(t.names(), ", ")),
			IsError: true,
		}, nil
	}

	registry, err := subAgentRegistry(sa, t.backend)
	if err != nil {
		return tools.ToolResult{}, err
	}
	model := sa.Model
	if model == nil {
		model = t.model
	}

	orchestrator := NewOrchestrator(OrchestratorConfig{
		Name:           sa.Name,
		Model:          model,
		Registry:       registry,
		SystemPrompt:   sa.SystemPrompt + "\n\n" + writeTodosSystemPrompt + "\n\n" + filesystemSystemPrompt,
		MaxIterations:  t.maxIterations,
		MaxConcurrency: 1,
		Debug:          t.debug,
	})

	res, err := orchestrator.Run(ctx, []llm.Message{llm.HumanMessage{Content: in.Description}})
	if err != nil {
		return tools.ToolResult{}, fmt.Errorf("subagent %s: %w", sa.Name, err)
	}
	return tools.ToolResult{Content: finalText(res.Messages)}, nil
}

// subAgentRegistry gives a sub-agent its own tools, a private todo list and
// the shared file tools. Sub-agents cannot call task.
func subAgentRegistry(sa SubAgent, b backend.Backend) (*tools.Registry, error) {
	all := make([]tools.Tool, 0, len(sa.Tools)+5)
	all = append(all, sa.Tools...)
	all = append(all, tools.NewWriteTodosTool())
	all = append(all, tools.FileTools(b)...)
	return tools.NewRegistry(all...)
}

func finalText(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if ai, ok := messages[i].(llm.AIMessage); ok && strings.TrimSpace(ai.Content) != "" {
			return ai.Content
		}
	}
	return "(subagent finished without a final message)"
}

package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/MimeLyc/deep-research-agent/internal/backend"
	"github.com/MimeLyc/deep-research-agent/internal/llm"
	"github.com/MimeLyc/deep-research-agent/internal/tools"
)

// Config describes a deep agent.
type Config struct {
	Model ChatModel
	// Tools are the caller's tools. Planning, file and task tools are added.
	Tools []tools.Tool
	// SystemPrompt comes first; built-in tool instructions are appended.
	SystemPrompt string
	SubAgents    []SubAgent
	Backend      backend.Backend
	// MaxIterations bounds model calls per agent run. Default: 10
	MaxIterations int
	// MaxConcurrency bounds tool calls of one turn running at once. Default: 1
	MaxConcurrency int
	// Debug logs each model turn and tool dispatch
	Debug bool
}

// DeepAgent is a tool-calling agent that plans with write_todos, works on
// files through a backend and delegates to sub-agents through task.
type DeepAgent struct {
	config    Config
	subAgents []SubAgent
	prompt    string
}

// New validates cfg and builds the agent. A general-purpose sub-agent
// carrying the main agent's tools is added unless cfg defines one.
func New(cfg Config) (*DeepAgent, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	seen := make(map[string]bool)
	for _, t := range cfg.Tools {
		if isBuiltinTool(t.Name()) {
			return nil, fmt.Errorf("tool %q clashes with a built-in tool", t.Name())
		}
	}
	subAgents := make([]SubAgent, 0, len(cfg.SubAgents)+1)
	for _, sa := range cfg.SubAgents {
		if strings.TrimSpace(sa.Name) == "" {
			return nil, fmt.Errorf("sub-agent name is required")
		}
		if seen[sa.Name] {
			return nil, fmt.Errorf("duplicate sub-agent %q", sa.Name)
		}
		seen[sa.Name] = true
		subAgents = append(subAgents, sa)
	}
	if !seen[GeneralPurposeAgent] {
		subAgents = append(subAgents, SubAgent{
			Name:         GeneralPurposeAgent,
			Description:  generalPurposeDescription,
			SystemPrompt: generalPurposeSystemPrompt,
			Tools:        cfg.Tools,
		})
	}

	return &DeepAgent{
		config:    cfg,
		subAgents: subAgents,
		prompt:    buildSystemPrompt(cfg.SystemPrompt, cfg.Backend),
	}, nil
}

// SystemPrompt returns the full system prompt sent to the model.
func (a *DeepAgent) SystemPrompt() string {
	return a.prompt
}

// SubAgentNames lists the agents reachable through task.
func (a *DeepAgent) SubAgentNames() []string {
	names := make([]string, 0, len(a.subAgents))
	for _, sa := range a.subAgents {
		names = append(names, sa.Name)
	}
	return names
}

// Invoke runs the agent on in.Messages until the model stops calling tools.
// Each invocation gets its own todo list.
func (a *DeepAgent) Invoke(ctx context.Context, in Input) (*Result, error) {
	if len(in.Messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	todos := tools.NewWriteTodosTool()
	all := make([]tools.Tool, 0, len(a.config.Tools)+6)
	all = append(all, a.config.Tools...)
	all = append(all, todos)
	all = append(all, tools.FileTools(a.config.Backend)...)
	all = append(all, newTaskTool(a.subAgents, a.config.Backend, a.config.Model, a.config.MaxIterations, a.config.Debug))

	registry, err := tools.NewRegistry(all...)
	if err != nil {
		return nil, err
	}

	orchestrator := NewOrchestrator(OrchestratorConfig{
		Name:           "main",
		Model:          a.config.Model,
		Registry:       registry,
		SystemPrompt:   a.prompt,
		MaxIterations:  a.config.MaxIterations,
		MaxConcurrency: a.config.MaxConcurrency,
		Debug:          a.config.Debug,
	})

	result, err := orchestrator.Run(ctx, in.Messages)
	if result != nil {
		result.Todos = todos.Todos()
	}
	return result, err
}

func buildSystemPrompt(base string, b backend.Backend) string {
	sections := []string{writeTodosSystemPrompt, filesystemSystemPrompt}
	if hasMemoriesRoute(b) {
		sections = append(sections, memoriesSystemPrompt)
	}
	sections = append(sections, taskSystemPrompt)

	if strings.TrimSpace(base) != "" {
		sections = append([]string{strings.TrimSpace(base)}, sections...)
	}
	return strings.Join(sections, "\n\n")
}

func hasMemoriesRoute(b backend.Backend) bool {
	composite, ok := b.(*backend.CompositeBackend)
	if !ok {
		return false
	}
	for _, prefix := range composite.Routes() {
		if prefix == "/memories/" {
			return true
		}
	}
	return false
}

func isBuiltinTool(name string) bool {
	switch name {
	case "write_todos", "ls", "read_file", "write_file", "edit_file", "task":
		return true
	}
	return false
}

var _ Invoker = (*DeepAgent)(nil)

// Messages is a convenience for building an Input from plain text.
func Messages(texts ...string) []llm.Message {
	ret := make([]llm.Message, 0, len(texts))
	for _, text := range texts {
		ret = append(ret, llm.HumanMessage{Content: text})
	}
	return ret
}

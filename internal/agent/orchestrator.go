package agent

import (
	"context"
	"fmt"

	"github.com/MimeLyc/deep-research-agent/internal/llm"
	"github.com/MimeLyc/deep-research-agent/internal/tools"
	"github.com/MimeLyc/deep-research-agent/pkg/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxIterations  = 10
	defaultMaxConcurrency = 1
)

// Orchestrator manages the agent loop for tool calling
type Orchestrator struct {
	name           string
	model          ChatModel
	registry       *tools.Registry
	systemPrompt   string
	maxIterations  int
	maxConcurrency int
	debug          bool
}

// OrchestratorConfig configures one tool-calling loop.
type OrchestratorConfig struct {
	// Name prefixes debug log lines
	Name         string
	Model        ChatModel
	Registry     *tools.Registry
	SystemPrompt string
	// MaxIterations bounds the number of model calls. Default: 10
	MaxIterations int
	// MaxConcurrency bounds the tool calls of one turn running at once. Default: 1
	MaxConcurrency int
	Debug          bool
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	if cfg.Name == "" {
		cfg.Name = "agent"
	}
	return &Orchestrator{
		name:           cfg.Name,
		model:          cfg.Model,
		registry:       cfg.Registry,
		systemPrompt:   cfg.SystemPrompt,
		maxIterations:  cfg.MaxIterations,
		maxConcurrency: cfg.MaxConcurrency,
		debug:          cfg.Debug,
	}
}

// Run executes the agent loop on thread until the model answers without
// calling tools. The returned result is non-nil even when err is not, and
// then holds the thread as far as it got.
func (o *Orchestrator) Run(ctx context.Context, thread []llm.Message) (*Result, error) {
	result := &Result{
		Messages:  append(make([]llm.Message, 0, len(thread)+8), thread...),
		ToolCalls: make([]ToolCallRecord, 0),
	}

	var toolDefs []llm.ToolDefinition
	if o.registry != nil {
		toolDefs = o.registry.Definitions()
	}

	for i := 0; i < o.maxIterations; i++ {
		result.Iterations++

		aiMsg, err := o.model.Chat(ctx, llm.ChatRequest{
			SystemPrompt: o.systemPrompt,
			Messages:     result.Messages,
			Tools:        toolDefs,
		})
		if err != nil {
			return result, fmt.Errorf("LLM call failed at iteration %d: %w", i+1, err)
		}
		if aiMsg == nil {
			return result, fmt.Errorf("empty response at iteration %d", i+1)
		}

		result.Messages = append(result.Messages, *aiMsg)
		if o.debug {
			log.Info("[%s] iteration %d: %d tool call(s)", o.name, i+1, len(aiMsg.ToolCalls))
		}

		if !aiMsg.HasToolCalls() {
			return result, nil
		}

		records := o.dispatch(ctx, aiMsg.ToolCalls)
		for idx, tc := range aiMsg.ToolCalls {
			record := records[idx]
			result.ToolCalls = append(result.ToolCalls, record)
			result.Messages = append(result.Messages, llm.ToolMessage{
				Name:       tc.Name,
				ToolCallID: tc.ID,
				Content:    record.Result,
				IsError:    record.IsError,
			})
		}

		if err := ctx.Err(); err != nil {
			return result, err
		}
	}

	return result, fmt.Errorf("%w (%d)", ErrMaxIterations, o.maxIterations)
}

// dispatch runs the calls of one turn, at most maxConcurrency at a time.
// Records are returned in call order.
func (o *Orchestrator) dispatch(ctx context.Context, calls []llm.ToolCall) []ToolCallRecord {
	records := make([]ToolCallRecord, len(calls))

	var g errgroup.Group
	g.SetLimit(o.maxConcurrency)
	for i, tc := range calls {
		g.Go(func() error {
			records[i] = o.executeTool(ctx, tc)
			return nil
		})
	}
	_ = g.Wait()

	return records
}

func (o *Orchestrator) executeTool(ctx context.Context, toolCall llm.ToolCall) ToolCallRecord {
	record := ToolCallRecord{
		ToolName:  toolCall.Name,
		Arguments: toolCall.ArgsJSON(),
	}
	if o.debug {
		log.Info("[%s] -> %s args=%v", o.name, toolCall.Name, toolCall.ArgKeys())
	}

	var tool tools.Tool
	exists := false
	if o.registry != nil {
		tool, exists = o.registry.Get(toolCall.Name)
	}
	if !exists {
		record.Result = fmt.Sprintf("Tool %q not found", toolCall.Name)
		record.IsError = true
		return record
	}

	result, err := tool.Execute(ctx, toolCall.Args)
	if err != nil {
		record.Result = fmt.Sprintf("Tool execution error: %v", err)
		record.IsError = true
		log.Warn("[%s] tool %s failed: %v", o.name, toolCall.Name, err)
		return record
	}

	record.Result = result.Content
	record.IsError = result.IsError
	if o.debug {
		log.Info("[%s] <- %s error=%v", o.name, toolCall.Name, record.IsError)
	}
	return record
}

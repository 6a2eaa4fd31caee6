package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoCompleted  TodoStatus = "completed"
)

// Todo is one entry of the agent's plan.
type Todo struct {
	Content string     `json:"content"`
	Status  TodoStatus `json:"status"`
}

// WriteTodosTool lets the agent keep a plan. Each call replaces the whole list.
type WriteTodosTool struct {
	mu    sync.Mutex
	todos []Todo
}

func NewWriteTodosTool() *WriteTodosTool {
	return &WriteTodosTool{}
}

func (t *WriteTodosTool) Name() string {
	return "write_todos"
}

func (t *WriteTodosTool) Description() string {
	return `Create or update the structured task list for the current research.
Send the complete list every time; it replaces the previous one.
Mark a task in_progress before starting it and completed as soon as it is done. Keep only one task in_progress at a time.`
}

func (t *WriteTodosTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"todos": {
				"type": "array",
				"description": "The full, updated todo list",
				"items": {
					"type": "object",
					"properties": {
						"content": {"type": "string"},
						"status": {"type": "string", "enum": ["pending", "in_progress", "completed"]}
					},
					"required": ["content", "status"]
				}
			}
		},
		"required": ["todos"]
	}`)
}

func (t *WriteTodosTool) Execute(_ context.Context, args map[string]any) (ToolResult, error) {
	var in struct {
		Todos []Todo `json:"todos"`
	}
	if err := DecodeArgs(args, &in); err != nil {
		return errorResult("%v", err), nil
	}
	for i, todo := range in.Todos {
		switch todo.Status {
		case TodoPending, TodoInProgress, TodoCompleted:
		default:
			return errorResult("todo %d has unknown status %q", i+1, todo.Status), nil
		}
		if strings.TrimSpace(todo.Content) == "" {
			return errorResult("todo %d has empty content", i+1), nil
		}
	}

	t.mu.Lock()
	t.todos = append([]Todo(nil), in.Todos...)
	t.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Updated todo list (%d items):\n", len(in.Todos))
	for _, todo := range in.Todos {
		fmt.Fprintf(&b, "- [%s] %s\n", todo.Status, todo.Content)
	}
	return ToolResult{Content: strings.TrimRight(b.String(), "\n")}, nil
}

// Todos returns the current list.
func (t *WriteTodosTool) Todos() []Todo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Todo(nil), t.todos...)
}

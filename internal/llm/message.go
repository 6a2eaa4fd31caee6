package llm

import (
	"encoding/json"
	"sort"
)

// Role identifies who authored a message.
type Role string

const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
	RoleTool   Role = "tool"
)

// Message is one entry of a conversation. The set of implementations is
// closed: SystemMessage, HumanMessage, AIMessage and ToolMessage.
type Message interface {
	Role() Role
	Text() string
	message()
}

// SystemMessage carries instructions placed ahead of the conversation.
type SystemMessage struct {
	Content string
}

// HumanMessage is authored by the user.
type HumanMessage struct {
	Content string
}

// AIMessage is produced by the model and may request tool invocations.
type AIMessage struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolMessage carries the result of one tool invocation back to the model.
type ToolMessage struct {
	Name       string
	ToolCallID string
	Content    string
	IsError    bool
}

func (SystemMessage) Role() Role { return RoleSystem }
func (HumanMessage) Role() Role  { return RoleHuman }
func (AIMessage) Role() Role     { return RoleAI }
func (ToolMessage) Role() Role   { return RoleTool }

func (m SystemMessage) Text() string { return m.Content }
func (m HumanMessage) Text() string  { return m.Content }
func (m AIMessage) Text() string     { return m.Content }
func (m ToolMessage) Text() string   { return m.Content }

func (SystemMessage) message() {}
func (HumanMessage) message()  {}
func (AIMessage) message()     {}
func (ToolMessage) message()   {}

// HasToolCalls reports whether the model asked for any tool.
func (m AIMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// ToolCall is a structured request to run a named tool.
//
// Args is schema-less; each tool documents and validates its own keys.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ArgsJSON renders Args as a JSON object. Nil args render as "{}".
func (tc ToolCall) ArgsJSON() string {
	if len(tc.Args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(tc.Args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// ArgKeys returns the argument names in sorted order.
func (tc ToolCall) ArgKeys() []string {
	keys := make([]string, 0, len(tc.Args))
	for k := range tc.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StringArg returns Args[key] when it is a string.
func (tc ToolCall) StringArg(key string) (string, bool) {
	v, ok := tc.Args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

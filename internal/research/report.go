package research

import (
	"fmt"
	"io"
	"strings"

	"github.com/MimeLyc/deep-research-agent/internal/llm"
)

const (
	writeFileTool = "write_file"
	taskTool      = "task"

	contentPreviewRunes = 200
	ruleWidth           = 80
)

// Summary counts the messages of a finished run.
type Summary struct {
	HumanMessages  int
	AIMessages     int
	ToolMessages   int
	SystemMessages int

	// ToolCalls is the number of tool calls across all AI messages
	ToolCalls      int
	WriteFileCalls []llm.ToolCall
	TaskCalls      []llm.ToolCall
}

// Total is the number of messages summarized.
func (s Summary) Total() int {
	return s.HumanMessages + s.AIMessages + s.ToolMessages + s.SystemMessages
}

// Summarize classifies messages by role and collects write_file and task calls.
func Summarize(messages []llm.Message) Summary {
	var s Summary
	for _, m := range messages {
		s.add(m)
	}
	return s
}

func (s *Summary) add(m llm.Message) {
	switch msg := m.(type) {
	case llm.HumanMessage:
		s.HumanMessages++
	case llm.SystemMessage:
		s.SystemMessages++
	case llm.ToolMessage:
		s.ToolMessages++
	case llm.AIMessage:
		s.AIMessages++
		for _, tc := range msg.ToolCalls {
			s.ToolCalls++
			switch tc.Name {
			case writeFileTool:
				s.WriteFileCalls = append(s.WriteFileCalls, tc)
			case taskTool:
				s.TaskCalls = append(s.TaskCalls, tc)
			}
		}
	}
}

// PrintTrace writes a readable trace of messages to w, followed by a
// summary block, and returns the summary.
func PrintTrace(w io.Writer, messages []llm.Message) Summary {
	var s Summary

	fmt.Fprintln(w, "\nAgent execution completed. Messages:")
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))

	for _, m := range messages {
		s.add(m)

		switch msg := m.(type) {
		case llm.SystemMessage:
			fmt.Fprintf(w, "\nSystem message %d:\n", s.SystemMessages)
			fmt.Fprintf(w, "   %s\n", preview(msg.Content, contentPreviewRunes))
		case llm.HumanMessage:
			fmt.Fprintf(w, "\nHuman message %d:\n", s.HumanMessages)
			fmt.Fprintf(w, "   %s\n", msg.Content)
		case llm.AIMessage:
			fmt.Fprintf(w, "\nAI message %d:\n", s.AIMessages)
			fmt.Fprintf(w, "   Content: %s\n", preview(msg.Content, contentPreviewRunes))
			if !msg.HasToolCalls() {
				fmt.Fprintln(w, "   No tool calls")
				continue
			}
			fmt.Fprintf(w, "   Tool calls: %d\n", len(msg.ToolCalls))
			for i, tc := range msg.ToolCalls {
				fmt.Fprintf(w, "   [%d] Tool: %s\n", i+1, tc.Name)
				switch tc.Name {
				case writeFileTool:
					fmt.Fprintf(w, "       Arguments: %s\n", tc.ArgsJSON())
					if path, ok := tc.StringArg("file_path"); ok {
						fmt.Fprintf(w, "       File: %s\n", path)
					}
				case taskTool:
					fmt.Fprintf(w, "       Task tool called! Arguments: %s\n", tc.ArgsJSON())
				default:
					fmt.Fprintf(w, "       Arguments: %s\n", tc.ArgsJSON())
				}
			}
		case llm.ToolMessage:
			fmt.Fprintf(w, "\nTool message %d:\n", s.ToolMessages)
			if msg.Name != "" {
				fmt.Fprintf(w, "   Tool: %s\n", msg.Name)
			}
			if msg.IsError {
				fmt.Fprintln(w, "   Error: true")
			}
			fmt.Fprintf(w, "   Content: %s\n", preview(msg.Content, contentPreviewRunes))
		}
	}

	fmt.Fprintln(w, "\nSummary:")
	fmt.Fprintf(w, "   Human messages: %d\n", s.HumanMessages)
	fmt.Fprintf(w, "   AI messages: %d\n", s.AIMessages)
	fmt.Fprintf(w, "   Tool messages: %d\n", s.ToolMessages)
	if s.SystemMessages > 0 {
		fmt.Fprintf(w, "   System messages: %d\n", s.SystemMessages)
	}
	fmt.Fprintf(w, "   write_file calls: %d\n", len(s.WriteFileCalls))
	fmt.Fprintf(w, "   task calls: %d\n", len(s.TaskCalls))

	return s
}

// preview cuts s to n runes, marking the cut with "...".
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MimeLyc/deep-research-agent/internal/backend"
)

const (
	defaultReadLimit = 2000
	maxLineRunes     = 2000
)

// FileTools returns ls, read_file, write_file and edit_file bound to b.
func FileTools(b backend.Backend) []Tool {
	return []Tool{
		&LsTool{backend: b},
		&ReadFileTool{backend: b},
		&WriteFileTool{backend: b},
		&EditFileTool{backend: b},
	}
}

// LsTool lists a directory of the backend.
type LsTool struct {
	backend backend.Backend
}

func (t *LsTool) Name() string { return "ls" }

func (t *LsTool) Description() string {
	return `List the files in a directory. Paths are absolute, e.g. "/" or "/memories/".`
}

func (t *LsTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "Absolute directory path, defaults to /"}
		}
	}`)
}

func (t *LsTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	var in struct {
		Path string `json:"path"`
	}
	if err := DecodeArgs(args, &in); err != nil {
		return errorResult("%v", err), nil
	}
	if in.Path == "" {
		in.Path = "/"
	}

	infos, err := t.backend.List(ctx, in.Path)
	if err != nil {
		return backendError(err)
	}
	if len(infos) == 0 {
		return ToolResult{Content: fmt.Sprintf("No files found in %s", in.Path)}, nil
	}

	lines := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir {
			lines = append(lines, info.Path)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (%d bytes)", info.Path, info.Size))
	}
	return ToolResult{Content: strings.Join(lines, "\n")}, nil
}

// ReadFileTool returns a numbered window of a file.
type ReadFileTool struct {
	backend backend.Backend
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return `Read a file. Output lines are numbered starting at 1.
Use offset and limit to page through long files.`
}

func (t *ReadFileTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"file_path": {"type": "string", "description": "Absolute path of the file"},
			"offset": {"type": "integer", "description": "Zero-based line to start from"},
			"limit": {"type": "integer", "description": "Maximum number of lines to return (default 2000)"}
		},
		"required": ["file_path"]
	}`)
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	var in struct {
		FilePath string `json:"file_path"`
		Offset   int    `json:"offset"`
		Limit    int    `json:"limit"`
	}
	if err := DecodeArgs(args, &in); err != nil {
		return errorResult("%v", err), nil
	}
	if in.FilePath == "" {
		return errorResult("file_path is required"), nil
	}
	if in.Offset < 0 {
		return errorResult("offset must not be negative"), nil
	}
	if in.Limit <= 0 {
		in.Limit = defaultReadLimit
	}

	content, err := t.backend.Read(ctx, in.FilePath)
	if err != nil {
		return backendError(err)
	}
	if content == "" {
		return ToolResult{Content: "System reminder: File exists but has empty contents"}, nil
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if in.Offset >= len(lines) {
		return errorResult("offset %d exceeds file length (%d lines)", in.Offset, len(lines)), nil
	}
	end := in.Offset + in.Limit
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	for i := in.Offset; i < end; i++ {
		fmt.Fprintf(&b, "%6d\t%s\n", i+1, truncateRunes(lines[i], maxLineRunes))
	}
	return ToolResult{Content: strings.TrimSuffix(b.String(), "\n")}, nil
}

// WriteFileTool creates a new file. It refuses to overwrite.
type WriteFileTool struct {
	backend backend.Backend
}

func (t *WriteFileTool) Name() string { return "write_file" }

func (t *WriteFileTool) Description() string {
	return `Write content to a new file at an absolute path such as "/final_report.md".
Existing files are not overwritten; use edit_file to change them.`
}

func (t *WriteFileTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"file_path": {"type": "string", "description": "Absolute path of the file to create"},
			"content": {"type": "string", "description": "Full file content"}
		},
		"required": ["file_path", "content"]
	}`)
}

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	var in struct {
		FilePath string `json:"file_path"`
		Content  string `json:"content"`
	}
	if err := DecodeArgs(args, &in); err != nil {
		return errorResult("%v", err), nil
	}
	if in.FilePath == "" {
		return errorResult("file_path is required"), nil
	}

	if err := t.backend.Write(ctx, in.FilePath, in.Content); err != nil {
		return backendError(err)
	}
	return ToolResult{Content: fmt.Sprintf("Updated file %s", in.FilePath)}, nil
}

// EditFileTool performs exact string replacement in a file.
type EditFileTool struct {
	backend backend.Backend
}

func (t *EditFileTool) Name() string { return "edit_file" }

func (t *EditFileTool) Description() string {
	return `Replace old_string with new_string in a file.
old_string must match exactly once unless replace_all is true.`
}

func (t *EditFileTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"file_path": {"type": "string", "description": "Absolute path of the file"},
			"old_string": {"type": "string", "description": "Exact text to replace"},
			"new_string": {"type": "string", "description": "Replacement text"},
			"replace_all": {"type": "boolean", "description": "Replace every occurrence"}
		},
		"required": ["file_path", "old_string", "new_string"]
	}`)
}

func (t *EditFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	var in struct {
		FilePath   string `json:"file_path"`
		OldString  string `json:"old_string"`
		NewString  string `json:"new_string"`
		ReplaceAll bool   `json:"replace_all"`
	}
	if err := DecodeArgs(args, &in); err != nil {
		return errorResult("%v", err), nil
	}
	if in.FilePath == "" {
		return errorResult("file_path is required"), nil
	}

	n, err := t.backend.Edit(ctx, in.FilePath, in.OldString, in.NewString, in.ReplaceAll)
	if err != nil {
		return backendError(err)
	}
	return ToolResult{Content: fmt.Sprintf("Successfully replaced %d instance(s) in %s", n, in.FilePath)}, nil
}

// backendError turns expected backend failures into tool results the model
// can act on; anything else is returned as an error.
func backendError(err error) (ToolResult, error) {
	for _, known := range []error{
		backend.ErrNotFound,
		backend.ErrExists,
		backend.ErrInvalidPath,
		backend.ErrNoMatch,
		backend.ErrAmbiguousMatch,
	} {
		if errors.Is(err, known) {
			return errorResult("Error: %v", err), nil
		}
	}
	return ToolResult{}, err
}

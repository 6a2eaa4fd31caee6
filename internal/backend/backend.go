// Package backend provides the file storage the agent's file tools operate
// on. Paths are slash-separated and absolute ("/final_report.md").
package backend

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

var (
	ErrNotFound       = errors.New("file not found")
	ErrExists         = errors.New("file already exists")
	ErrInvalidPath    = errors.New("invalid path")
	ErrNoMatch        = errors.New("string not found in file")
	ErrAmbiguousMatch = errors.New("string appears more than once")
)

// FileInfo describes one listing entry. Directory paths end with "/".
type FileInfo struct {
	Path       string
	IsDir      bool
	Size       int64
	ModifiedAt time.Time
}

// Backend is a file store addressed by absolute slash paths.
type Backend interface {
	// List returns the direct children of dir, sorted by path.
	List(ctx context.Context, dir string) ([]FileInfo, error)
	Read(ctx context.Context, filePath string) (string, error)
	// Write creates filePath. Existing files are never overwritten.
	Write(ctx context.Context, filePath, content string) error
	// Edit replaces oldString with newString and returns the number of
	// replacements. Without replaceAll, oldString must occur exactly once.
	Edit(ctx context.Context, filePath, oldString, newString string, replaceAll bool) (int, error)
}

// CleanPath validates p and returns it in canonical form: leading "/",
// no trailing "/", no "." or ".." segments.
func CleanPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.Contains(p, "\\") {
		return "", fmt.Errorf("%w: %q must use forward slashes", ErrInvalidPath, p)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q contains '..'", ErrInvalidPath, p)
		}
	}
	return path.Clean("/" + strings.TrimPrefix(p, "/")), nil
}

func replaceContent(content, oldString, newString string, replaceAll bool) (string, int, error) {
	if oldString == "" {
		return "", 0, fmt.Errorf("%w: old_string is empty", ErrNoMatch)
	}
	count := strings.Count(content, oldString)
	switch {
	case count == 0:
		return "", 0, ErrNoMatch
	case count > 1 && !replaceAll:
		return "", 0, fmt.Errorf("%w (%d occurrences); pass replace_all or add context", ErrAmbiguousMatch, count)
	}
	if replaceAll {
		return strings.ReplaceAll(content, oldString, newString), count, nil
	}
	return strings.Replace(content, oldString, newString, 1), 1, nil
}

func dirPath(p string) string {
	if p == "/" {
		return p
	}
	return p + "/"
}

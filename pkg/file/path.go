package file

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ResolveVirtual maps a slash-separated virtual path such as "/notes/a.md"
// onto a location under root. The result never leaves root.
func ResolveVirtual(root, virtualPath string) (string, error) {
	if strings.TrimSpace(virtualPath) == "" {
		return "", fmt.Errorf("empty path")
	}
	if strings.Contains(virtualPath, "\\") {
		return "", fmt.Errorf("path %q must use forward slashes", virtualPath)
	}

	for _, part := range strings.Split(virtualPath, "/") {
		if part == ".." {
			return "", fmt.Errorf("path %q escapes the root", virtualPath)
		}
	}

	cleaned := path.Clean("/" + strings.TrimPrefix(virtualPath, "/"))
	resolved := filepath.Join(root, filepath.FromSlash(cleaned))

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absResolved, err := filepath.Abs(resolved)
	if err != nil {
		return "", err
	}
	if absResolved != absRoot && !strings.HasPrefix(absResolved, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the root", virtualPath)
	}
	return absResolved, nil
}

// ToVirtual is the inverse of ResolveVirtual for paths already under root.
func ToVirtual(root, fsPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(fsPath)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "/", nil
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q is outside %q", fsPath, root)
	}
	return "/" + filepath.ToSlash(rel), nil
}

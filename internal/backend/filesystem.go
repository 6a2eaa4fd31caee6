package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/MimeLyc/deep-research-agent/pkg/file"
)

// FilesystemBackend stores files on disk under root.
//
// In virtual mode every path is interpreted relative to root and paths that
// would leave root are rejected. Otherwise paths are host paths, with
// relative ones resolved against root.
type FilesystemBackend struct {
	root    string
	virtual bool
	mu      sync.Mutex
}

func NewFilesystemBackend(root string, virtual bool) *FilesystemBackend {
	return &FilesystemBackend{root: root, virtual: virtual}
}

// Root returns the directory files are written under.
func (b *FilesystemBackend) Root() string {
	return b.root
}

func (b *FilesystemBackend) resolve(p string) (string, error) {
	if b.virtual {
		resolved, err := file.ResolveVirtual(b.root, p)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
		}
		return resolved, nil
	}
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return filepath.Join(b.root, p), nil
}

func (b *FilesystemBackend) display(fsPath string) string {
	if !b.virtual {
		return filepath.ToSlash(fsPath)
	}
	v, err := file.ToVirtual(b.root, fsPath)
	if err != nil {
		return filepath.ToSlash(fsPath)
	}
	return v
}

func (b *FilesystemBackend) List(_ context.Context, dir string) ([]FileInfo, error) {
	resolved, err := b.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, err
	}

	ret := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		p := b.display(filepath.Join(resolved, entry.Name()))
		if entry.IsDir() {
			ret = append(ret, FileInfo{Path: dirPath(p), IsDir: true, ModifiedAt: info.ModTime()})
			continue
		}
		ret = append(ret, FileInfo{Path: p, Size: info.Size(), ModifiedAt: info.ModTime()})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Path < ret[j].Path })
	return ret, nil
}

func (b *FilesystemBackend) Read(_ context.Context, filePath string) (string, error) {
	resolved, err := b.resolve(filePath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, filePath)
		}
		return "", err
	}
	return string(data), nil
}

func (b *FilesystemBackend) Write(_ context.Context, filePath, content string) error {
	resolved, err := b.resolve(filePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	f, err := os.OpenFile(resolved, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, filePath)
		}
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (b *FilesystemBackend) Edit(ctx context.Context, filePath, oldString, newString string, replaceAll bool) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	content, err := b.Read(ctx, filePath)
	if err != nil {
		return 0, err
	}
	updated, n, err := replaceContent(content, oldString, newString, replaceAll)
	if err != nil {
		return 0, fmt.Errorf("edit %s: %w", filePath, err)
	}

	resolved, err := b.resolve(filePath)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(resolved, []byte(updated), info.Mode().Perm()); err != nil {
		return 0, err
	}
	return n, nil
}

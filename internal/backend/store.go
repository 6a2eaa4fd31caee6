package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/MimeLyc/deep-research-agent/internal/persistence"
)

// StoreBackend keeps each file as one item of a persistence.Store, keyed by
// its cleaned path inside namespace.
type StoreBackend struct {
	store     persistence.Store
	namespace string
	mu        sync.Mutex
}

func NewStoreBackend(store persistence.Store, namespace string) *StoreBackend {
	return &StoreBackend{store: store, namespace: namespace}
}

func (b *StoreBackend) List(ctx context.Context, dir string) ([]FileInfo, error) {
	cleaned, err := CleanPath(dir)
	if err != nil {
		return nil, err
	}
	prefix := dirPath(cleaned)

	items, err := b.store.List(ctx, b.namespace, prefix)
	if err != nil {
		return nil, err
	}

	seenDirs := make(map[string]bool)
	ret := make([]FileInfo, 0, len(items))
	for _, item := range items {
		rest := strings.TrimPrefix(item.Key, prefix)
		if idx := strings.Index(rest, "/"); idx >= 0 {
			sub := prefix + rest[:idx+1]
			if !seenDirs[sub] {
				seenDirs[sub] = true
				ret = append(ret, FileInfo{Path: sub, IsDir: true, ModifiedAt: item.UpdatedAt})
			}
			continue
		}
		ret = append(ret, FileInfo{Path: item.Key, Size: int64(len(item.Value)), ModifiedAt: item.UpdatedAt})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Path < ret[j].Path })
	return ret, nil
}

func (b *StoreBackend) Read(ctx context.Context, filePath string) (string, error) {
	key, err := CleanPath(filePath)
	if err != nil {
		return "", err
	}
	item, err := b.store.Get(ctx, b.namespace, key)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, filePath)
		}
		return "", err
	}
	return string(item.Value), nil
}

func (b *StoreBackend) Write(ctx context.Context, filePath, content string) error {
	key, err := CleanPath(filePath)
	if err != nil {
		return err
	}
	if key == "/" {
		return fmt.Errorf("%w: %q is a directory", ErrInvalidPath, filePath)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err = b.store.Get(ctx, b.namespace, key)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrExists, filePath)
	case !errors.Is(err, persistence.ErrNotFound):
		return err
	}
	return b.store.Put(ctx, b.namespace, key, []byte(content))
}

func (b *StoreBackend) Edit(ctx context.Context, filePath, oldString, newString string, replaceAll bool) (int, error) {
	key, err := CleanPath(filePath)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	item, err := b.store.Get(ctx, b.namespace, key)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, filePath)
		}
		return 0, err
	}
	updated, n, err := replaceContent(string(item.Value), oldString, newString, replaceAll)
	if err != nil {
		return 0, fmt.Errorf("edit %s: %w", filePath, err)
	}
	if err := b.store.Put(ctx, b.namespace, key, []byte(updated)); err != nil {
		return 0, err
	}
	return n, nil
}

package persistence

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps everything in process memory. Contents are lost on exit.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]map[string]Item
	runs  map[string]RunRecord
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]map[string]Item),
		runs:  make(map[string]RunRecord),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Get(_ context.Context, namespace, key string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[namespace][key]
	if !ok {
		return Item{}, ErrNotFound
	}
	return cloneItem(item), nil
}

func (s *MemoryStore) Put(_ context.Context, namespace, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.items[namespace]
	if !ok {
		bucket = make(map[string]Item)
		s.items[namespace] = bucket
	}

	now := s.now()
	item, exists := bucket[key]
	if !exists {
		item = Item{Namespace: namespace, Key: key, CreatedAt: now}
	}
	item.Value = append([]byte(nil), value...)
	item.UpdatedAt = now
	bucket[key] = item
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items[namespace], key)
	return nil
}

func (s *MemoryStore) List(_ context.Context, namespace, prefix string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make([]Item, 0)
	for key, item := range s.items[namespace] {
		if strings.HasPrefix(key, prefix) {
			ret = append(ret, cloneItem(item))
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Key < ret[j].Key })
	return ret, nil
}

func (s *MemoryStore) RecordRun(_ context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make([]RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		ret = append(ret, run)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].StartedAt.After(ret[j].StartedAt) })
	if limit > 0 && len(ret) > limit {
		ret = ret[:limit]
	}
	return ret, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func cloneItem(item Item) Item {
	item.Value = append([]byte(nil), item.Value...)
	return item
}

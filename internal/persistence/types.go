package persistence

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no item exists under the key.
var ErrNotFound = errors.New("item not found")

// Item is a value stored under (Namespace, Key).
type Item struct {
	Namespace string
	Key       string
	Value     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunRecord is one research run, recorded when it starts and again when it ends.
type RunRecord struct {
	ID         string
	Topic      string
	Status     RunStatus
	Attempts   int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store is the long-lived key/value store behind the agent's /memories/
// files and the run history. Implementations are safe for concurrent use.
type Store interface {
	Get(ctx context.Context, namespace, key string) (Item, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	// List returns the items of namespace whose key starts with prefix,
	// ordered by key.
	List(ctx context.Context, namespace, prefix string) ([]Item, error)

	// RecordRun inserts or updates a run by ID.
	RecordRun(ctx context.Context, run RunRecord) error
	// ListRuns returns the most recent runs first; limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	Close() error
}

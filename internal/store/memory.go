package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hpungsan/clarity/internal/errors"
)

// Memory is an in-process Store. Used by tests and by callers that do not
// need persistence.
type Memory struct {
	mu      sync.Mutex
	records map[string]Record
	closed  bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Get(ctx context.Context, key string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("get")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.NewStorageUnavailable(errClosed)
	}

	rec, ok := m.records[key]
	if !ok {
		return nil, errors.NewNotFound(key)
	}
	return &rec, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("set")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.NewStorageUnavailable(errClosed)
	}

	rec := Record{
		Key:       key,
		Value:     value,
		Version:   m.records[key].Version + 1,
		UpdatedAt: time.Now().UnixMilli(),
	}
	m.records[key] = rec
	return &rec, nil
}

func (m *Memory) CompareAndSwap(ctx context.Context, key, value string, expectVersion int64) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("compare-and-swap")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.NewStorageUnavailable(errClosed)
	}

	current := m.records[key].Version
	if current != expectVersion {
		return nil, conflict(key, expectVersion, current)
	}

	rec := Record{
		Key:       key,
		Value:     value,
		Version:   current + 1,
		UpdatedAt: time.Now().UnixMilli(),
	}
	m.records[key] = rec
	return &rec, nil
}

func (m *Memory) Remove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewCancelled("remove")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.NewStorageUnavailable(errClosed)
	}

	for _, k := range keys {
		delete(m.records, k)
	}
	return nil
}

func (m *Memory) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("keys")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.NewStorageUnavailable(errClosed)
	}

	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close marks the store unusable. Subsequent calls return STORAGE_UNAVAILABLE.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

package manager

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/store"
)

// CategorySummary describes one stored category for display.
type CategorySummary struct {
	Exists       bool    `json:"exists"`
	Size         int     `json:"size"`      // UTF-8 bytes of the stored JSON
	ItemCount    int     `json:"itemCount"` // array length, 1 for other values, 0 if unparsable
	LastModified *string `json:"lastModified"`
}

// Summary reports existence, size and item count for every known category.
// LastModified prefers the record's own lastUpdated/completedAt field and
// falls back to the store's write time.
func (m *Manager) Summary(ctx context.Context) (map[string]CategorySummary, error) {
	summary := make(map[string]CategorySummary, len(store.DataKeys))

	for _, key := range store.DataKeys {
		rec, err := m.store.Get(ctx, key)
		if errors.Is(err, errors.ErrNotFound) {
			summary[key] = CategorySummary{}
			continue
		}
		if err != nil {
			return nil, err
		}

		s := CategorySummary{Exists: true, Size: len(rec.Value)}

		var parsed any
		if err := json.Unmarshal([]byte(rec.Value), &parsed); err == nil {
			s.ItemCount = 1
			if arr, ok := parsed.([]any); ok {
				s.ItemCount = len(arr)
			}
			s.LastModified = recordTimestamp(parsed)
		}
		if s.LastModified == nil && rec.UpdatedAt > 0 {
			ts := time.UnixMilli(rec.UpdatedAt).UTC().Format(isoMillis)
			s.LastModified = &ts
		}

		summary[key] = s
	}

	return summary, nil
}

func recordTimestamp(parsed any) *string {
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil
	}
	for _, field := range []string{"lastUpdated", "completedAt"} {
		if v, ok := obj[field].(string); ok && v != "" {
			return &v
		}
	}
	return nil
}

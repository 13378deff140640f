package manager

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/category"
	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/store"
)

// Put validates raw against the category's rules and overwrites it.
func (m *Manager) Put(ctx context.Context, key string, raw json.RawMessage) error {
	kind, ok := category.Lookup(key)
	if !ok {
		return errors.NewInvalidRequest(fmt.Sprintf("unknown category: %s", key))
	}
	if !json.Valid(raw) {
		return errors.NewInvalidFormat(fmt.Sprintf("invalid JSON for %s", key))
	}
	if err := kind.Validate(raw); err != nil {
		return err
	}

	value, err := compact(raw)
	if err != nil {
		return errors.NewInvalidFormat(fmt.Sprintf("invalid JSON for %s", key))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.store.Set(ctx, key, value); err != nil {
		m.logger.Error("put failed", zap.String("key", key), zap.Error(err))
		return err
	}

	m.scheduleChange(ChangeEvent{Reason: "put", Keys: []string{key}})
	return nil
}

// Get returns the raw stored JSON for key, or CATEGORY_NOT_FOUND.
func (m *Manager) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if !store.IsDataKey(key) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown category: %s", key))
	}
	raw, ok, err := m.readRaw(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewCategoryNotFound(key)
	}
	return raw, nil
}

// BrandFoundation returns the parsed brand record, or nil when none is stored
// or it cannot be parsed.
func (m *Manager) BrandFoundation(ctx context.Context) (*category.BrandFoundation, error) {
	raw, ok, err := m.readRaw(ctx, store.KeyBrandFoundation)
	if err != nil || !ok || category.IsNull(raw) {
		return nil, err
	}
	brand, err := category.ParseBrandFoundation(raw)
	if err != nil {
		m.logger.Warn("stored brand foundation is unreadable", zap.Error(err))
		return nil, nil
	}
	return brand, nil
}

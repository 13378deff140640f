package manager

import (
	"context"

	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/store"
)

// ClearWarning is shown before ClearAll removes anything.
const ClearWarning = "This will permanently delete ALL your data including:\n\n" +
	"• Brand foundation\n" +
	"• Content vault\n" +
	"• Settings & preferences\n\n" +
	"Make sure you have exported your data first!\n\n" +
	"Are you absolutely sure?"

// ClearAll removes every known category after confirmation. Auto-backups and
// session keys survive. Returns whether the clear ran.
func (m *Manager) ClearAll(ctx context.Context, confirmer Confirmer) (bool, error) {
	if confirmer == nil {
		return false, errors.NewInvalidRequest("confirmation is required to clear all data")
	}

	ok, err := confirmer.Confirm(ctx, ClearWarning)
	if err != nil {
		return false, err
	}
	if !ok {
		m.logger.Info("clear all declined")
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Remove(ctx, store.DataKeys...); err != nil {
		m.logger.Error("clear all failed", zap.Error(err))
		m.notifier.Error("Failed to clear data")
		return false, err
	}

	m.notifier.Success("All data cleared successfully")
	m.scheduleChange(ChangeEvent{Reason: "clear", Keys: append([]string(nil), store.DataKeys...)})
	return true, nil
}

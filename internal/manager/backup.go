package manager

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/schedule"
	"github.com/hpungsan/clarity/internal/store"
)

// CreateAutoBackup snapshots all categories under a fresh autoBackup_<millis>
// key, then prunes all but the newest cfg.MaxAutoBackups snapshots.
// The new snapshot is written before pruning.
func (m *Manager) CreateAutoBackup(ctx context.Context) (string, error) {
	b, err := m.GetAllData(ctx)
	if err != nil {
		return "", err
	}
	value, err := marshalCompact(b)
	if err != nil {
		return "", errors.NewInternal(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.store.Keys(ctx, store.AutoBackupPrefix)
	if err != nil {
		return "", err
	}

	key := backupKey(m.now().UnixMilli(), existing)
	if _, err := m.store.Set(ctx, key, value); err != nil {
		return "", err
	}

	keep := m.cfg.MaxAutoBackups
	if keep < 1 {
		keep = 1
	}
	all := append(existing, key)
	if len(all) > keep {
		// keys are fixed-width millis, so byte order is chronological
		slices.Sort(all)
		stale := all[:len(all)-keep]
		if err := m.store.Remove(ctx, stale...); err != nil {
			m.logger.Warn("failed to prune auto-backups", zap.Strings("keys", stale), zap.Error(err))
		}
	}

	m.logger.Debug("auto-backup created", zap.String("key", key))
	return key, nil
}

// backupKey formats millis as a 13-digit key, bumping past the newest
// existing key so keys stay unique and ordered.
func backupKey(millis int64, existing []string) string {
	if n := len(existing); n > 0 {
		if last, ok := backupMillis(existing[n-1]); ok && last >= millis {
			millis = last + 1
		}
	}
	return fmt.Sprintf("%s%013d", store.AutoBackupPrefix, millis)
}

func backupMillis(key string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimPrefix(key, store.AutoBackupPrefix), 10, 64)
	return v, err == nil
}

// StartAutoBackup runs CreateAutoBackup every cfg.BackupInterval and once at
// shutdown. Failures are logged and swallowed. Returns a cancel func for the
// periodic job.
func (m *Manager) StartAutoBackup(s schedule.Scheduler) func() {
	job := func(ctx context.Context) {
		if _, err := m.CreateAutoBackup(ctx); err != nil {
			m.logger.Warn("auto-backup failed", zap.Error(err))
		}
	}

	interval := m.cfg.BackupInterval()
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	cancel := s.Every(interval, job)
	s.OnShutdown(job)
	return cancel
}

// RestoreAutoBackup imports the newest snapshot without merging or validation.
func (m *Manager) RestoreAutoBackup(ctx context.Context) (*ImportResult, error) {
	keys, err := m.store.Keys(ctx, store.AutoBackupPrefix)
	if err != nil {
		m.notifier.Error("Failed to restore backup")
		return nil, err
	}
	if len(keys) == 0 {
		m.notifier.Error("No auto-backups found")
		return nil, errors.NewNoBackupsFound()
	}

	slices.Sort(keys)
	latest := keys[len(keys)-1]

	rec, err := m.store.Get(ctx, latest)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		m.notifier.Error("Failed to restore backup")
		return nil, err
	}
	if err != nil || rec.Value == "" {
		m.notifier.Error("Backup data corrupted")
		return nil, errors.NewBackupCorrupted(latest, err)
	}

	b, err := ParseBundle([]byte(rec.Value))
	if err != nil {
		m.notifier.Error("Backup data corrupted")
		return nil, errors.NewBackupCorrupted(latest, err)
	}

	result, err := m.Import(ctx, b, ImportOptions{Merge: false, Validate: false})
	if err != nil {
		return result, err
	}
	if result.Success {
		m.notifier.Success("Restored from auto-backup!")
	}
	return result, nil
}

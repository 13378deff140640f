package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/category"
	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/store"
)

// maxImportBytes caps how much of an import file is read.
const maxImportBytes = 64 << 20

// ImportOptions controls merge and validation behaviour.
type ImportOptions struct {
	Merge    bool `json:"merge"`
	Validate bool `json:"validate"`
}

// DefaultImportOptions overwrites and validates.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{Merge: false, Validate: true}
}

// UserImportOptions merges content ideas by id and validates. The CLI and
// MCP import commands start from it.
func UserImportOptions() ImportOptions {
	return ImportOptions{Merge: true, Validate: true}
}

// FailedCategory records why one category was not imported.
type FailedCategory struct {
	Key   string           `json:"key"`
	Code  errors.ErrorCode `json:"code"`
	Error string           `json:"error"`
}

// ImportResults itemises per-category outcomes.
type ImportResults struct {
	Success []string         `json:"success"`
	Failed  []FailedCategory `json:"failed"`
	Skipped []string         `json:"skipped"`
}

// ImportResult is the outcome of an import. Success is false only when the
// bundle was structurally invalid or every attempted category failed.
type ImportResult struct {
	Success     bool          `json:"success"`
	ImportCount int           `json:"importCount"`
	Results     ImportResults `json:"results"`
	Error       string        `json:"error,omitempty"`
}

// ImportFile reads a bundle file and imports it.
func (m *Manager) ImportFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	b, err := m.readBundleFile(path)
	if err != nil {
		m.notifier.Error(fmt.Sprintf("Import failed: %s", messageOf(err)))
		return nil, err
	}
	return m.Import(ctx, b, opts)
}

func (m *Manager) readBundleFile(path string) (*Bundle, error) {
	abs, err := CheckBackupPath(path, ReadBackup, m.baseDir, m.cfg)
	if err != nil {
		return nil, err
	}

	file, err := openBackupFile(abs)
	if err != nil {
		var cErr *errors.ClarityError
		if errors.As(err, &cErr) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}

	return ParseBundle(data)
}

// Import applies a bundle category by category. Null values and unknown keys
// are skipped; a failing category does not stop the others.
func (m *Manager) Import(ctx context.Context, b *Bundle, opts ImportOptions) (*ImportResult, error) {
	if b == nil || b.Data == nil {
		err := errors.NewInvalidFormat("no data found in import file")
		m.notifier.Error(fmt.Sprintf("Import failed: %s", err.Message))
		return &ImportResult{Success: false, Error: err.Message}, err
	}

	if b.AppName != AppName {
		m.logger.Warn("importing data from a different app", zap.String("app_name", b.AppName))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := &ImportResult{
		Results: ImportResults{
			Success: []string{},
			Failed:  []FailedCategory{},
			Skipped: []string{},
		},
	}

	for _, key := range orderedKeys(b.Data) {
		if err := ctx.Err(); err != nil {
			return result, errors.NewCancelled("import")
		}

		raw := b.Data[key]
		kind, known := category.Lookup(key)
		if !known {
			m.logger.Warn("skipping unknown category", zap.String("key", key))
			result.Results.Skipped = append(result.Results.Skipped, key)
			continue
		}
		if category.IsNull(raw) {
			result.Results.Skipped = append(result.Results.Skipped, key)
			continue
		}

		if err := m.importCategory(ctx, kind, raw, opts); err != nil {
			m.logger.Error("failed to import category", zap.String("key", key), zap.Error(err))
			result.Results.Failed = append(result.Results.Failed, FailedCategory{
				Key:   key,
				Code:  errors.CodeOf(err),
				Error: messageOf(err),
			})
			continue
		}

		result.Results.Success = append(result.Results.Success, key)
		result.ImportCount++
	}

	attempted := len(result.Results.Success) + len(result.Results.Failed)
	result.Success = attempted == 0 || result.ImportCount > 0

	if result.ImportCount > 0 {
		m.notifier.Success(fmt.Sprintf("Successfully imported %d data categories!", result.ImportCount))
		m.scheduleChange(ChangeEvent{Reason: "import", Keys: append([]string(nil), result.Results.Success...)})
	} else {
		m.notifier.Error("No data was imported")
	}

	return result, nil
}

func (m *Manager) importCategory(ctx context.Context, kind category.Kind, raw json.RawMessage, opts ImportOptions) error {
	if opts.Validate {
		if err := kind.Validate(raw); err != nil {
			return err
		}
	}

	if opts.Merge && kind.Mergeable() {
		_, err := m.update(ctx, kind.Key(), func(existing json.RawMessage) (json.RawMessage, error) {
			return kind.Merge(existing, raw)
		})
		return err
	}

	value, err := compact(raw)
	if err != nil {
		return errors.NewInvalidFormat(fmt.Sprintf("invalid JSON for %s", kind.Key()))
	}
	_, err = m.store.Set(ctx, kind.Key(), value)
	return err
}

// update runs a read-modify-write on key guarded by the record version,
// retrying when another writer got there first.
func (m *Manager) update(ctx context.Context, key string, fn func(existing json.RawMessage) (json.RawMessage, error)) (string, error) {
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		var (
			existing json.RawMessage
			version  int64
		)
		rec, err := m.store.Get(ctx, key)
		switch {
		case err == nil:
			existing = json.RawMessage(rec.Value)
			version = rec.Version
		case errors.Is(err, errors.ErrNotFound):
		default:
			return "", err
		}

		next, err := fn(existing)
		if err != nil {
			return "", err
		}
		value, err := compact(next)
		if err != nil {
			return "", errors.NewInternal(err)
		}

		_, err = m.store.CompareAndSwap(ctx, key, value, version)
		if errors.Is(err, errors.ErrConflict) {
			m.logger.Debug("concurrent write, retrying",
				zap.String("key", key),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return "", err
		}
		return value, nil
	}
	return "", errors.NewConflict(fmt.Sprintf("%s kept changing; gave up after %d attempts", key, maxCASAttempts))
}

// orderedKeys lists known categories in export order, then unknown keys sorted.
func orderedKeys(data map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(data))
	for _, k := range store.DataKeys {
		if _, ok := data[k]; ok {
			keys = append(keys, k)
		}
	}
	var unknown []string
	for k := range data {
		if !store.IsDataKey(k) {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return append(keys, unknown...)
}

// messageOf returns the human-readable part of err.
func messageOf(err error) string {
	var cErr *errors.ClarityError
	if errors.As(err, &cErr) {
		return cErr.Message
	}
	return err.Error()
}

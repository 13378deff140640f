package manager

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/store"
)

// ExportInput contains parameters for the export operations.
type ExportInput struct {
	Path string // optional, default: <base>/exports/<generated name>.json
}

// ExportOutput contains the result of an export.
type ExportOutput struct {
	Path       string   `json:"path"`
	Categories []string `json:"categories"`
	Bytes      int      `json:"bytes"`
	ExportedAt string   `json:"exported_at"`
}

// ExportAll writes every category to a pretty-printed bundle file named
// <practice-name>-Backup-<date>.json.
func (m *Manager) ExportAll(ctx context.Context, input ExportInput) (*ExportOutput, error) {
	b, err := m.GetAllData(ctx)
	if err != nil {
		m.logger.Error("export failed", zap.Error(err))
		m.notifier.Error("Failed to export data")
		return nil, err
	}

	name := fmt.Sprintf("%s-Backup-%s%s",
		SanitizeForFilename(practiceName(b.Data[store.KeyBrandFoundation]), "Practice"),
		m.now().UTC().Format("2006-01-02"),
		BackupExt)

	out, err := m.writeBundle(b, input.Path, name)
	if err != nil {
		m.logger.Error("export failed", zap.Error(err))
		m.notifier.Error("Failed to export data")
		return nil, err
	}

	m.notifier.Success(fmt.Sprintf("Complete backup written to %s", out.Path))
	return out, nil
}

// ExportCategory writes a single category as <category>-backup-<date>.json.
// The file is a regular bundle carrying only that key, so it can be imported.
func (m *Manager) ExportCategory(ctx context.Context, key string, input ExportInput) (*ExportOutput, error) {
	raw, ok, err := m.readRaw(ctx, key)
	if err == nil && (!ok || !store.IsDataKey(key)) {
		err = errors.NewCategoryNotFound(key)
	}
	if err != nil {
		if errors.Is(err, errors.ErrCategoryNotFound) {
			m.notifier.Error(fmt.Sprintf("No %s data found", key))
		} else {
			m.logger.Error("category export failed", zap.String("category", key), zap.Error(err))
			m.notifier.Error(fmt.Sprintf("Failed to export %s", key))
		}
		return nil, err
	}

	b := m.newBundle()
	b.Category = key
	b.Data[key] = raw

	name := fmt.Sprintf("%s-backup-%s%s", key, m.now().UTC().Format("2006-01-02"), BackupExt)
	out, err := m.writeBundle(b, input.Path, name)
	if err != nil {
		m.logger.Error("category export failed", zap.String("category", key), zap.Error(err))
		m.notifier.Error(fmt.Sprintf("Failed to export %s", key))
		return nil, err
	}

	m.notifier.Success(fmt.Sprintf("%s exported to %s", key, out.Path))
	return out, nil
}

func (m *Manager) writeBundle(b *Bundle, path, defaultName string) (*ExportOutput, error) {
	if path == "" {
		path = filepath.Join(ExportsDir(m.baseDir), defaultName)
	}

	data, err := MarshalBundle(b)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := m.writeFileAtomic(path, data); err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(b.Data))
	for _, key := range store.DataKeys {
		if _, ok := b.Data[key]; ok {
			categories = append(categories, key)
		}
	}

	return &ExportOutput{
		Path:       path,
		Categories: categories,
		Bytes:      len(data),
		ExportedAt: b.ExportedAt,
	}, nil
}

// writeFileAtomic writes data to a temp file beside path, then renames it
// into place so an existing file survives a failed export.
func (m *Manager) writeFileAtomic(path string, data []byte) error {
	path, err := CheckBackupPath(path, WriteBackup, m.baseDir, m.cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := createBackupTemp(tempPath)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	// Clean up temp file on failure (original file is preserved)
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination
	if isSymlink(path) {
		return errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// On Windows, os.Rename fails if the destination exists; fail safely
	// rather than delete-then-rename.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// practiceName pulls practiceName out of a raw brand record, tolerating any
// other field shapes.
func practiceName(raw json.RawMessage) string {
	var brand struct {
		PracticeName any `json:"practiceName"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &brand) != nil {
		return ""
	}
	name, _ := brand.PracticeName.(string)
	return name
}

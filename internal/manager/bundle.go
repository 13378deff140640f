package manager

import (
	"bytes"
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/store"
)

// Bundle is the interchange format for exports, imports and auto-backups.
// Data maps category keys to their raw stored JSON.
type Bundle struct {
	Version    string                     `json:"version"`
	AppName    string                     `json:"appName,omitempty"`
	Category   string                     `json:"category,omitempty"`
	ExportedAt string                     `json:"exportedAt"`
	Data       map[string]json.RawMessage `json:"data"`
}

// isoMillis matches JavaScript's Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// GetAllData reads every known category. Absent keys are omitted; values that
// fail to parse are reported as null.
func (m *Manager) GetAllData(ctx context.Context) (*Bundle, error) {
	b := m.newBundle()

	for _, key := range store.DataKeys {
		raw, ok, err := m.readRaw(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			b.Data[key] = raw
		}
	}

	return b, nil
}

func (m *Manager) newBundle() *Bundle {
	return &Bundle{
		Version:    Version,
		AppName:    AppName,
		ExportedAt: m.now().UTC().Format(isoMillis),
		Data:       make(map[string]json.RawMessage),
	}
}

// readRaw returns the stored value for key. ok is false when the key is
// absent. Unparsable values come back as null with a warning.
func (m *Manager) readRaw(ctx context.Context, key string) (json.RawMessage, bool, error) {
	rec, err := m.store.Get(ctx, key)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if rec.Value == "" {
		return nil, false, nil
	}

	if !json.Valid([]byte(rec.Value)) {
		m.logger.Warn("stored value is not valid JSON", zap.String("key", key))
		return json.RawMessage("null"), true, nil
	}
	return json.RawMessage(rec.Value), true, nil
}

// MarshalBundle renders b as 2-space indented JSON with HTML characters left
// unescaped.
func MarshalBundle(b *Bundle) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalCompact renders b on one line, used for auto-backup snapshots.
func marshalCompact(b *Bundle) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(b); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// ParseBundle decodes an import payload. Malformed JSON or a missing data
// object is INVALID_FORMAT.
func ParseBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.NewInvalidFormat("invalid file format")
	}
	if b.Data == nil {
		return nil, errors.NewInvalidFormat("no data found in import file")
	}
	return &b, nil
}

// compact strips insignificant whitespace from raw.
func compact(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

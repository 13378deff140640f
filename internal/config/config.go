package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// EnvPrefix is the prefix for environment overrides (CLARITY_PROXY_URL -> proxy_url).
const EnvPrefix = "CLARITY_"

// Config holds application configuration.
type Config struct {
	// ProxyURL is the chat-completion proxy endpoint used for AI generation.
	// Empty means AI generation is disabled and the local database is always used.
	ProxyURL string `json:"proxy_url,omitempty"`

	// ProxyHeaders are static headers sent with every proxy request
	// (e.g. the hosting platform's anon key). Never put the provider key here.
	ProxyHeaders map[string]string `json:"proxy_headers,omitempty"`

	// ProxyTimeoutSeconds bounds a single proxy round trip.
	ProxyTimeoutSeconds int `json:"proxy_timeout_seconds,omitempty"`

	// Model is forwarded to the proxy; the relay picks its own default when empty.
	Model string `json:"model,omitempty"`

	// BreakerEnabled wraps the proxy client in a circuit breaker.
	BreakerEnabled bool `json:"breaker_enabled,omitempty"`

	// StalenessWindowSeconds is how long a successful connection test stays fresh.
	StalenessWindowSeconds int `json:"staleness_window_seconds,omitempty"`

	// StoreBackend selects the key-value store: "sqlite" (default) or "bolt".
	StoreBackend string `json:"store_backend,omitempty"`

	// BackupIntervalMinutes is the auto-backup period.
	BackupIntervalMinutes int `json:"backup_interval_minutes,omitempty"`

	// MaxAutoBackups is the number of auto-backup snapshots retained.
	MaxAutoBackups int `json:"max_auto_backups,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside <base>/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// When true, any directory is allowed (but symlink and extension checks still apply).
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// RelayAddr is the listen address for `clarity relay`.
	RelayAddr string `json:"relay_addr,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ProxyTimeoutSeconds:    60,
		StalenessWindowSeconds: 300,
		StoreBackend:           BackendSQLite,
		BackupIntervalMinutes:  30,
		MaxAutoBackups:         3,
		RelayAddr:              "127.0.0.1:8787",
	}
}

// ProxyTimeout returns ProxyTimeoutSeconds as a duration.
func (c *Config) ProxyTimeout() time.Duration {
	return time.Duration(c.ProxyTimeoutSeconds) * time.Second
}

// StalenessWindow returns StalenessWindowSeconds as a duration.
func (c *Config) StalenessWindow() time.Duration {
	return time.Duration(c.StalenessWindowSeconds) * time.Second
}

// BackupInterval returns BackupIntervalMinutes as a duration.
func (c *Config) BackupInterval() time.Duration {
	return time.Duration(c.BackupIntervalMinutes) * time.Minute
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendSQLite, BackendBolt:
	default:
		return fmt.Errorf("invalid store_backend %q: must be one of sqlite, bolt", c.StoreBackend)
	}
	if c.MaxAutoBackups < 1 {
		return fmt.Errorf("max_auto_backups must be at least 1")
	}
	if c.BackupIntervalMinutes < 1 {
		return fmt.Errorf("backup_interval_minutes must be at least 1")
	}
	if c.ProxyURL != "" && !strings.HasPrefix(c.ProxyURL, "http://") && !strings.HasPrefix(c.ProxyURL, "https://") {
		return fmt.Errorf("proxy_url must be an http(s) URL")
	}
	return nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.clarity.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithEnv loads baseDir/config.json and then overlays CLARITY_* environment
// variables. Environment values win for scalars.
func LoadWithEnv(baseDir string) (*Config, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return nil, err
	}
	overlay, err := loadEnv()
	if err != nil {
		return nil, err
	}
	return Merge(cfg, overlay), nil
}

// loadEnv builds a zero-valued overlay config from CLARITY_* variables.
// Scalar strings are weakly decoded, so CLARITY_MAX_AUTO_BACKUPS=5 works.
func loadEnv() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("unmarshalling env overrides: %w", err)
	}
	return cfg, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.ProxyURL = firstString(overlay.ProxyURL, base.ProxyURL)
	result.Model = firstString(overlay.Model, base.Model)
	result.StoreBackend = firstString(overlay.StoreBackend, base.StoreBackend)
	result.RelayAddr = firstString(overlay.RelayAddr, base.RelayAddr)

	result.ProxyTimeoutSeconds = firstInt(overlay.ProxyTimeoutSeconds, base.ProxyTimeoutSeconds)
	result.StalenessWindowSeconds = firstInt(overlay.StalenessWindowSeconds, base.StalenessWindowSeconds)
	result.BackupIntervalMinutes = firstInt(overlay.BackupIntervalMinutes, base.BackupIntervalMinutes)
	result.MaxAutoBackups = firstInt(overlay.MaxAutoBackups, base.MaxAutoBackups)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths
	result.BreakerEnabled = base.BreakerEnabled || overlay.BreakerEnabled

	// Headers: base first, overlay keys replace
	if len(base.ProxyHeaders)+len(overlay.ProxyHeaders) > 0 {
		result.ProxyHeaders = make(map[string]string, len(base.ProxyHeaders)+len(overlay.ProxyHeaders))
		for k, v := range base.ProxyHeaders {
			result.ProxyHeaders[k] = v
		}
		for k, v := range overlay.ProxyHeaders {
			result.ProxyHeaders[k] = v
		}
	}

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

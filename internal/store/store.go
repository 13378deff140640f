// Package store is the local key-value accessor behind the Data Manager.
//
// Values are opaque strings (compact JSON written by the manager). Every record
// carries a version counter that starts at 1 and increments on each write, so
// read-modify-write callers can use CompareAndSwap instead of last-write-wins.
package store

import (
	"context"
	"strings"
)

// Known category keys.
const (
	KeyBrandFoundation   = "brandFoundation"
	KeyContentIdeas      = "contentIdeas"
	KeyUserSettings      = "userSettings"
	KeyTemplateFavorites = "templateFavorites"
	KeyAppPreferences    = "appPreferences"
)

// Session keys owned by the password gate. Never touched by clear or import.
const (
	KeyAuthenticated = "clarity_authenticated"
	KeyAuthTimestamp = "clarity_auth_timestamp"
)

// AutoBackupPrefix prefixes every auto-backup snapshot key.
const AutoBackupPrefix = "autoBackup_"

// DataKeys lists the category keys in export order.
var DataKeys = []string{
	KeyBrandFoundation,
	KeyContentIdeas,
	KeyUserSettings,
	KeyTemplateFavorites,
	KeyAppPreferences,
}

// IsDataKey reports whether key is one of DataKeys.
func IsDataKey(key string) bool {
	for _, k := range DataKeys {
		if k == key {
			return true
		}
	}
	return false
}

// IsAutoBackupKey reports whether key names an auto-backup snapshot.
func IsAutoBackupKey(key string) bool {
	return strings.HasPrefix(key, AutoBackupPrefix)
}

// Record is one stored value with its concurrency metadata.
type Record struct {
	Key       string
	Value     string
	Version   int64
	UpdatedAt int64 // unix millis
}

// Store is a flat, string-keyed persistent map.
//
// Get returns NOT_FOUND when the key is absent. CompareAndSwap with
// expectVersion 0 only succeeds when the key is absent; otherwise the stored
// version must equal expectVersion. A mismatch returns CONFLICT. Remove deletes
// all given keys in one transaction; absent keys are ignored. Keys returns
// matching keys in ascending byte order. Backend failures surface as
// STORAGE_UNAVAILABLE.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	Set(ctx context.Context, key, value string) (*Record, error)
	CompareAndSwap(ctx context.Context, key, value string, expectVersion int64) (*Record, error)
	Remove(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

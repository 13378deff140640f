// Package category defines the known data categories as a closed set of
// kinds, each carrying its own validation and merge behaviour.
package category

import (
	"bytes"
	"encoding/json"

	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/store"
)

// Kind is one known category.
type Kind interface {
	// Key is the store key the category lives under.
	Key() string
	// Mergeable reports whether Merge does anything other than overwrite.
	Mergeable() bool
	// Validate checks required-field presence. Returns VALIDATION_FAILED.
	Validate(raw json.RawMessage) error
	// Merge combines the stored value with an incoming one. existing may be nil.
	Merge(existing, incoming json.RawMessage) (json.RawMessage, error)
}

// BrandFoundationKind is the singleton brand record.
type BrandFoundationKind struct{}

func (BrandFoundationKind) Key() string { return store.KeyBrandFoundation }
func (BrandFoundationKind) Mergeable() bool { return false }

func (k BrandFoundationKind) Validate(raw json.RawMessage) error {
	var p brandPresence
	if err := decodeObject(raw, &p); err != nil {
		return errors.NewValidationFailed(k.Key(), err.Error())
	}
	if err := checkPresence(&p); err != nil {
		return errors.NewValidationFailed(k.Key(), err.Error())
	}
	return nil
}

func (BrandFoundationKind) Merge(_, incoming json.RawMessage) (json.RawMessage, error) {
	return incoming, nil
}

// ContentIdeasKind is the idea collection, merged by id.
type ContentIdeasKind struct{}

func (ContentIdeasKind) Key() string { return store.KeyContentIdeas }
func (ContentIdeasKind) Mergeable() bool { return true }

func (k ContentIdeasKind) Validate(raw json.RawMessage) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return errors.NewValidationFailed(k.Key(), "expected an array of content ideas")
	}
	for i, item := range items {
		var p ideaPresence
		if err := decodeObject(item, &p); err != nil {
			return errors.NewValidationFailed(k.Key(), itemReason(i, err))
		}
		if err := checkPresence(&p); err != nil {
			return errors.NewValidationFailed(k.Key(), itemReason(i, err))
		}
	}
	return nil
}

func (k ContentIdeasKind) Merge(existing, incoming json.RawMessage) (json.RawMessage, error) {
	merged, err := MergeByID(existing, incoming)
	if err != nil {
		return nil, errors.NewValidationFailed(k.Key(), err.Error())
	}
	return merged, nil
}

// objectKind is a flat settings record: any JSON object, overwritten wholesale.
type objectKind struct {
	key string
}

func (k objectKind) Key() string { return k.key }
func (objectKind) Mergeable() bool { return false }

func (k objectKind) Validate(raw json.RawMessage) error {
	var m map[string]json.RawMessage
	if err := decodeObject(raw, &m); err != nil {
		return errors.NewValidationFailed(k.key, err.Error())
	}
	return nil
}

func (objectKind) Merge(_, incoming json.RawMessage) (json.RawMessage, error) {
	return incoming, nil
}

// TemplateFavoritesKind accepts any JSON value.
type TemplateFavoritesKind struct{}

func (TemplateFavoritesKind) Key() string { return store.KeyTemplateFavorites }
func (TemplateFavoritesKind) Mergeable() bool { return false }
func (TemplateFavoritesKind) Validate(json.RawMessage) error { return nil }
func (TemplateFavoritesKind) Merge(_, incoming json.RawMessage) (json.RawMessage, error) {
	return incoming, nil
}

var (
	UserSettings   Kind = objectKind{key: store.KeyUserSettings}
	AppPreferences Kind = objectKind{key: store.KeyAppPreferences}
)

// all is ordered like store.DataKeys.
var all = []Kind{
	BrandFoundationKind{},
	ContentIdeasKind{},
	UserSettings,
	TemplateFavoritesKind{},
	AppPreferences,
}

// All returns every known kind in export order.
func All() []Kind {
	out := make([]Kind, len(all))
	copy(out, all)
	return out
}

// Lookup returns the kind stored under key.
func Lookup(key string) (Kind, bool) {
	for _, k := range all {
		if k.Key() == key {
			return k, true
		}
	}
	return nil, false
}

// IsNull reports whether raw is absent or the JSON literal null.
func IsNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

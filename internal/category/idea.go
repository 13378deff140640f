package category

import (
	"bytes"
	"encoding/json"
)

// ContentIdea is one entry in the content vault.
type ContentIdea struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Platform   string   `json:"platform"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	DateAdded  string   `json:"dateAdded"`
	IsFavorite bool     `json:"isFavorite"`
}

// Encode marshals v compactly without escaping <, > and &.
func Encode(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// SplitArray decodes a stored JSON array into its raw items.
// A null or absent value is an empty list.
func SplitArray(raw json.RawMessage) ([]json.RawMessage, error) {
	if IsNull(raw) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// JoinArray is the inverse of SplitArray.
func JoinArray(items []json.RawMessage) (json.RawMessage, error) {
	return joinArray(items)
}

// SameID reports whether item's id equals id.
func SameID(item json.RawMessage, id int64) bool {
	key := idKey(item)
	want := idKey(json.RawMessage(`{"id":` + jsonInt(id) + `}`))
	return key != "" && key == want
}

// SetField replaces (or adds) one top-level field of a JSON object item,
// keeping the other fields' raw values. Field order follows encoding/json's
// map ordering (sorted keys).
func SetField(item json.RawMessage, field string, value any) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := decodeObject(item, &obj); err != nil {
		return nil, err
	}
	encoded, err := Encode(value)
	if err != nil {
		return nil, err
	}
	obj[field] = encoded
	return Encode(obj)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// HasID reports whether any item carries id.
func HasID(items []json.RawMessage, id int64) bool {
	for _, item := range items {
		if SameID(item, id) {
			return true
		}
	}
	return false
}

package category

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strconv"
)

// MergeByID merges two JSON arrays of objects by their "id" field.
//
// Existing items come first, unchanged. Incoming items are appended in order
// when their id is not already present (in existing or earlier in incoming).
// Numeric ids compare by value, so 1 and 1.0 are the same id. A nil or
// non-array existing value is treated as empty. Items are kept byte-for-byte
// apart from whitespace compaction.
func MergeByID(existing, incoming json.RawMessage) (json.RawMessage, error) {
	var newItems []json.RawMessage
	if err := json.Unmarshal(incoming, &newItems); err != nil {
		return nil, stderrors.New("merge requires an array")
	}

	var oldItems []json.RawMessage
	if !IsNull(existing) {
		if err := json.Unmarshal(existing, &oldItems); err != nil {
			oldItems = nil
		}
	}

	seen := make(map[string]bool, len(oldItems)+len(newItems))
	out := make([]json.RawMessage, 0, len(oldItems)+len(newItems))

	for _, item := range oldItems {
		seen[idKey(item)] = true
		out = append(out, item)
	}
	for _, item := range newItems {
		key := idKey(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}

	return joinArray(out)
}

// idKey returns a comparable identity for an item's id field.
// Items without an id (or non-objects) share the empty identity.
func idKey(item json.RawMessage) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(item, &obj); err != nil {
		return ""
	}
	raw, ok := obj["id"]
	if !ok {
		return ""
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err == nil {
		if n, ok := v.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
			}
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "r:" + string(raw)
	}
	return "r:" + buf.String()
}

// joinArray writes items as a compact JSON array without re-escaping them.
func joinArray(items []json.RawMessage) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := json.Compact(&buf, item); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

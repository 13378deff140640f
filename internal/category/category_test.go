package category

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/store"
)

func TestLookup(t *testing.T) {
	for _, key := range store.DataKeys {
		k, ok := Lookup(key)
		if !ok {
			t.Fatalf("Lookup(%q) not found", key)
		}
		if k.Key() != key {
			t.Errorf("Key() = %q, want %q", k.Key(), key)
		}
	}

	if _, ok := Lookup("autoBackup_1"); ok {
		t.Error("Lookup(autoBackup_1) should not resolve")
	}
}

func TestAll_MatchesDataKeys(t *testing.T) {
	kinds := All()
	require.Len(t, kinds, len(store.DataKeys))
	for i, k := range kinds {
		require.Equal(t, store.DataKeys[i], k.Key())
	}
}

func TestMergeable(t *testing.T) {
	for _, k := range All() {
		want := k.Key() == store.KeyContentIdeas
		if k.Mergeable() != want {
			t.Errorf("%s Mergeable() = %v, want %v", k.Key(), k.Mergeable(), want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		kind       Kind
		raw        string
		wantErr    bool
		wantReason string
	}{
		{"brand ok", BrandFoundationKind{}, `{"practiceName":"Calm Minds"}`, false, ""},
		{"brand empty name still present", BrandFoundationKind{}, `{"practiceName":""}`, false, ""},
		{"brand missing name", BrandFoundationKind{}, `{"brandTone":"warm"}`, true, "missing required field: practiceName"},
		{"brand null name is present", BrandFoundationKind{}, `{"practiceName":null}`, false, ""},
		{"brand not object", BrandFoundationKind{}, `["x"]`, true, "expected a JSON object"},
		{"ideas ok", ContentIdeasKind{}, `[{"id":1,"title":"t","content":"c"}]`, false, ""},
		{"ideas empty", ContentIdeasKind{}, `[]`, false, ""},
		{"ideas any id type", ContentIdeasKind{}, `[{"id":"abc","title":1,"content":true}]`, false, ""},
		{"ideas null title is present", ContentIdeasKind{}, `[{"id":1,"title":null,"content":"c"}]`, false, ""},
		{"ideas missing title", ContentIdeasKind{}, `[{"id":1,"title":"t","content":"c"},{"id":2,"content":"c"}]`, true, "item 1: missing required field: title"},
		{"ideas not array", ContentIdeasKind{}, `{"id":1}`, true, "expected an array"},
		{"ideas item not object", ContentIdeasKind{}, `[1]`, true, "item 0"},
		{"settings object", UserSettings, `{"theme":"dark"}`, false, ""},
		{"settings scalar", AppPreferences, `"dark"`, true, "expected a JSON object"},
		{"favorites anything", TemplateFavoritesKind{}, `[1,2,3]`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.kind.Validate(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, errors.ErrValidationFailed) {
				t.Errorf("Validate() code = %v, want VALIDATION_FAILED", errors.CodeOf(err))
			}
			if !strings.Contains(err.Error(), tt.wantReason) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantReason)
			}
		})
	}
}

func TestMergeByID_ExistingFirstThenNewUniques(t *testing.T) {
	existing := json.RawMessage(`[{"id":1,"title":"mine"},{"id":2,"title":"local"}]`)
	incoming := json.RawMessage(`[{"id":1,"title":"theirs"},{"id":3,"title":"new"},{"id":3,"title":"dup"}]`)

	merged, err := MergeByID(existing, incoming)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":1,"title":"mine"},{"id":2,"title":"local"},{"id":3,"title":"new"}]`, string(merged))
}

func TestMergeByID_Idempotent(t *testing.T) {
	bundle := json.RawMessage(`[{"id":10,"title":"a"},{"id":11,"title":"b"}]`)

	once, err := MergeByID(nil, bundle)
	require.NoError(t, err)
	twice, err := MergeByID(once, bundle)
	require.NoError(t, err)

	require.Equal(t, string(once), string(twice))
}

func TestMergeByID_NumericIDsCompareByValue(t *testing.T) {
	merged, err := MergeByID(json.RawMessage(`[{"id":1}]`), json.RawMessage(`[{"id":1.0},{"id":"1"}]`))
	require.NoError(t, err)
	// string "1" is a different id
	require.Equal(t, `[{"id":1},{"id":"1"}]`, string(merged))
}

func TestMergeByID_PreservesRawBytes(t *testing.T) {
	merged, err := MergeByID(json.RawMessage(`[{"id":1,"content":"<b>&</b>"}]`), json.RawMessage(`[]`))
	require.NoError(t, err)
	require.Equal(t, `[{"id":1,"content":"<b>&</b>"}]`, string(merged))
}

func TestMergeByID_IncomingNotArray(t *testing.T) {
	_, err := ContentIdeasKind{}.Merge(json.RawMessage(`[]`), json.RawMessage(`{"id":1}`))
	if !errors.Is(err, errors.ErrValidationFailed) {
		t.Fatalf("Merge() error = %v, want VALIDATION_FAILED", err)
	}
}

func TestMergeByID_CorruptExistingTreatedAsEmpty(t *testing.T) {
	merged, err := MergeByID(json.RawMessage(`{"oops":true}`), json.RawMessage(`[{"id":1}]`))
	require.NoError(t, err)
	require.Equal(t, `[{"id":1}]`, string(merged))
}

func TestOverwriteKindsReturnIncoming(t *testing.T) {
	for _, k := range []Kind{BrandFoundationKind{}, UserSettings, TemplateFavoritesKind{}, AppPreferences} {
		out, err := k.Merge(json.RawMessage(`{"a":1}`), json.RawMessage(`{"b":2}`))
		require.NoError(t, err)
		require.Equal(t, `{"b":2}`, string(out), k.Key())
	}
}

func TestSetFieldAndSameID(t *testing.T) {
	item := json.RawMessage(`{"id":1700000000000,"title":"x","extra":{"keep":"<me>"}}`)

	require.True(t, SameID(item, 1700000000000))
	require.False(t, SameID(item, 1))

	updated, err := SetField(item, "isFavorite", true)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":1700000000000,"title":"x","extra":{"keep":"<me>"},"isFavorite":true}`, string(updated))
	require.Contains(t, string(updated), `"<me>"`)
}

func TestSplitJoinArray(t *testing.T) {
	items, err := SplitArray(nil)
	require.NoError(t, err)
	require.Empty(t, items)

	items, err = SplitArray(json.RawMessage(`[ {"id": 1} , {"id":2} ]`))
	require.NoError(t, err)
	require.Len(t, items, 2)

	joined, err := JoinArray(items)
	require.NoError(t, err)
	require.Equal(t, `[{"id":1},{"id":2}]`, string(joined))
}

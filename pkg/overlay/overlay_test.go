package overlay

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/arthur-debert/branchtint/pkg/datastore/testutil"
	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKeys = KeysFor("/work/project")

func loadStore(t *testing.T, ds *testutil.MemoryStore) *Store {
	t.Helper()
	s, err := Load(context.Background(), ds, testKeys)
	require.NoError(t, err)
	return s
}

func TestKeysFor(t *testing.T) {
	a := KeysFor("/work/project")
	b := KeysFor("/work/other")

	assert.NotEqual(t, a.Originals, b.Originals)
	assert.Regexp(t, `^ws/[0-9a-f]{16}/targets$`, a.Targets)
	assert.Regexp(t, `^ws/[0-9a-f]{16}/originals$`, a.Originals)
	assert.Regexp(t, `^ws/[0-9a-f]{16}/applied$`, a.Applied)
	assert.Regexp(t, `^ws/[0-9a-f]{16}/section$`, a.Section)
}

func TestOriginal_JSON(t *testing.T) {
	tests := []struct {
		name     string
		original Original
		wantJSON string
	}{
		{"absent", Absent(), `{"missing":true}`},
		{"string value", Present("#111111"), `{"value":"#111111"}`},
		{"null is not absent", Present(nil), `{"value":null}`},
		{"nested value", Present(map[string]any{"a": "b"}), `{"value":{"a":"b"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.original)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(raw))

			var back Original
			require.NoError(t, json.Unmarshal(raw, &back))
			assert.Equal(t, tt.original.IsPresent(), back.IsPresent())
			gotV, _ := back.Get()
			wantV, _ := tt.original.Get()
			assert.Equal(t, wantV, gotV)
		})
	}
}

func TestPresent_IsolatedFromSnapshot(t *testing.T) {
	nested := map[string]any{"titleBar.activeBackground": "#123456"}
	o := Present(nested)
	nested["titleBar.activeBackground"] = "#FFFFFF"

	v, ok := o.Get()
	require.True(t, ok)
	assert.Equal(t, "#123456", v.(map[string]any)["titleBar.activeBackground"])
}

func TestRemember_FirstObservationWins(t *testing.T) {
	s := loadStore(t, testutil.NewMemoryStore())

	assert.True(t, s.Remember("k", map[string]any{"k": "#user"}))
	assert.False(t, s.Remember("k", map[string]any{"k": "#overlay"}))

	o, ok := s.Original("k")
	require.True(t, ok)
	v, present := o.Get()
	assert.True(t, present)
	assert.Equal(t, "#user", v)
}

func TestRemember_AbsentKey(t *testing.T) {
	s := loadStore(t, testutil.NewMemoryStore())

	s.Remember("k", map[string]any{"other": "x"})
	o, ok := s.Original("k")
	require.True(t, ok)
	assert.False(t, o.IsPresent())
}

func TestApplied(t *testing.T) {
	s := loadStore(t, testutil.NewMemoryStore())

	s.SetApplied("k", "#FF0000")
	v, ok := s.Applied("k")
	assert.True(t, ok)
	assert.Equal(t, "#FF0000", v)

	s.ClearApplied("k")
	_, ok = s.Applied("k")
	assert.False(t, ok)
}

func TestFlush_OnlyWritesWhatChanged(t *testing.T) {
	ctx := context.Background()
	ds := testutil.NewMemoryStore()

	s := loadStore(t, ds)
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 0, ds.Writes(), "clean store must not write")

	s.Remember("k", map[string]any{})
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 1, ds.Writes(), "only originals were dirty")

	s = loadStore(t, ds)
	s.Remember("k", map[string]any{"k": "ignored"})
	s.SetApplied("k", "#FF0000")
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 2, ds.Writes(), "only applied was dirty")

	s = loadStore(t, ds)
	s.SetApplied("k", "#FF0000")
	s.ClearApplied("missing")
	assert.False(t, s.Dirty())
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 2, ds.Writes())
}

func TestFlush_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ds := testutil.NewMemoryStore()

	s := loadStore(t, ds)
	s.Remember("a", map[string]any{})
	s.Remember("b", map[string]any{"b": "#111111"})
	s.SetApplied("a", "#FF0000")
	require.NoError(t, s.Flush(ctx))

	raw, ok := ds.Raw(testKeys.Originals)
	require.True(t, ok)
	assert.JSONEq(t, `{"a":{"missing":true},"b":{"value":"#111111"}}`, raw)

	reloaded := loadStore(t, ds)
	assert.Equal(t, []string{"a", "b"}, reloaded.TrackedKeys())
	st := reloaded.State()
	assert.False(t, st.Originals["a"].IsPresent())
	assert.Equal(t, "#FF0000", st.Applied["a"])
}

func TestDiscardAll(t *testing.T) {
	ctx := context.Background()
	ds := testutil.NewMemoryStore()

	s := loadStore(t, ds)
	s.Remember("a", map[string]any{})
	s.SetApplied("a", "#FF0000")
	require.NoError(t, s.Flush(ctx))

	s = loadStore(t, ds)
	assert.False(t, s.Empty())
	s.DiscardAll()
	assert.True(t, s.Empty())
	require.NoError(t, s.Flush(ctx))

	assert.Empty(t, ds.Keys(), "empty maps are deleted from the store")
	assert.True(t, loadStore(t, ds).Empty())
}

func TestDiscardAll_EmptyIsClean(t *testing.T) {
	s := loadStore(t, testutil.NewMemoryStore())
	s.DiscardAll()
	assert.False(t, s.Dirty())
}

func TestLoad_PersistenceFailure(t *testing.T) {
	ds := testutil.NewMemoryStore()
	ds.FailGet = assert.AnError

	_, err := Load(context.Background(), ds, testKeys)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPersistence))
}

func TestFlush_PersistenceFailure(t *testing.T) {
	ds := testutil.NewMemoryStore()
	s := loadStore(t, ds)
	s.SetApplied("a", "#FF0000")

	ds.FailPut = assert.AnError
	err := s.Flush(context.Background())
	assert.True(t, errors.IsErrorCode(err, errors.ErrPersistence))
	assert.True(t, s.Dirty(), "failed flush keeps the store dirty")
}

func TestTargets(t *testing.T) {
	ctx := context.Background()
	ds := testutil.NewMemoryStore()

	prev, err := LoadTargets(ctx, ds, testKeys)
	require.NoError(t, err)
	assert.Empty(t, prev)

	wrote, err := SaveTargets(ctx, ds, testKeys, prev, []string{"b", "a"})
	require.NoError(t, err)
	assert.True(t, wrote)

	prev, err = LoadTargets(ctx, ds, testKeys)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, prev)

	wrote, err = SaveTargets(ctx, ds, testKeys, prev, []string{"b", "a"})
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Equal(t, 1, ds.Writes())
}

func TestSectionPresence(t *testing.T) {
	ctx := context.Background()
	ds := testutil.NewMemoryStore()

	s := loadStore(t, ds)
	_, recorded := s.SectionExisted()
	assert.False(t, recorded)

	s.RememberSection(true)
	s.RememberSection(false)
	existed, recorded := s.SectionExisted()
	assert.True(t, recorded)
	assert.True(t, existed, "first record wins")
	require.NoError(t, s.Flush(ctx))

	raw, ok := ds.Raw(testKeys.Section)
	require.True(t, ok)
	assert.JSONEq(t, `true`, raw)

	s = loadStore(t, ds)
	existed, recorded = s.SectionExisted()
	assert.True(t, recorded)
	assert.True(t, existed)
	require.NotNil(t, s.State().SectionExisted)
	assert.True(t, *s.State().SectionExisted)

	s.DiscardAll()
	_, recorded = s.SectionExisted()
	assert.True(t, recorded, "DiscardAll keeps the section record")

	s.ForgetSection()
	require.NoError(t, s.Flush(ctx))
	assert.Empty(t, ds.Keys())
}

func TestSectionPresence_FalseIsStored(t *testing.T) {
	ctx := context.Background()
	ds := testutil.NewMemoryStore()

	s := loadStore(t, ds)
	s.RememberSection(false)
	require.NoError(t, s.Flush(ctx))

	existed, recorded := loadStore(t, ds).SectionExisted()
	assert.True(t, recorded)
	assert.False(t, existed)
}

// pkg/datastore/badger_test.go
// TEST TYPE: DataStore Tests
// DEPENDENCIES: badger (in-memory and on-disk)
// PURPOSE: Test JSON round-trips, missing keys and durability

package datastore_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/arthur-debert/branchtint/pkg/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInMemory(t *testing.T) datastore.DataStore {
	t.Helper()
	ds, err := datastore.Open(datastore.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func TestGet_MissingKey(t *testing.T) {
	ds := openInMemory(t)

	var got []string
	found, err := ds.Get(context.Background(), "ws/none/targets", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestPutGet_PreservesOrderAndNumbers(t *testing.T) {
	ctx := context.Background()
	ds := openInMemory(t)

	require.NoError(t, ds.Put(ctx, "targets", []string{"b", "a", "c"}))
	var targets []string
	found, err := ds.Get(ctx, "targets", &targets)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"b", "a", "c"}, targets)

	require.NoError(t, ds.Put(ctx, "mixed", map[string]any{"n": 12345678901234567}))
	var mixed map[string]any
	_, err = ds.Get(ctx, "mixed", &mixed)
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567"), mixed["n"])
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	ds := openInMemory(t)

	require.NoError(t, ds.Put(ctx, "applied", map[string]string{"k": "#fff"}))
	require.NoError(t, ds.Delete(ctx, "applied"))
	require.NoError(t, ds.Delete(ctx, "never-set"))

	var applied map[string]string
	found, err := ds.Get(ctx, "applied", &applied)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ds, err := datastore.Open(datastore.DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, ds.Put(ctx, "applied", map[string]string{"titleBar.activeBackground": "#FF0000"}))
	require.NoError(t, ds.Close())

	ds, err = datastore.Open(datastore.DefaultConfig(dir))
	require.NoError(t, err)
	defer func() { _ = ds.Close() }()

	var applied map[string]string
	found, err := ds.Get(ctx, "applied", &applied)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "#FF0000", applied["titleBar.activeBackground"])
}

func TestOpen_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	writer, err := datastore.Open(datastore.DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, writer.Put(ctx, "targets", []string{"a"}))

	_, err = datastore.Open(datastore.Config{Path: dir, ReadOnly: true})
	assert.Error(t, err, "a writer holds the database")
	require.NoError(t, writer.Close())

	ro, err := datastore.Open(datastore.Config{Path: dir, ReadOnly: true})
	require.NoError(t, err)
	defer func() { _ = ro.Close() }()

	var targets []string
	found, err := ro.Get(ctx, "targets", &targets)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a"}, targets)
	assert.Error(t, ro.Put(ctx, "targets", []string{"b"}))
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := datastore.Open(datastore.Config{})
	assert.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	ds := openInMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, ds.Put(ctx, "k", "v"))
	_, err := ds.Get(ctx, "k", new(string))
	assert.Error(t, err)
}

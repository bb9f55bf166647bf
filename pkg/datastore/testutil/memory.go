// Package testutil provides in-memory DataStore implementations for tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemoryStore is a DataStore that keeps JSON-encoded values in a map and
// counts writes, so tests can assert that a pass performed no redundant I/O.
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	puts    int
	deletes int

	// FailPut, when set, is returned by every Put and Delete.
	FailPut error
	// FailGet, when set, is returned by every Get.
	FailGet error
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get implements datastore.DataStore
func (m *MemoryStore) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailGet != nil {
		return false, m.FailGet
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return true, dec.Decode(dst)
}

// Put implements datastore.DataStore
func (m *MemoryStore) Put(_ context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPut != nil {
		return m.FailPut
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.puts++
	return nil
}

// Delete implements datastore.DataStore
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPut != nil {
		return m.FailPut
	}
	if _, ok := m.data[key]; ok {
		delete(m.data, key)
		m.deletes++
	}
	return nil
}

// Close implements datastore.DataStore
func (m *MemoryStore) Close() error { return nil }

// Writes returns the number of Put and effective Delete calls so far
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts + m.deletes
}

// Raw returns the stored JSON for key
func (m *MemoryStore) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	return string(raw), ok
}

// Keys returns all stored keys, sorted
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

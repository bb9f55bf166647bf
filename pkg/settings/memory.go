package settings

import (
	"context"
	"sort"
	"sync"

	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/internal/jsonutil"
)

// MemoryStore is an in-process Store. Like an editor's own configuration
// service it notifies watchers synchronously, including for writes made
// through Update, so callers must tell their own writes apart.
type MemoryStore struct {
	mu       sync.Mutex
	doc      map[string]any
	handlers []func(ChangeEvent)
	updates  int
}

// NewMemoryStore creates a store holding a copy of doc
func NewMemoryStore(doc map[string]any) *MemoryStore {
	if doc == nil {
		doc = map[string]any{}
	}
	return &MemoryStore{doc: jsonutil.CloneMap(doc)}
}

// Section implements Store
func (m *MemoryStore) Section(ctx context.Context, key string) (map[string]any, bool, error) {
	v, ok, err := m.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	section, isObject := v.(map[string]any)
	if !isObject {
		return nil, true, errors.Newf(errors.ErrSettingsShape, "setting %q is not an object", key)
	}
	return section, true, nil
}

// Get implements Store
func (m *MemoryStore) Get(ctx context.Context, key string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.doc[key]
	return jsonutil.Clone(v), ok, nil
}

// Update implements Store
func (m *MemoryStore) Update(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.updates++
	m.mu.Unlock()
	m.Set(key, value)
	return nil
}

// Watch implements Store. Handlers are dropped when ctx ends.
func (m *MemoryStore) Watch(ctx context.Context, handler func(ChangeEvent)) error {
	m.mu.Lock()
	m.handlers = append(m.handlers, handler)
	idx := len(m.handlers) - 1
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		m.handlers[idx] = nil
		m.mu.Unlock()
	}()
	return nil
}

// Set changes a member as an external editor would and notifies watchers.
// A nil value removes the member.
func (m *MemoryStore) Set(key string, value any) {
	m.mu.Lock()
	if value == nil {
		delete(m.doc, key)
	} else {
		m.doc[key] = jsonutil.Clone(value)
	}
	handlers := make([]func(ChangeEvent), 0, len(m.handlers))
	for _, h := range m.handlers {
		if h != nil {
			handlers = append(handlers, h)
		}
	}
	m.mu.Unlock()

	ev := ChangeEvent{Keys: []string{key}}
	for _, h := range handlers {
		h(ev)
	}
}

// Updates returns how many times Update was called
func (m *MemoryStore) Updates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates
}

// Snapshot returns a copy of the whole document
func (m *MemoryStore) Snapshot() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return jsonutil.CloneMap(m.doc)
}

// Keys returns the document's member names, sorted
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.doc))
	for k := range m.doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

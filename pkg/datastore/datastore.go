package datastore

import "context"

// DataStore persists JSON-encodable values under string keys. Keys are
// durable across restarts and scoped to one installation.
type DataStore interface {
	// Get decodes the value stored under key into dst. It reports false,
	// leaving dst untouched, when the key does not exist.
	Get(ctx context.Context, key string, dst any) (bool, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value any) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying storage.
	Close() error
}

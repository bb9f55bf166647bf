// Package settings reads and writes the editor's workspace settings, the
// host-owned configuration the overlay is applied to.
//
// Settings are a flat JSON object whose member names are dotted keys such
// as "workbench.colorCustomizations". The overlay only ever rewrites a
// single member wholesale; everything else in the document belongs to the
// user and is left as found.
package settings

import (
	"context"
	"strings"
)

const (
	// ColorCustomizations is the member holding per-workspace UI colors
	ColorCustomizations = "workbench.colorCustomizations"

	// ColorTheme is the member naming the active color theme
	ColorTheme = "workbench.colorTheme"
)

// Store is the host configuration store
type Store interface {
	// Section returns a copy of the object held by key. The boolean is
	// false when the member does not exist. A member that exists but is not
	// an object (null included) yields an ErrSettingsShape error.
	Section(ctx context.Context, key string) (map[string]any, bool, error)

	// Get returns a copy of the value held by key
	Get(ctx context.Context, key string) (any, bool, error)

	// Update replaces the member key with value. A nil value removes it.
	Update(ctx context.Context, key string, value any) error

	// Watch calls handler for every change to the settings until ctx ends.
	// It returns once watching has started.
	Watch(ctx context.Context, handler func(ChangeEvent)) error
}

// ChangeEvent describes a change to the settings document
type ChangeEvent struct {
	// Keys lists the top-level members whose value changed
	Keys []string
}

// Affects reports whether the change touched key, a member nested under
// key, or a member key is nested under
func (e ChangeEvent) Affects(key string) bool {
	for _, k := range e.Keys {
		if k == key || strings.HasPrefix(k, key+".") || strings.HasPrefix(key, k+".") {
			return true
		}
	}
	return false
}

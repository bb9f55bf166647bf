// Package targets resolves which configuration keys the overlay manages.
package targets

import (
	"sort"
	"strings"
)

// Defaults are the keys managed when none are configured
var Defaults = []string{
	"titleBar.activeBackground",
	"titleBar.inactiveBackground",
}

// Set holds the keys to manage this pass and every key ever managed
type Set struct {
	// Apply is ordered and free of duplicates
	Apply []string `json:"apply" yaml:"apply"`
	// Cleanup is Apply plus the defaults plus the previously persisted
	// apply-set, sorted
	Cleanup []string `json:"cleanup" yaml:"cleanup"`
}

// Normalize trims keys, drops empty ones and removes duplicates while
// keeping the first occurrence
func Normalize(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Resolve computes the target set from the configured keys and the apply-set
// persisted by the previous pass
func Resolve(configured, previous []string) Set {
	apply := Normalize(configured)
	if len(apply) == 0 {
		apply = append([]string(nil), Defaults...)
	}

	union := make(map[string]struct{})
	for _, group := range [][]string{apply, Defaults, Normalize(previous)} {
		for _, k := range group {
			union[k] = struct{}{}
		}
	}

	cleanup := make([]string, 0, len(union))
	for k := range union {
		cleanup = append(cleanup, k)
	}
	sort.Strings(cleanup)

	return Set{Apply: apply, Cleanup: cleanup}
}

// InApply reports whether key is in the apply-set
func (s Set) InApply(key string) bool {
	for _, k := range s.Apply {
		if k == key {
			return true
		}
	}
	return false
}

// CleanupOnly returns the cleanup keys that are not in the apply-set
func (s Set) CleanupOnly() []string {
	var out []string
	for _, k := range s.Cleanup {
		if !s.InApply(k) {
			out = append(out, k)
		}
	}
	return out
}

// All returns Apply followed by CleanupOnly
func (s Set) All() []string {
	return append(append([]string(nil), s.Apply...), s.CleanupOnly()...)
}

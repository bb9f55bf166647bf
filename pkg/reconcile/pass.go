package reconcile

import (
	"github.com/arthur-debert/branchtint/pkg/internal/jsonutil"
	"github.com/arthur-debert/branchtint/pkg/overlay"
	"github.com/arthur-debert/branchtint/pkg/rules"
	"github.com/arthur-debert/branchtint/pkg/targets"
)

// Action names what a pass did to one key
type Action string

const (
	ActionSet     Action = "set"
	ActionRestore Action = "restore"
	ActionRemove  Action = "remove"
)

// Change records one key modified in the host settings section
type Change struct {
	Key    string `json:"key" yaml:"key"`
	Action Action `json:"action" yaml:"action"`
	From   any    `json:"from,omitempty" yaml:"from,omitempty"`
	To     any    `json:"to,omitempty" yaml:"to,omitempty"`
}

// pass applies the reconciliation rules to a working copy of the section
// and to the overlay state. It performs no I/O.
type pass struct {
	snapshot map[string]any
	state    *overlay.Store
	rules    []rules.Rule
	changes  []Change
}

func (p *pass) set(key string, value any, action Action) {
	cur, ok := p.snapshot[key]
	if ok && jsonutil.Equal(cur, value) {
		return
	}
	p.snapshot[key] = jsonutil.Clone(value)
	p.changes = append(p.changes, Change{Key: key, Action: action, From: cur, To: value})
}

func (p *pass) remove(key string) {
	cur, ok := p.snapshot[key]
	if !ok {
		return
	}
	delete(p.snapshot, key)
	p.changes = append(p.changes, Change{Key: key, Action: ActionRemove, From: cur})
}

// restoreOriginal writes back the recorded original of key. It reports
// false when no original is recorded.
func (p *pass) restoreOriginal(key string) bool {
	o, ok := p.state.Original(key)
	if !ok {
		return false
	}
	v, present := o.Get()
	if !present {
		p.remove(key)
		return true
	}
	p.set(key, v, ActionRestore)
	return true
}

// looksAuthored reports whether the value of key is a string equal to a
// rule color, to one of extra, or to the key's applied value. This is the
// fallback used when no original is known.
func (p *pass) looksAuthored(key string, extra ...string) bool {
	s, ok := p.snapshot[key].(string)
	if !ok {
		return false
	}
	if rules.HasColor(p.rules, s) {
		return true
	}
	for _, e := range extra {
		if s == e {
			return true
		}
	}
	if applied, ok := p.state.Applied(key); ok && s == applied {
		return true
	}
	return false
}

// normal brings every apply key to color, or back to its original when no
// color is resolved, and removes stale overlay writes from cleanup keys
func (p *pass) normal(color string, hasColor bool, set targets.Set) {
	for _, key := range set.Apply {
		if hasColor {
			p.state.Remember(key, p.snapshot)
			p.set(key, color, ActionSet)
			p.state.SetApplied(key, color)
			continue
		}
		if !p.restoreOriginal(key) && p.looksAuthored(key) {
			p.remove(key)
		}
		p.state.ClearApplied(key)
	}

	var extra []string
	if hasColor {
		extra = []string{color}
	}
	for _, key := range set.CleanupOnly() {
		if p.looksAuthored(key, extra...) {
			p.remove(key)
		}
		p.state.ClearApplied(key)
	}
}

// sweep removes values that look tool-authored from every key in set and
// forgets all bookkeeping
func (p *pass) sweep(set targets.Set) {
	for _, key := range set.All() {
		if p.looksAuthored(key) {
			p.remove(key)
		}
	}
	p.state.DiscardAll()
}

// restore returns every tracked key to its original, or removes it when
// it still holds the applied value, then forgets all bookkeeping
func (p *pass) restore() {
	for _, key := range p.state.TrackedKeys() {
		if p.restoreOriginal(key) {
			continue
		}
		applied, ok := p.state.Applied(key)
		if !ok {
			continue
		}
		if s, isString := p.snapshot[key].(string); isString && s == applied {
			p.remove(key)
		}
	}
	p.state.DiscardAll()
}

package reconcile

import (
	"sync"
	"sync/atomic"
)

// Guard marks the periods during which the engine itself is writing host
// settings, so change notifications caused by those writes can be ignored.
// One Guard belongs to one session.
type Guard struct {
	active atomic.Int32
}

// NewGuard creates an inactive guard
func NewGuard() *Guard {
	return &Guard{}
}

// Suppress activates the guard until the returned release func is called.
// Release is idempotent; nested suppressions are counted.
func (g *Guard) Suppress() func() {
	g.active.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { g.active.Add(-1) })
	}
}

// Active reports whether a self-authored write is in progress
func (g *Guard) Active() bool {
	return g.active.Load() > 0
}

package overlay

import (
	"context"
	"reflect"
	"sort"

	"github.com/arthur-debert/branchtint/pkg/datastore"
	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/internal/hashutil"
)

// Keys names the datastore entries of one workspace
type Keys struct {
	Targets   string
	Originals string
	Applied   string
	Section   string
}

// KeysFor returns the datastore keys for a workspace directory
func KeysFor(workspace string) Keys {
	prefix := "ws/" + hashutil.ShortChecksum(workspace) + "/"
	return Keys{
		Targets:   prefix + "targets",
		Originals: prefix + "originals",
		Applied:   prefix + "applied",
		Section:   prefix + "section",
	}
}

// State is a copy of the overlay bookkeeping
type State struct {
	Originals map[string]Original `json:"originals"`
	Applied   map[string]string   `json:"applied"`

	// SectionExisted records whether the settings section existed before
	// the overlay first wrote to it. Nil when nothing is recorded.
	SectionExisted *bool `json:"section_existed,omitempty"`
}

// Empty reports whether nothing is recorded
func (s State) Empty() bool {
	return len(s.Originals) == 0 && len(s.Applied) == 0
}

// Store is the read-modify-write view of the overlay state for one pass.
// Mutations are tracked so Flush only writes what changed.
type Store struct {
	ds   datastore.DataStore
	keys Keys

	originals map[string]Original
	applied   map[string]string

	// section is nil until the section's prior presence is recorded
	section *bool

	originalsDirty bool
	appliedDirty   bool
	sectionDirty   bool
}

// Load reads the overlay state from ds
func Load(ctx context.Context, ds datastore.DataStore, keys Keys) (*Store, error) {
	s := &Store{
		ds:        ds,
		keys:      keys,
		originals: make(map[string]Original),
		applied:   make(map[string]string),
	}

	if _, err := ds.Get(ctx, keys.Originals, &s.originals); err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence, "failed to read remembered originals")
	}
	if _, err := ds.Get(ctx, keys.Applied, &s.applied); err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence, "failed to read applied colors")
	}
	var existed bool
	found, err := ds.Get(ctx, keys.Section, &existed)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence, "failed to read section presence")
	}
	if found {
		s.section = &existed
	}
	if s.originals == nil {
		s.originals = make(map[string]Original)
	}
	if s.applied == nil {
		s.applied = make(map[string]string)
	}
	return s, nil
}

// Remember records the current value of key in snapshot as its original,
// unless an original is already recorded. It reports whether an entry was
// added.
func (s *Store) Remember(key string, snapshot map[string]any) bool {
	if _, ok := s.originals[key]; ok {
		return false
	}
	if v, ok := snapshot[key]; ok {
		s.originals[key] = Present(v)
	} else {
		s.originals[key] = Absent()
	}
	s.originalsDirty = true
	return true
}

// Original returns the recorded original for key
func (s *Store) Original(key string) (Original, bool) {
	o, ok := s.originals[key]
	return o, ok
}

// Applied returns the value the overlay last wrote for key
func (s *Store) Applied(key string) (string, bool) {
	v, ok := s.applied[key]
	return v, ok
}

// SetApplied records value as the overlay's write for key
func (s *Store) SetApplied(key, value string) {
	if cur, ok := s.applied[key]; ok && cur == value {
		return
	}
	s.applied[key] = value
	s.appliedDirty = true
}

// ClearApplied forgets the overlay's write for key
func (s *Store) ClearApplied(key string) {
	if _, ok := s.applied[key]; !ok {
		return
	}
	delete(s.applied, key)
	s.appliedDirty = true
}

// SectionExisted returns the recorded presence of the section before the
// overlay touched it
func (s *Store) SectionExisted() (existed, recorded bool) {
	if s.section == nil {
		return false, false
	}
	return *s.section, true
}

// RememberSection records whether the section existed, unless already
// recorded
func (s *Store) RememberSection(existed bool) {
	if s.section != nil {
		return
	}
	s.section = &existed
	s.sectionDirty = true
}

// ForgetSection drops the recorded section presence
func (s *Store) ForgetSection() {
	if s.section == nil {
		return
	}
	s.section = nil
	s.sectionDirty = true
}

// DiscardAll drops every original and applied entry. The section record is
// kept; callers forget it once the overlay is gone.
func (s *Store) DiscardAll() {
	if len(s.originals) > 0 {
		s.originals = make(map[string]Original)
		s.originalsDirty = true
	}
	if len(s.applied) > 0 {
		s.applied = make(map[string]string)
		s.appliedDirty = true
	}
}

// Empty reports whether no originals and no applied values are recorded
func (s *Store) Empty() bool {
	return len(s.originals) == 0 && len(s.applied) == 0
}

// Dirty reports whether Flush would write anything
func (s *Store) Dirty() bool {
	return s.originalsDirty || s.appliedDirty || s.sectionDirty
}

// TrackedKeys returns the union of original and applied keys, sorted
func (s *Store) TrackedKeys() []string {
	set := make(map[string]struct{}, len(s.originals)+len(s.applied))
	for k := range s.originals {
		set[k] = struct{}{}
	}
	for k := range s.applied {
		set[k] = struct{}{}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// State returns a copy of the current bookkeeping
func (s *Store) State() State {
	st := State{
		Originals: make(map[string]Original, len(s.originals)),
		Applied:   make(map[string]string, len(s.applied)),
	}
	for k, v := range s.originals {
		st.Originals[k] = v
	}
	for k, v := range s.applied {
		st.Applied[k] = v
	}
	if s.section != nil {
		existed := *s.section
		st.SectionExisted = &existed
	}
	return st
}

// Flush persists the maps that changed since Load. Empty maps are deleted
// rather than stored.
func (s *Store) Flush(ctx context.Context) error {
	if s.originalsDirty {
		if err := s.write(ctx, s.keys.Originals, len(s.originals) == 0, s.originals); err != nil {
			return errors.Wrap(err, errors.ErrPersistence, "failed to persist remembered originals")
		}
		s.originalsDirty = false
	}
	if s.appliedDirty {
		if err := s.write(ctx, s.keys.Applied, len(s.applied) == 0, s.applied); err != nil {
			return errors.Wrap(err, errors.ErrPersistence, "failed to persist applied colors")
		}
		s.appliedDirty = false
	}
	if s.sectionDirty {
		var existed bool
		if s.section != nil {
			existed = *s.section
		}
		if err := s.write(ctx, s.keys.Section, s.section == nil, existed); err != nil {
			return errors.Wrap(err, errors.ErrPersistence, "failed to persist section presence")
		}
		s.sectionDirty = false
	}
	return nil
}

func (s *Store) write(ctx context.Context, key string, empty bool, value any) error {
	if empty {
		return s.ds.Delete(ctx, key)
	}
	return s.ds.Put(ctx, key, value)
}

// LoadTargets reads the apply-set persisted by the previous normal pass
func LoadTargets(ctx context.Context, ds datastore.DataStore, keys Keys) ([]string, error) {
	var list []string
	if _, err := ds.Get(ctx, keys.Targets, &list); err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence, "failed to read last applied target keys")
	}
	return list, nil
}

// SaveTargets persists apply if it differs from previous. It reports whether
// a write happened.
func SaveTargets(ctx context.Context, ds datastore.DataStore, keys Keys, previous, apply []string) (bool, error) {
	if reflect.DeepEqual(previous, apply) || (len(previous) == 0 && len(apply) == 0) {
		return false, nil
	}
	if err := ds.Put(ctx, keys.Targets, apply); err != nil {
		return false, errors.Wrap(err, errors.ErrPersistence, "failed to persist applied target keys")
	}
	return true, nil
}

// Package reconcile applies, re-anchors and removes the branch color overlay
// on the host settings section.
//
// Every pass reads the section and the overlay state fresh, computes the
// new section and state on copies, persists the state, and only then writes
// the section back. A pass that changes nothing writes nothing.
package reconcile

import (
	"context"

	"github.com/arthur-debert/branchtint/pkg/datastore"
	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/arthur-debert/branchtint/pkg/overlay"
	"github.com/arthur-debert/branchtint/pkg/rules"
	"github.com/arthur-debert/branchtint/pkg/settings"
	"github.com/arthur-debert/branchtint/pkg/targets"
	"github.com/rs/zerolog"
)

// Kind identifies the pass that produced a Result
type Kind string

const (
	KindUpdate  Kind = "update"
	KindRebase  Kind = "rebase"
	KindRestore Kind = "restore"
)

// Request carries the inputs of a pass
type Request struct {
	// Color is the color of the matching rule. HasColor is false when no
	// rule matches.
	Color    string
	HasColor bool

	// Rules are the configured rules, already filtered
	Rules []rules.Rule

	// TargetKeys are the configured keys, unnormalized
	TargetKeys []string
}

// Result describes what a pass did
type Result struct {
	Kind    Kind        `json:"kind" yaml:"kind"`
	Targets targets.Set `json:"targets" yaml:"targets"`
	Changes []Change    `json:"changes" yaml:"changes"`

	// Written is true when the host section was written
	Written bool `json:"written" yaml:"written"`
	// StateWritten is true when the overlay state was persisted
	StateWritten bool `json:"state_written" yaml:"state_written"`
	// Skipped is true when the pass had nothing to do
	Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	DryRun  bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

// Changed reports whether the pass modified the host section
func (r Result) Changed() bool {
	return len(r.Changes) > 0
}

// Options configures a Reconciler
type Options struct {
	// Section is the host settings member holding the colors. Defaults to
	// settings.ColorCustomizations.
	Section string

	// Guard is held during host writes. A private guard is created when nil.
	Guard *Guard

	// DryRun computes passes without writing either store
	DryRun bool
}

// Reconciler runs passes for one workspace
type Reconciler struct {
	host    settings.Store
	ds      datastore.DataStore
	keys    overlay.Keys
	section string
	guard   *Guard
	dryRun  bool
	logger  zerolog.Logger
}

// New creates a Reconciler writing to host and keeping its state in ds
// under keys
func New(host settings.Store, ds datastore.DataStore, keys overlay.Keys, opts Options) *Reconciler {
	if opts.Section == "" {
		opts.Section = settings.ColorCustomizations
	}
	if opts.Guard == nil {
		opts.Guard = NewGuard()
	}
	return &Reconciler{
		host:    host,
		ds:      ds,
		keys:    keys,
		section: opts.Section,
		guard:   opts.Guard,
		dryRun:  opts.DryRun,
		logger:  logging.GetLogger("reconcile"),
	}
}

// Guard returns the guard held during host writes
func (r *Reconciler) Guard() *Guard {
	return r.guard
}

// Section returns the host settings member the overlay is applied to
func (r *Reconciler) Section() string {
	return r.section
}

// Update runs a normal pass: apply keys take the request color, or return
// to their originals when there is none, and stale overlay values are
// removed from keys no longer managed.
func (r *Reconciler) Update(ctx context.Context, req Request) (Result, error) {
	return r.run(ctx, KindUpdate, req, func(p *pass, set targets.Set) bool {
		p.normal(req.Color, req.HasColor, set)
		return true
	})
}

// Rebase re-anchors the overlay after the section was changed by someone
// else. Values that look tool-authored are removed, all bookkeeping is
// dropped, and a normal pass records the new baseline. Nothing happens
// when no overlay state exists.
func (r *Reconciler) Rebase(ctx context.Context, req Request) (Result, error) {
	return r.run(ctx, KindRebase, req, func(p *pass, set targets.Set) bool {
		if p.state.Empty() {
			return false
		}
		p.sweep(set)
		p.normal(req.Color, req.HasColor, set)
		return true
	})
}

// Restore removes the overlay, returning every managed key to the value it
// had before the overlay first touched it, and clears all bookkeeping
func (r *Reconciler) Restore(ctx context.Context, req Request) (Result, error) {
	return r.run(ctx, KindRestore, req, func(p *pass, set targets.Set) bool {
		if p.state.Empty() {
			if len(req.Rules) == 0 {
				return false
			}
			p.sweep(set)
			return true
		}
		p.restore()
		return true
	})
}

// State returns the persisted overlay state and the apply-set of the last
// normal pass
func (r *Reconciler) State(ctx context.Context) (overlay.State, []string, error) {
	store, err := overlay.Load(ctx, r.ds, r.keys)
	if err != nil {
		return overlay.State{}, nil, err
	}
	previous, err := overlay.LoadTargets(ctx, r.ds, r.keys)
	if err != nil {
		return overlay.State{}, nil, err
	}
	return store.State(), previous, nil
}

func (r *Reconciler) run(ctx context.Context, kind Kind, req Request, plan func(*pass, targets.Set) bool) (Result, error) {
	logger := r.logger.With().Str("pass", string(kind)).Logger()
	done := logging.LogOperationStart(logger, string(kind))
	defer done()

	section, present, err := r.host.Section(ctx, r.section)
	if errors.IsErrorCode(err, errors.ErrSettingsShape) {
		// Not ours to overwrite; the pass runs again once the user fixes it.
		logger.Warn().Err(err).Msg("Settings section is not an object, leaving it alone")
		return Result{Kind: kind, Skipped: true}, nil
	}
	if err != nil {
		return Result{Kind: kind}, err
	}
	if section == nil {
		section = map[string]any{}
	}

	state, err := overlay.Load(ctx, r.ds, r.keys)
	if err != nil {
		return Result{Kind: kind}, err
	}
	previous, err := overlay.LoadTargets(ctx, r.ds, r.keys)
	if err != nil {
		return Result{Kind: kind}, err
	}

	set := targets.Resolve(req.TargetKeys, previous)
	p := &pass{snapshot: section, state: state, rules: req.Rules}
	result := Result{Kind: kind, Targets: set, DryRun: r.dryRun}

	if !plan(p, set) {
		logger.Debug().Msg("Nothing to do")
		result.Skipped = true
		return result, nil
	}
	result.Changes = p.changes

	existed := present
	if recorded, ok := state.SectionExisted(); ok {
		existed = recorded
	}
	if state.Empty() {
		state.ForgetSection()
	} else {
		state.RememberSection(existed)
	}

	if r.dryRun {
		logger.Info().Int("changes", len(p.changes)).Msg("Dry run, nothing written")
		return result, nil
	}

	// State goes first: if it cannot be saved the section is left alone, so
	// no original is ever overwritten without being recorded.
	if state.Dirty() {
		if err := state.Flush(ctx); err != nil {
			return result, err
		}
		result.StateWritten = true
	}
	if kind != KindRestore {
		wrote, err := overlay.SaveTargets(ctx, r.ds, r.keys, previous, set.Apply)
		if err != nil {
			return result, err
		}
		result.StateWritten = result.StateWritten || wrote
	}

	if !result.Changed() {
		logger.Debug().Msg("Section unchanged")
		return result, nil
	}

	// An emptied section goes back to how it was found: removed when the
	// overlay created it, kept as {} when the user had it.
	var value any = p.snapshot
	if len(p.snapshot) == 0 && !existed {
		value = nil
	}
	if err := r.write(ctx, value); err != nil {
		return result, err
	}
	result.Written = true

	logger.Info().
		Int("changes", len(p.changes)).
		Bool("sectionPresent", present).
		Msg("Settings section updated")
	return result, nil
}

func (r *Reconciler) write(ctx context.Context, value any) error {
	release := r.guard.Suppress()
	defer release()
	return r.host.Update(ctx, r.section, value)
}

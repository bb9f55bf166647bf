// Package dispatcher turns branch, configuration and host-settings events
// into reconciliation passes for one workspace.
package dispatcher

import (
	"context"
	"sort"
	"sync"

	"github.com/arthur-debert/branchtint/pkg/config"
	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/arthur-debert/branchtint/pkg/reconcile"
	"github.com/arthur-debert/branchtint/pkg/rules"
	"github.com/arthur-debert/branchtint/pkg/settings"
	"github.com/rs/zerolog"
)

// BranchSource reports the checked-out branch
type BranchSource interface {
	CurrentBranch() (string, bool)
}

// ConfigSource loads the current configuration. It is called before every
// pass so edits take effect without a restart.
type ConfigSource interface {
	Load() (*config.Config, error)
}

// Triggers are the event sources of Run. A nil channel never fires.
type Triggers struct {
	// Branch fires when the checked-out branch may have changed
	Branch <-chan struct{}
	// Config fires when rules or target keys may have changed
	Config <-chan struct{}
}

// Match is the outcome of rule matching for the current branch
type Match struct {
	Branch    string             `json:"branch" yaml:"branch"`
	HasBranch bool               `json:"has_branch" yaml:"has_branch"`
	Rule      *rules.Rule        `json:"rule,omitempty" yaml:"rule,omitempty"`
	Skipped   []rules.Diagnostic `json:"-" yaml:"-"`
	Request   reconcile.Request  `json:"-" yaml:"-"`
	Config    *config.Config     `json:"-" yaml:"-"`
}

// Session owns the reconciliation of one workspace. Passes started through
// Run never overlap; the one-shot methods are for callers that run a single
// pass.
type Session struct {
	rec      *reconcile.Reconciler
	host     settings.Store
	branch   BranchSource
	cfg      ConfigSource
	matcher  *rules.Matcher
	themeKey string
	logger   zerolog.Logger

	mu          sync.Mutex
	pendingKeys map[string]struct{}
	hostSignal  chan struct{}
}

// Options configures a Session
type Options struct {
	// ThemeKey is the settings member whose change triggers a rebase along
	// with the reconciled section. Defaults to settings.ColorTheme.
	ThemeKey string
}

// NewSession creates a session
func NewSession(rec *reconcile.Reconciler, host settings.Store, branch BranchSource, cfg ConfigSource, opts Options) *Session {
	if opts.ThemeKey == "" {
		opts.ThemeKey = settings.ColorTheme
	}
	return &Session{
		rec:         rec,
		host:        host,
		branch:      branch,
		cfg:         cfg,
		matcher:     rules.NewMatcher(),
		themeKey:    opts.ThemeKey,
		logger:      logging.GetLogger("dispatcher"),
		pendingKeys: make(map[string]struct{}),
		hostSignal:  make(chan struct{}, 1),
	}
}

// Resolve loads the configuration and matches the current branch
func (s *Session) Resolve() (Match, error) {
	cfg, err := s.cfg.Load()
	if err != nil {
		return Match{}, err
	}
	branch, ok := s.branch.CurrentBranch()
	rule, matched, diags := s.matcher.Match(branch, ok, cfg.Rules)

	m := Match{
		Branch:    branch,
		HasBranch: ok,
		Skipped:   diags,
		Config:    cfg,
		Request: reconcile.Request{
			Rules:      cfg.Rules,
			TargetKeys: cfg.TargetKeys,
		},
	}
	if matched {
		m.Rule = &rule
		m.Request.Color = rule.Color
		m.Request.HasColor = true
	}
	return m, nil
}

// Update runs a normal pass for the current branch
func (s *Session) Update(ctx context.Context) (reconcile.Result, error) {
	m, err := s.Resolve()
	if err != nil {
		return reconcile.Result{Kind: reconcile.KindUpdate}, err
	}
	return s.rec.Update(ctx, m.Request)
}

// Rebase re-anchors the overlay after an external settings change
func (s *Session) Rebase(ctx context.Context) (reconcile.Result, error) {
	m, err := s.Resolve()
	if err != nil {
		return reconcile.Result{Kind: reconcile.KindRebase}, err
	}
	return s.rec.Rebase(ctx, m.Request)
}

// Restore removes the overlay. A configuration that cannot be loaded does
// not prevent restoring recorded originals.
func (s *Session) Restore(ctx context.Context) (reconcile.Result, error) {
	m, err := s.Resolve()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Configuration unavailable, restoring from recorded state only")
	}
	return s.rec.Restore(ctx, m.Request)
}

// HandleHostChange rebases when ev touched the reconciled section or the
// theme. The boolean reports whether a pass ran.
func (s *Session) HandleHostChange(ctx context.Context, ev settings.ChangeEvent) (reconcile.Result, bool, error) {
	if !ev.Affects(s.rec.Section()) && !ev.Affects(s.themeKey) {
		s.logger.Trace().Strs("keys", ev.Keys).Msg("Settings change not relevant")
		return reconcile.Result{}, false, nil
	}
	res, err := s.Rebase(ctx)
	return res, true, err
}

// onHostChange runs on the settings store's notification path. Changes
// seen while our own write is in flight are dropped here; the rest are
// merged and handed to the Run loop.
func (s *Session) onHostChange(ev settings.ChangeEvent) {
	if s.rec.Guard().Active() {
		s.logger.Trace().Strs("keys", ev.Keys).Msg("Ignoring self-authored settings change")
		return
	}

	s.mu.Lock()
	for _, k := range ev.Keys {
		s.pendingKeys[k] = struct{}{}
	}
	s.mu.Unlock()

	select {
	case s.hostSignal <- struct{}{}:
	default:
	}
}

func (s *Session) takePending() settings.ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.pendingKeys))
	for k := range s.pendingKeys {
		keys = append(keys, k)
	}
	clear(s.pendingKeys)
	sort.Strings(keys)
	return settings.ChangeEvent{Keys: keys}
}

// Run applies the overlay, keeps it current until ctx ends, then restores
// the settings. The final restore runs to completion even though ctx is
// done. Pass failures are logged and do not stop the loop.
func (s *Session) Run(ctx context.Context, t Triggers) error {
	if err := s.host.Watch(ctx, s.onHostChange); err != nil {
		return errors.Wrap(err, errors.ErrSettingsRead, "failed to watch host settings")
	}

	s.report(s.Update(ctx))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Shutting down, restoring settings")
			s.report(s.Restore(context.WithoutCancel(ctx)))
			return nil

		case <-t.Branch:
			s.report(s.Update(ctx))

		case <-t.Config:
			s.logger.Info().Msg("Configuration changed")
			s.report(s.Update(ctx))

		case <-s.hostSignal:
			res, ran, err := s.HandleHostChange(ctx, s.takePending())
			if ran {
				s.report(res, err)
			}
		}
	}
}

func (s *Session) report(res reconcile.Result, err error) {
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("pass", string(res.Kind)).
			Str("code", string(errors.GetErrorCode(err))).
			Msg("Reconciliation pass failed")
		return
	}
	if res.Skipped {
		return
	}
	s.logger.Info().
		Str("pass", string(res.Kind)).
		Int("changes", len(res.Changes)).
		Bool("written", res.Written).
		Msg("Reconciliation pass completed")
}

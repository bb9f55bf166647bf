// Package internal assembles the components shared by the command
// implementations.
package internal

import (
	"context"
	"os"

	"github.com/arthur-debert/branchtint/pkg/config"
	"github.com/arthur-debert/branchtint/pkg/datastore"
	"github.com/arthur-debert/branchtint/pkg/dispatcher"
	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/arthur-debert/branchtint/pkg/overlay"
	"github.com/arthur-debert/branchtint/pkg/paths"
	"github.com/arthur-debert/branchtint/pkg/reconcile"
	"github.com/arthur-debert/branchtint/pkg/settings"
	"github.com/arthur-debert/branchtint/pkg/vcs"
)

// Options are shared by every workspace command
type Options struct {
	// Workspace is the workspace directory; empty selects the current one
	Workspace string

	// SettingsFile overrides workspace.settings_file
	SettingsFile string

	// DryRun computes passes without writing
	DryRun bool

	// RequireRepository fails when no git repository is found. Commands
	// that only undo recorded state can run without one.
	RequireRepository bool

	// ReadOnly opens the state database without the writer lock, for
	// commands that only report. See Workspace.StateErr.
	ReadOnly bool

	// Store replaces the on-disk state database. Used by tests.
	Store datastore.DataStore
}

// Workspace holds the wired components for one workspace
type Workspace struct {
	Paths      paths.Paths
	Loader     *config.Loader
	Config     *config.Config
	Repo       *vcs.Repository
	Host       *settings.FileStore
	Store      datastore.DataStore
	Reconciler *reconcile.Reconciler
	Session    *dispatcher.Session

	// StateErr is set when a read-only open could not reach the state
	// database, usually because a watcher holds it. Store is then empty.
	StateErr error

	ownsStore bool
}

// noBranch is the branch source used when no repository was found
type noBranch struct{}

func (noBranch) CurrentBranch() (string, bool) { return "", false }

// Open discovers the repository, loads configuration and opens the state
// store. The caller must Close the workspace.
func Open(ctx context.Context, opts Options) (*Workspace, error) {
	logger := logging.GetLogger("commands.workspace")

	p, err := paths.New(opts.Workspace)
	if err != nil {
		return nil, err
	}

	loader := config.NewLoader(p)
	if opts.SettingsFile != "" {
		loader.WithOverrides(map[string]interface{}{"workspace.settings_file": opts.SettingsFile})
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	w := &Workspace{Paths: p, Loader: loader, Config: cfg}

	var branch dispatcher.BranchSource = noBranch{}
	repo, err := vcs.Discover(ctx, p.WorkspaceRoot())
	switch {
	case err == nil:
		w.Repo = repo
		branch = repo
	case opts.RequireRepository:
		return nil, err
	default:
		logger.Warn().Err(err).Msg("Continuing without a repository")
	}

	w.Host = settings.NewFileStore(p.SettingsFile(cfg.Workspace.SettingsFile), cfg.Watch.Debounce)

	switch {
	case opts.Store != nil:
		w.Store = opts.Store
	case opts.ReadOnly:
		store, unavailable, err := openReadOnly(p.DatabaseDir())
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrPersistence, "failed to open state database")
		}
		if unavailable != nil {
			logger.Debug().Err(unavailable).Msg("State database unavailable, reporting without it")
			w.StateErr = errors.Wrap(unavailable, errors.ErrPersistence,
				"state database is in use (is 'branchtint watch' running?)").
				WithDetail("path", p.DatabaseDir())
		}
		w.Store = store
		w.ownsStore = true
	default:
		store, err := datastore.Open(datastore.DefaultConfig(p.DatabaseDir()))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrPersistence,
				"failed to open state database (is 'branchtint watch' running?)").
				WithDetail("path", p.DatabaseDir())
		}
		w.Store = store
		w.ownsStore = true
	}

	w.Reconciler = reconcile.New(w.Host, w.Store, overlay.KeysFor(p.WorkspaceRoot()), reconcile.Options{
		Section: cfg.Workspace.Section,
		DryRun:  opts.DryRun,
	})
	w.Session = dispatcher.NewSession(w.Reconciler, w.Host, branch, loader, dispatcher.Options{
		ThemeKey: cfg.Workspace.ThemeKey,
	})

	logger.Debug().
		Str("workspace", p.WorkspaceRoot()).
		Str("settings", w.Host.Path()).
		Bool("repository", w.Repo != nil).
		Msg("Workspace opened")
	return w, nil
}

// openReadOnly opens the state database for reading. A database that does
// not exist yet reads as empty. When an existing one cannot be opened, an
// empty in-memory store stands in and unavailable carries the reason.
func openReadOnly(dir string) (store datastore.DataStore, unavailable error, err error) {
	if _, statErr := os.Stat(dir); statErr == nil {
		store, unavailable = datastore.Open(datastore.Config{Path: dir, ReadOnly: true})
		if unavailable == nil {
			return store, nil, nil
		}
	}
	store, err = datastore.Open(datastore.InMemoryConfig())
	return store, unavailable, err
}

// Close releases the state store
func (w *Workspace) Close() error {
	if w.ownsStore && w.Store != nil {
		return w.Store.Close()
	}
	return nil
}

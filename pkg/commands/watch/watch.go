package watch

import (
	"context"
	stderrors "errors"
	"os"

	"github.com/arthur-debert/branchtint/pkg/commands/internal"
	"github.com/arthur-debert/branchtint/pkg/datastore"
	"github.com/arthur-debert/branchtint/pkg/dispatcher"
	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/filewatch"
	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/arthur-debert/branchtint/pkg/vcs"
	"golang.org/x/sync/errgroup"
)

// WatchOptions holds options for the watch command
type WatchOptions struct {
	Workspace    string
	SettingsFile string
	DryRun       bool

	// Store replaces the on-disk state database
	Store datastore.DataStore
}

// Watch applies the overlay and keeps it in step with the checked-out
// branch, the configuration files and the host settings until ctx ends.
// The settings are restored before Watch returns.
func Watch(ctx context.Context, opts WatchOptions) error {
	logger := logging.GetLogger("commands.watch")

	w, err := internal.Open(ctx, internal.Options{
		Workspace:         opts.Workspace,
		SettingsFile:      opts.SettingsFile,
		DryRun:            opts.DryRun,
		RequireRepository: true,
		Store:             opts.Store,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close state store")
		}
	}()

	debounce := w.Config.Watch.Debounce

	head, err := vcs.NewHeadWatcher(w.Repo, debounce)
	if err != nil {
		return err
	}

	// Neither configuration directory has to exist
	cfgWatch, err := filewatch.New(w.Loader.Sources().Files(), filewatch.Options{
		Debounce: debounce,
		Name:     "config-watch",
	})
	switch {
	case err == nil:
	case stderrors.Is(err, os.ErrNotExist):
		logger.Debug().Msg("No configuration directory to watch")
		cfgWatch = nil
	default:
		return errors.Wrap(err, errors.ErrInternal, "failed to watch configuration files")
	}

	g, gctx := errgroup.WithContext(ctx)

	triggers := dispatcher.Triggers{Branch: head.Changes()}
	g.Go(func() error { return head.Run(gctx) })

	if cfgWatch != nil {
		cfgChanged := make(chan struct{}, 1)
		triggers.Config = cfgChanged
		g.Go(func() error { return cfgWatch.Run(gctx) })
		g.Go(func() error {
			for change := range cfgWatch.Changes() {
				logger.Debug().Strs("paths", change.Paths).Msg("Configuration files touched")
				select {
				case cfgChanged <- struct{}{}:
				default:
				}
			}
			return nil
		})
	}

	g.Go(func() error { return w.Session.Run(gctx, triggers) })

	logger.Info().
		Str("workspace", w.Paths.WorkspaceRoot()).
		Str("settings", w.Host.Path()).
		Msg("Watching")

	return g.Wait()
}

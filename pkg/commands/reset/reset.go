package reset

import (
	"context"

	"github.com/arthur-debert/branchtint/pkg/commands/internal"
	"github.com/arthur-debert/branchtint/pkg/datastore"
	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/arthur-debert/branchtint/pkg/reconcile"
)

// ResetOptions holds options for the reset command
type ResetOptions struct {
	Workspace    string
	SettingsFile string
	DryRun       bool

	// Store replaces the on-disk state database
	Store datastore.DataStore
}

// ResetResult reports a full restore
type ResetResult struct {
	SettingsFile string           `json:"settings_file" yaml:"settings_file"`
	Pass         reconcile.Result `json:"pass" yaml:"pass"`
}

// Reset removes the overlay and returns managed keys to their recorded
// originals. It works without a repository so a deleted or broken checkout
// can still be cleaned up.
func Reset(ctx context.Context, opts ResetOptions) (*ResetResult, error) {
	logger := logging.GetLogger("commands.reset")

	w, err := internal.Open(ctx, internal.Options{
		Workspace:    opts.Workspace,
		SettingsFile: opts.SettingsFile,
		DryRun:       opts.DryRun,
		Store:        opts.Store,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close state store")
		}
	}()

	pass, err := w.Session.Restore(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info().Int("changes", len(pass.Changes)).Bool("dryRun", opts.DryRun).Msg("Reset completed")
	return &ResetResult{SettingsFile: w.Host.Path(), Pass: pass}, nil
}

package apply

import (
	"context"

	"github.com/arthur-debert/branchtint/pkg/commands/internal"
	"github.com/arthur-debert/branchtint/pkg/datastore"
	"github.com/arthur-debert/branchtint/pkg/dispatcher"
	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/arthur-debert/branchtint/pkg/reconcile"
)

// ApplyOptions holds options for the apply command
type ApplyOptions struct {
	Workspace    string
	SettingsFile string
	DryRun       bool

	// Store replaces the on-disk state database
	Store datastore.DataStore
}

// ApplyResult reports a single normal pass
type ApplyResult struct {
	SettingsFile string           `json:"settings_file" yaml:"settings_file"`
	Match        dispatcher.Match `json:"match" yaml:"match"`
	Pass         reconcile.Result `json:"pass" yaml:"pass"`
}

// Apply runs one normal pass for the checked-out branch
func Apply(ctx context.Context, opts ApplyOptions) (*ApplyResult, error) {
	logger := logging.GetLogger("commands.apply")

	w, err := internal.Open(ctx, internal.Options{
		Workspace:         opts.Workspace,
		SettingsFile:      opts.SettingsFile,
		DryRun:            opts.DryRun,
		RequireRepository: true,
		Store:             opts.Store,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close state store")
		}
	}()

	match, err := w.Session.Resolve()
	if err != nil {
		return nil, err
	}
	pass, err := w.Reconciler.Update(ctx, match.Request)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("branch", match.Branch).
		Int("changes", len(pass.Changes)).
		Bool("dryRun", opts.DryRun).
		Msg("Apply completed")
	return &ApplyResult{SettingsFile: w.Host.Path(), Match: match, Pass: pass}, nil
}

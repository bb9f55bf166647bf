// Package commands provides the command implementations behind the CLI.
//
// Each command is implemented in its own subdirectory:
//   - watch/     - Watch, the long-running overlay session
//   - apply/     - Apply, a single normal pass
//   - reset/     - Reset, a full restore of recorded values
//   - status/    - Status, a read-only report
//   - genconfig/ - GenConfig, a starter configuration
//   - internal/  - Workspace wiring shared by the commands
//
// This file re-exports the command functions so the CLI depends on a
// single package.
package commands

import (
	"context"

	"github.com/arthur-debert/branchtint/pkg/commands/apply"
	"github.com/arthur-debert/branchtint/pkg/commands/genconfig"
	"github.com/arthur-debert/branchtint/pkg/commands/reset"
	"github.com/arthur-debert/branchtint/pkg/commands/status"
	"github.com/arthur-debert/branchtint/pkg/commands/watch"
)

// Watch keeps the overlay current until ctx ends, then restores.
type WatchOptions = watch.WatchOptions

func Watch(ctx context.Context, opts WatchOptions) error {
	return watch.Watch(ctx, opts)
}

// Apply runs one normal pass for the checked-out branch.
type ApplyOptions = apply.ApplyOptions
type ApplyResult = apply.ApplyResult

func Apply(ctx context.Context, opts ApplyOptions) (*ApplyResult, error) {
	return apply.Apply(ctx, opts)
}

// Reset restores every recorded original and clears the overlay state.
type ResetOptions = reset.ResetOptions
type ResetResult = reset.ResetResult

func Reset(ctx context.Context, opts ResetOptions) (*ResetResult, error) {
	return reset.Reset(ctx, opts)
}

// Status reports the overlay state of a workspace.
type StatusOptions = status.StatusOptions
type StatusResult = status.StatusResult
type KeyStatus = status.KeyStatus
type OriginalView = status.OriginalView

func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	return status.Status(ctx, opts)
}

// GenConfig renders, and optionally writes, a starter configuration.
type GenConfigOptions = genconfig.GenConfigOptions
type GenConfigResult = genconfig.GenConfigResult

func GenConfig(opts GenConfigOptions) (*GenConfigResult, error) {
	return genconfig.GenConfig(opts)
}

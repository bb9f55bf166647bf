package branchtint

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Color your editor by git branch"
	MsgWatchShort      = "Apply the overlay and follow branch switches"
	MsgApplyShort      = "Run one pass for the checked-out branch"
	MsgResetShort      = "Remove the overlay and restore original values"
	MsgStatusShort     = "Show the overlay state of the workspace"
	MsgGenConfigShort  = "Print or write a starter configuration"
	MsgCompletionShort = "Generate shell completion script"
	MsgVersionShort    = "Print version information"

	// Result messages
	MsgDryRunNotice      = "\nDRY RUN MODE - No changes were made"
	MsgNothingToDo       = "Nothing to do."
	MsgUpToDate          = "Settings already up to date."
	MsgChangesFormat     = "%d change(s) to %s:\n"
	MsgConfigWritten     = "Wrote %s"
	MsgConfigExists      = "%s already exists, not overwriting\n"
	MsgWatchingTemplate  = "[info]Watching[/info] [path]{{workspace}}[/path] (Ctrl-C to stop and restore)"
	MsgVersionFormat     = "branchtint version %s\n  commit: %s\n  built:  %s\n"
	MsgResetDone         = "Overlay removed, original values restored."
	MsgNoRepository      = "(none)"
	MsgDetached          = "(no branch)"
	MsgNoRule            = "(no matching rule)"
	MsgOverlayActive     = "active"
	MsgOverlayInactive   = "inactive"
	MsgOverlayUnknown    = "unknown (state in use, is 'branchtint watch' running?)"
	MsgSectionInvalid    = "settings section is not an object; the overlay leaves it alone"
	MsgOriginalMissing   = "unset"
	MsgCleanupOnly       = "cleanup only"
	MsgSkippedRuleFormat = "rule %d (%s) skipped: %v"

	// Error messages
	MsgErrOutputFormat = "unknown output format %q (want text, json or yaml)"
	MsgErrWatch        = "watch failed: %w"
	MsgErrApply        = "apply failed: %w"
	MsgErrReset        = "reset failed: %w"
	MsgErrStatus       = "failed to get status: %w"
	MsgErrGenConfig    = "failed to generate config: %w"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun       = "Compute changes without writing settings or state"
	MsgFlagWorkspace    = "Workspace directory (default: current directory)"
	MsgFlagSettingsFile = "Settings file, relative to the workspace (default: .vscode/settings.json)"
	MsgFlagOutput       = "Output format: text, json or yaml"
	MsgFlagWrite        = "Write .branchtint.toml in the workspace"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/watch-example.txt
	msgWatchExampleRaw string
	MsgWatchExample    = strings.TrimRight(msgWatchExampleRaw, "\n")

	//go:embed msgs/apply-long.txt
	msgApplyLongRaw string
	MsgApplyLong    = strings.TrimSpace(msgApplyLongRaw)

	//go:embed msgs/reset-long.txt
	msgResetLongRaw string
	MsgResetLong    = strings.TrimSpace(msgResetLongRaw)

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/status-example.txt
	msgStatusExampleRaw string
	MsgStatusExample    = strings.TrimRight(msgStatusExampleRaw, "\n")

	//go:embed msgs/genconfig-long.txt
	msgGenConfigLongRaw string
	MsgGenConfigLong    = strings.TrimSpace(msgGenConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)

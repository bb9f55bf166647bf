package branchtint

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/arthur-debert/branchtint/internal/version"
	"github.com/arthur-debert/branchtint/pkg/cobrax/topics"
	"github.com/arthur-debert/branchtint/pkg/commands"
	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/arthur-debert/branchtint/pkg/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicFiles embed.FS

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity    int
	workspace    string
	settingsFile string
	dryRun       bool
	output       string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "branchtint",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return validateOutput(opts.output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVarP(&opts.workspace, "workspace", "w", "", MsgFlagWorkspace)
	flags.StringVar(&opts.settingsFile, "settings-file", "", MsgFlagSettingsFile)
	flags.BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	flags.StringVarP(&opts.output, "output", "o", OutputText, MsgFlagOutput)
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{OutputText, OutputJSON, OutputYAML}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.MarkPersistentFlagDirname("workspace")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newApplyCmd(opts))
	rootCmd.AddCommand(newResetCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newGenConfigCmd(opts))
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Help topics are embedded, so this only fails on a broken build
	if sub, err := fs.Sub(topicFiles, "topics"); err == nil {
		tm, err := topics.New(sub, topics.Options{Renderer: topics.Markdown("", 0)})
		if err != nil {
			log.Warn().Err(err).Msg("Help topics unavailable")
		} else {
			tm.Install(rootCmd)
		}
	}

	return rootCmd
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		Example: MsgWatchExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := opts.workspace
			if workspace == "" {
				workspace = "."
			}
			fmt.Fprintln(cmd.ErrOrStderr(), style.RenderTemplate(MsgWatchingTemplate, map[string]string{
				"workspace": workspace,
			}))

			err := commands.Watch(cmd.Context(), commands.WatchOptions{
				Workspace:    opts.workspace,
				SettingsFile: opts.settingsFile,
				DryRun:       opts.dryRun,
			})
			if err != nil {
				return fmt.Errorf(MsgErrWatch, err)
			}
			return nil
		},
	}
}

func newApplyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "apply",
		Short:   MsgApplyShort,
		Long:    MsgApplyLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.Apply(cmd.Context(), commands.ApplyOptions{
				Workspace:    opts.workspace,
				SettingsFile: opts.settingsFile,
				DryRun:       opts.dryRun,
			})
			if err != nil {
				return fmt.Errorf(MsgErrApply, err)
			}

			out := cmd.OutOrStdout()
			if done, err := writeStructured(out, opts.output, result); done {
				return err
			}
			renderSkipped(cmd.ErrOrStderr(), result.Match.Skipped)
			renderPass(out, result.SettingsFile, result.Pass)
			return nil
		},
	}
}

func newResetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "reset",
		Short:   MsgResetShort,
		Long:    MsgResetLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.Reset(cmd.Context(), commands.ResetOptions{
				Workspace:    opts.workspace,
				SettingsFile: opts.settingsFile,
				DryRun:       opts.dryRun,
			})
			if err != nil {
				return fmt.Errorf(MsgErrReset, err)
			}

			out := cmd.OutOrStdout()
			if done, err := writeStructured(out, opts.output, result); done {
				return err
			}
			renderPass(out, result.SettingsFile, result.Pass)
			if !result.Pass.DryRun {
				style.Success(out, MsgResetDone)
			}
			return nil
		},
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		Example: MsgStatusExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.Status(cmd.Context(), commands.StatusOptions{
				Workspace:    opts.workspace,
				SettingsFile: opts.settingsFile,
			})
			if err != nil {
				return fmt.Errorf(MsgErrStatus, err)
			}

			out := cmd.OutOrStdout()
			if done, err := writeStructured(out, opts.output, result); done {
				return err
			}
			renderStatus(out, result)
			return nil
		},
	}
}

func newGenConfigCmd(opts *globalOptions) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.GenConfig(commands.GenConfigOptions{
				Workspace: opts.workspace,
				Write:     write,
			})
			if err != nil {
				return fmt.Errorf(MsgErrGenConfig, err)
			}

			out := cmd.OutOrStdout()
			switch {
			case result.Written:
				style.Success(out, fmt.Sprintf(MsgConfigWritten, result.Path))
			case result.Existed:
				fmt.Fprintf(cmd.ErrOrStderr(), MsgConfigExists, result.Path)
			default:
				fmt.Fprint(out, result.Content)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, MsgFlagWrite)
	return cmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

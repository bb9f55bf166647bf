package branchtint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/arthur-debert/branchtint/pkg/commands"
	"github.com/arthur-debert/branchtint/pkg/reconcile"
	"github.com/arthur-debert/branchtint/pkg/rules"
	"github.com/arthur-debert/branchtint/pkg/style"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// formatBold returns the string formatted as bold using pterm
func formatBold(s string) string {
	if !isTerminal() {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// formatBoldUpper returns the string in uppercase and bold
func formatBoldUpper(s string) string {
	return formatBold(strings.ToUpper(s))
}

// initTemplateFormatting adds custom formatting functions to Cobra templates
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":      formatBold,
		"upper":     strings.ToUpper,
		"boldUpper": formatBoldUpper,
	})
}

func validateOutput(format string) error {
	switch format {
	case OutputText, OutputJSON, OutputYAML:
		return nil
	}
	return fmt.Errorf(MsgErrOutputFormat, format)
}

// writeStructured writes v as JSON or YAML. It reports false for text
// output, which the caller renders itself.
func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

// formatValue renders a settings value. Colors get a swatch.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		if !isTerminal() {
			return val
		}
		return style.Swatch(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}

func renderSkipped(w io.Writer, diags []rules.Diagnostic) {
	for _, d := range diags {
		style.Warning(w, fmt.Sprintf(MsgSkippedRuleFormat, d.Index+1, d.Rule.Pattern, d.Err))
	}
}

// renderPass prints the changes of one pass
func renderPass(w io.Writer, settingsFile string, res reconcile.Result) {
	switch {
	case res.Skipped:
		fmt.Fprintln(w, MsgNothingToDo)
	case len(res.Changes) == 0:
		fmt.Fprintln(w, MsgUpToDate)
	default:
		fmt.Fprintf(w, MsgChangesFormat, len(res.Changes), style.PathStyle.Render(settingsFile))
		width := 0
		for _, c := range res.Changes {
			width = max(width, len(c.Key))
		}
		for _, c := range res.Changes {
			action := style.ActionStyle(string(c.Action)).Sprintf("%-8s", c.Action)
			line := fmt.Sprintf("  %s %-*s  %s", action, width, c.Key, formatValue(c.From))
			if c.Action != reconcile.ActionRemove {
				line += " -> " + formatValue(c.To)
			}
			fmt.Fprintln(w, line)
		}
	}
	if res.DryRun {
		fmt.Fprintln(w, MsgDryRunNotice)
	}
}

func label(s string) string {
	return style.LabelStyle.Render(s)
}

// renderStatus prints a status report
func renderStatus(w io.Writer, st *commands.StatusResult) {
	repo := MsgNoRepository
	if st.Repository != "" {
		repo = st.Repository
	}
	branch := MsgDetached
	if st.HasBranch {
		branch = st.Branch
	}
	rule := MsgNoRule
	if st.Rule != nil {
		rule = st.Rule.Pattern + "  " + formatValue(st.Rule.Color)
	}
	overlay := style.MutedStyle.Render(MsgOverlayInactive)
	switch {
	case !st.StateAvailable:
		overlay = style.WarningStyle.Render(MsgOverlayUnknown)
	case st.Active:
		overlay = style.SuccessStyle.Render(MsgOverlayActive)
	}

	fmt.Fprintln(w, label("Workspace")+" "+style.PathStyle.Render(st.Workspace))
	fmt.Fprintln(w, label("Settings")+" "+style.PathStyle.Render(st.SettingsFile))
	fmt.Fprintln(w, label("Repo")+" "+repo)
	fmt.Fprintln(w, label("Branch")+" "+branch)
	fmt.Fprintln(w, label("Rule")+" "+rule)
	fmt.Fprintln(w, label("Overlay")+" "+overlay)
	if st.SectionError != "" {
		style.Warning(w, MsgSectionInvalid)
	}
	fmt.Fprintln(w)

	for _, k := range st.Keys {
		head := style.Bold(k.Key)
		if !k.Targeted {
			head += " " + style.MutedStyle.Render("("+MsgCleanupOnly+")")
		}
		fmt.Fprintln(w, head)

		current := MsgOriginalMissing
		if k.HasCurrent {
			current = formatValue(k.Current)
		}
		fmt.Fprintln(w, style.Indent("current   "+current, 1))
		if k.Original != nil {
			original := MsgOriginalMissing
			if k.Original.Present {
				original = formatValue(k.Original.Value)
			}
			fmt.Fprintln(w, style.Indent("original  "+original, 1))
		}
		if k.Applied != "" {
			fmt.Fprintln(w, style.Indent("applied   "+formatValue(k.Applied), 1))
		}
	}
}

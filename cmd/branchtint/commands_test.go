package branchtint

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/branchtint/pkg/commands"
	"github.com/arthur-debert/branchtint/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, t.TempDir())
	t.Setenv(paths.EnvStateDir, t.TempDir())
	return t.TempDir()
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "branchtint version")
}

func TestNoCommand(t *testing.T) {
	_, _, err := execute(t)
	assert.Error(t, err)
}

func TestInvalidOutputFormat(t *testing.T) {
	ws := isolate(t)
	_, _, err := execute(t, "status", "-w", ws, "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestGenConfigCmd(t *testing.T) {
	ws := isolate(t)

	out, _, err := execute(t, "genconfig", "-w", ws)
	require.NoError(t, err)
	assert.Contains(t, out, "[[rules]]")
	assert.NoFileExists(t, filepath.Join(ws, ".branchtint.toml"))

	out, _, err = execute(t, "genconfig", "-w", ws, "--write")
	require.NoError(t, err)
	assert.Contains(t, out, ".branchtint.toml")
	assert.FileExists(t, filepath.Join(ws, ".branchtint.toml"))

	_, stderr, err := execute(t, "genconfig", "-w", ws, "--write")
	require.NoError(t, err)
	assert.Contains(t, stderr, "already exists")
}

func TestStatusCmd_Structured(t *testing.T) {
	ws := isolate(t)

	out, _, err := execute(t, "status", "-w", ws, "-o", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, filepath.Clean(ws), got["workspace"])
	assert.Equal(t, false, got["active"])
	assert.Equal(t, false, got["has_branch"])
	assert.Equal(t, true, got["state_available"])

	out, _, err = execute(t, "status", "-w", ws, "-o", "yaml")
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Equal(t, filepath.Clean(ws), fromYAML["workspace"])
}

func TestApplyCmd_DryRun(t *testing.T) {
	ws := isolate(t)
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	if out, err := exec.Command("git", "init", "-q", "-b", "main", ws).CombinedOutput(); err != nil {
		t.Skipf("git init failed: %v: %s", err, out)
	}
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".branchtint.toml"),
		[]byte("[[rules]]\npattern = \"^main$\"\ncolor = \"#00ff00\"\n"), 0o644))

	out, _, err := execute(t, "apply", "-w", ws, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "titleBar.activeBackground")
	assert.Contains(t, out, "#00ff00")
	assert.Contains(t, out, "DRY RUN")
	assert.NoFileExists(t, filepath.Join(ws, ".vscode", "settings.json"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "null", formatValue(nil))
	assert.Equal(t, "12", formatValue(json.Number("12")))
	assert.Equal(t, `{"a":true}`, formatValue(map[string]any{"a": true}))
}

func TestHelpTopics(t *testing.T) {
	out, _, err := execute(t, "help", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "rules")
	assert.Contains(t, out, "--dry-run")

	out, _, err = execute(t, "help", "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "Rules")
	assert.Contains(t, out, "pattern")
}

func TestStatusCmd_Text(t *testing.T) {
	ws := isolate(t)

	out, _, err := execute(t, "status", "-w", ws)
	require.NoError(t, err)
	assert.Contains(t, out, MsgNoRepository)
	assert.Contains(t, out, MsgDetached)
	assert.Contains(t, out, MsgOverlayInactive)
	assert.Contains(t, out, "titleBar.activeBackground")
}

func TestRenderStatus_StateUnavailable(t *testing.T) {
	var buf bytes.Buffer
	renderStatus(&buf, &commands.StatusResult{
		Workspace:    "/ws",
		SettingsFile: "/ws/.vscode/settings.json",
		SectionError: "not an object",
		Keys: []commands.KeyStatus{{
			Key:      "titleBar.activeBackground",
			Targeted: true,
			Original: &commands.OriginalView{Present: true},
		}},
	})

	out := buf.String()
	assert.Contains(t, out, MsgOverlayUnknown)
	assert.Contains(t, out, MsgSectionInvalid)
	assert.Contains(t, out, "original  null")
}

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/branchtint/pkg/paths"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zerolog.Level
	}{
		{-1, zerolog.WarnLevel},
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
		{7, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestSetup_ConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "nested", "branchtint.log")

	require.NoError(t, Setup(Options{Verbosity: 1, Console: &console, LogFile: logPath}))
	t.Cleanup(func() { _ = Setup(Options{Console: &bytes.Buffer{}}) })

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	logger := GetLogger("test")
	logger.Info().Msg("branch changed")

	assert.Contains(t, console.String(), "branch changed")
	raw, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"component":"test"`)
	assert.Contains(t, string(raw), `"message":"branch changed"`)
}

func TestSetup_UnwritableFileKeepsConsole(t *testing.T) {
	var console bytes.Buffer
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := Setup(Options{Console: &console, LogFile: filepath.Join(blocker, "branchtint.log")})
	t.Cleanup(func() { _ = Setup(Options{Console: &bytes.Buffer{}}) })
	assert.Error(t, err)

	log.Warn().Msg("still logging")
	assert.Contains(t, console.String(), "still logging")
}

func TestSetupLogger_CreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(paths.EnvStateDir, dir)

	SetupLogger(0)
	t.Cleanup(func() { _ = Setup(Options{Console: &bytes.Buffer{}}) })

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.FileExists(t, filepath.Join(dir, "branchtint.log"))
}

func TestDefaultLogFile(t *testing.T) {
	t.Setenv(paths.EnvStateDir, "/custom/tint")
	assert.Equal(t, filepath.Join("/custom/tint", "branchtint.log"), DefaultLogFile())

	t.Setenv(paths.EnvStateDir, "")
	got := DefaultLogFile()
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, filepath.Join("branchtint", "branchtint.log"),
		filepath.Join(filepath.Base(filepath.Dir(got)), filepath.Base(got)))
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	logger := GetLogger("reconcile")
	logger.Info().Msg("pass finished")

	assert.Contains(t, buf.String(), `"component":"reconcile"`)
	assert.Contains(t, buf.String(), "pass finished")
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(&buf)

	done := LogOperationStart(logger, "restore")
	done()

	assert.Contains(t, buf.String(), "Operation started")
	assert.Contains(t, buf.String(), "Operation completed")
	assert.Contains(t, buf.String(), "duration")
}

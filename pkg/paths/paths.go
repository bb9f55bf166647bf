package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/internal/hashutil"
)

// Environment variable names
const (
	// EnvWorkspace selects the workspace directory
	EnvWorkspace = "BRANCHTINT_WORKSPACE"

	// EnvConfigDir overrides the XDG config directory for branchtint
	EnvConfigDir = "BRANCHTINT_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for branchtint
	EnvStateDir = "BRANCHTINT_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed names inside the branchtint directories. These are not user
// configurable; user-facing locations belong in pkg/config.
const (
	// AppDirName is the directory name used under each XDG base directory
	AppDirName = "branchtint"

	// UserConfigFile is the name of the user configuration file
	UserConfigFile = "config.toml"

	// WorkspaceConfigFile is the name of the per-workspace configuration file
	WorkspaceConfigFile = ".branchtint.toml"

	// DatabaseDir is the subdirectory holding the overlay state database
	DatabaseDir = "db"

	// LogFileName is the name of the log file
	LogFileName = "branchtint.log"
)

// Paths provides centralized path management for branchtint
type Paths interface {
	WorkspaceRoot() string
	ConfigDir() string
	StateDir() string
	UserConfigPath() string
	WorkspaceConfigPath() string
	SettingsFile(relative string) string
	DatabaseDir() string
	LogFilePath() string
	NormalizePath(path string) (string, error)
}

type paths struct {
	workspaceRoot string
	xdgConfig     string
	xdgState      string
}

// New creates a new Paths instance for the given workspace. If workspace is
// empty, BRANCHTINT_WORKSPACE or the current directory is used.
func New(workspace string) (Paths, error) {
	p := &paths{}

	if workspace == "" {
		workspace = os.Getenv(EnvWorkspace)
	}
	if workspace == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "failed to get current directory")
		}
		workspace = cwd
	}

	abs, err := filepath.Abs(expandHome(workspace))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to get absolute path for workspace")
	}
	p.workspaceRoot = filepath.Clean(abs)

	p.setupXDGDirs()
	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if stateDir := os.Getenv(EnvStateDir); stateDir != "" {
		p.xdgState = expandHome(stateDir)
	} else {
		p.xdgState = filepath.Join(xdg.StateHome, AppDirName)
	}
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

// ExpandHome is a utility function that expands ~ in paths
func ExpandHome(path string) string {
	return expandHome(path)
}

// WorkspaceRoot returns the absolute workspace directory
func (p *paths) WorkspaceRoot() string {
	return p.workspaceRoot
}

// ConfigDir returns the XDG config directory for branchtint
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// StateDir returns the XDG state directory for branchtint
func (p *paths) StateDir() string {
	return p.xdgState
}

// UserConfigPath returns the user-wide configuration file path
func (p *paths) UserConfigPath() string {
	return filepath.Join(p.xdgConfig, UserConfigFile)
}

// WorkspaceConfigPath returns the workspace configuration file path
func (p *paths) WorkspaceConfigPath() string {
	return filepath.Join(p.workspaceRoot, WorkspaceConfigFile)
}

// SettingsFile resolves the host settings file. Relative paths are taken
// from the workspace root.
func (p *paths) SettingsFile(relative string) string {
	expanded := expandHome(relative)
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded)
	}
	return filepath.Join(p.workspaceRoot, expanded)
}

// DatabaseDir returns the overlay state database directory of the
// workspace. Each workspace has its own database so sessions in different
// workspaces do not contend for the directory lock.
func (p *paths) DatabaseDir() string {
	return filepath.Join(p.xdgState, DatabaseDir, hashutil.ShortChecksum(p.workspaceRoot))
}

// LogFilePath returns the log file path
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// NormalizePath normalizes a path by expanding home, making it absolute,
// and cleaning it
func (p *paths) NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "failed to get absolute path")
	}

	return filepath.Clean(abs), nil
}

package config

import (
	"time"

	"github.com/arthur-debert/branchtint/pkg/rules"
)

// Config is the merged configuration
type Config struct {
	// Rules are ordered; entries without a pattern or color are dropped
	Rules []rules.Rule `koanf:"-"`

	// TargetKeys are the configured keys to manage, unnormalized
	TargetKeys []string `koanf:"-"`

	Workspace WorkspaceConfig `koanf:"workspace"`
	Watch     WatchConfig     `koanf:"watch"`
}

// WorkspaceConfig locates the host settings
type WorkspaceConfig struct {
	// SettingsFile is the host settings file, relative to the workspace
	SettingsFile string `koanf:"settings_file"`

	// Section is the settings member holding the colors
	Section string `koanf:"section"`

	// ThemeKey is the settings member naming the color theme
	ThemeKey string `koanf:"theme_key"`
}

// WatchConfig tunes the watch command
type WatchConfig struct {
	// Debounce coalesces bursts of file events
	Debounce time.Duration `koanf:"debounce"`
}

// Sources lists the files a Loader reads, in increasing precedence
type Sources struct {
	User      string
	Workspace string
}

// Files returns the configured file paths
func (s Sources) Files() []string {
	var out []string
	for _, f := range []string{s.User, s.Workspace} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

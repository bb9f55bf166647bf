// Package paths provides centralized path handling for branchtint.
//
// It resolves the workspace being tinted and the XDG directories branchtint
// keeps its own files in:
//
//   - Config: $XDG_CONFIG_HOME/branchtint (user config.toml)
//   - State: $XDG_STATE_HOME/branchtint (overlay database, log file)
//
// # Environment Variables
//
//   - BRANCHTINT_WORKSPACE: workspace directory (default: current directory)
//   - BRANCHTINT_CONFIG_DIR: override the config directory
//   - BRANCHTINT_STATE_DIR: override the state directory
//
// # Usage
//
//	p, err := paths.New("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	settings := p.SettingsFile(".vscode/settings.json")
//	db := p.DatabaseDir()
package paths

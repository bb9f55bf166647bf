package genconfig

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/branchtint/pkg/config"
	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/arthur-debert/branchtint/pkg/paths"
)

// GenConfigOptions holds options for the genconfig command
type GenConfigOptions struct {
	// Workspace is the workspace directory; empty selects the current one
	Workspace string

	// Write saves the config as the workspace config file instead of
	// returning it only
	Write bool
}

// GenConfigResult holds the generated content and what was written
type GenConfigResult struct {
	Content string `json:"content" yaml:"content"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Written bool   `json:"written" yaml:"written"`
	Existed bool   `json:"existed" yaml:"existed"`
}

// GenConfig renders a starter configuration and optionally writes it.
// An existing workspace config file is never overwritten.
func GenConfig(opts GenConfigOptions) (*GenConfigResult, error) {
	logger := logging.GetLogger("commands.genconfig")

	content, err := config.GenerateConfigContent()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render config")
	}
	result := &GenConfigResult{Content: content}
	if !opts.Write {
		return result, nil
	}

	p, err := paths.New(opts.Workspace)
	if err != nil {
		return nil, err
	}
	target := p.WorkspaceConfigPath()
	result.Path = target

	if _, err := os.Stat(target); err == nil {
		logger.Info().Str("path", target).Msg("Config file exists, not overwriting")
		result.Existed = true
		return result, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create config directory").
			WithDetail("path", target)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to write config").
			WithDetail("path", target)
	}
	result.Written = true

	logger.Info().Str("path", target).Msg("Config file written")
	return result, nil
}

package status

import (
	"context"
	"sort"

	"github.com/arthur-debert/branchtint/pkg/commands/internal"
	"github.com/arthur-debert/branchtint/pkg/datastore"
	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/arthur-debert/branchtint/pkg/rules"
	"github.com/arthur-debert/branchtint/pkg/targets"
)

// StatusOptions holds options for the status command
type StatusOptions struct {
	Workspace    string
	SettingsFile string

	// Store replaces the on-disk state database
	Store datastore.DataStore
}

// OriginalView is the printable form of a recorded original. Present is
// false when the key did not exist; a present null keeps Value nil.
type OriginalView struct {
	Present bool `json:"present" yaml:"present"`
	Value   any  `json:"value" yaml:"value"`
}

// KeyStatus describes one key the overlay manages or has managed
type KeyStatus struct {
	Key        string        `json:"key" yaml:"key"`
	Targeted   bool          `json:"targeted" yaml:"targeted"`
	Current    any           `json:"current,omitempty" yaml:"current,omitempty"`
	HasCurrent bool          `json:"has_current" yaml:"has_current"`
	Original   *OriginalView `json:"original,omitempty" yaml:"original,omitempty"`
	Applied    string        `json:"applied,omitempty" yaml:"applied,omitempty"`
}

// StatusResult is the overlay status of a workspace
type StatusResult struct {
	Workspace    string       `json:"workspace" yaml:"workspace"`
	SettingsFile string       `json:"settings_file" yaml:"settings_file"`
	Repository   string       `json:"repository,omitempty" yaml:"repository,omitempty"`
	Branch       string       `json:"branch,omitempty" yaml:"branch,omitempty"`
	HasBranch    bool         `json:"has_branch" yaml:"has_branch"`
	Rule         *rules.Rule  `json:"rule,omitempty" yaml:"rule,omitempty"`
	Rules        []rules.Rule `json:"rules" yaml:"rules"`
	Targets      targets.Set  `json:"targets" yaml:"targets"`
	Keys         []KeyStatus  `json:"keys" yaml:"keys"`
	Active       bool         `json:"active" yaml:"active"`

	// StateAvailable is false when the state database could not be read,
	// typically while a watcher holds it. Keys then only show current
	// values and Active is unknown.
	StateAvailable bool   `json:"state_available" yaml:"state_available"`
	StateError     string `json:"state_error,omitempty" yaml:"state_error,omitempty"`

	// SectionError is set when the settings section is not an object
	SectionError string `json:"section_error,omitempty" yaml:"section_error,omitempty"`
}

// Status reads the configuration, branch, settings and overlay state
// without changing anything
func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	logger := logging.GetLogger("commands.status")

	w, err := internal.Open(ctx, internal.Options{
		Workspace:    opts.Workspace,
		SettingsFile: opts.SettingsFile,
		ReadOnly:     true,
		Store:        opts.Store,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close state store")
		}
	}()

	match, err := w.Session.Resolve()
	if err != nil {
		return nil, err
	}
	state, previous, err := w.Reconciler.State(ctx)
	if err != nil {
		return nil, err
	}
	section, _, err := w.Host.Section(ctx, w.Reconciler.Section())
	var sectionErr string
	switch {
	case errors.IsErrorCode(err, errors.ErrSettingsShape):
		sectionErr = err.Error()
	case err != nil:
		return nil, err
	}

	set := targets.Resolve(match.Config.TargetKeys, previous)
	result := &StatusResult{
		Workspace:    w.Paths.WorkspaceRoot(),
		SettingsFile: w.Host.Path(),
		Branch:       match.Branch,
		HasBranch:    match.HasBranch,
		Rule:         match.Rule,
		Rules:        match.Config.Rules,
		Targets:      set,
		Active:       !state.Empty(),

		StateAvailable: w.StateErr == nil,
		SectionError:   sectionErr,
	}
	if w.StateErr != nil {
		result.StateError = w.StateErr.Error()
	}
	if w.Repo != nil {
		result.Repository = w.Repo.Root
	}

	keys := set.All()
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	var extra []string
	for k := range state.Originals {
		if !seen[k] {
			seen[k] = true
			extra = append(extra, k)
		}
	}
	for k := range state.Applied {
		if !seen[k] {
			seen[k] = true
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	for _, k := range keys {
		ks := KeyStatus{Key: k, Targeted: set.InApply(k)}
		ks.Current, ks.HasCurrent = section[k]
		if o, ok := state.Originals[k]; ok {
			v, present := o.Get()
			ks.Original = &OriginalView{Present: present, Value: v}
		}
		ks.Applied = state.Applied[k]
		result.Keys = append(result.Keys, ks)
	}

	return result, nil
}

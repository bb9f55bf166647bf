package config

import (
	"os"
	"strings"

	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/arthur-debert/branchtint/pkg/paths"
	"github.com/arthur-debert/branchtint/pkg/rules"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nesting levels: BRANCHTINT_WATCH__DEBOUNCE sets watch.debounce.
const EnvPrefix = "BRANCHTINT_"

// envReserved are BRANCHTINT_ variables that select paths, not settings
var envReserved = map[string]bool{
	paths.EnvWorkspace: true,
	paths.EnvConfigDir: true,
	paths.EnvStateDir:  true,
}

// Loader reads the layered configuration. Load may be called repeatedly;
// every call re-reads all sources.
type Loader struct {
	sources   Sources
	overrides map[string]interface{}
}

// NewLoader creates a loader for the files p points at
func NewLoader(p paths.Paths) *Loader {
	return &Loader{sources: Sources{
		User:      p.UserConfigPath(),
		Workspace: p.WorkspaceConfigPath(),
	}}
}

// NewLoaderFromSources creates a loader for explicit files
func NewLoaderFromSources(s Sources) *Loader {
	return &Loader{sources: s}
}

// WithOverrides sets values applied after every other layer, keyed by
// dotted path (e.g. "workspace.settings_file"). Used for command-line flags.
func (l *Loader) WithOverrides(values map[string]interface{}) *Loader {
	l.overrides = values
	return l
}

// Sources returns the files the loader reads
func (l *Loader) Sources() Sources {
	return l.sources
}

// Load merges all layers into a Config
func (l *Loader) Load() (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(bytesSource(defaultConfig), toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load built-in defaults")
	}

	for _, path := range l.sources.Files() {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot access config file %s", path)
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Config file loaded")
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	if len(l.overrides) > 0 {
		if err := k.Load(confmap.Provider(l.overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}

	cfg.Rules = rules.Filter(parseRules(k.Get("rules")))
	cfg.TargetKeys = parseStrings(k.Get("target_keys"))

	logger.Trace().
		Int("rules", len(cfg.Rules)).
		Strs("targetKeys", cfg.TargetKeys).
		Msg("Configuration loaded")
	return &cfg, nil
}

// envKey maps BRANCHTINT_WATCH__DEBOUNCE to watch.debounce. Reserved path
// variables map to "" and are skipped.
func envKey(s string) string {
	if envReserved[s] {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// parseRules keeps entries that are tables with string pattern and color
func parseRules(raw interface{}) []rules.Rule {
	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case []map[string]interface{}:
		for _, m := range v {
			items = append(items, m)
		}
	default:
		return nil
	}

	out := make([]rules.Rule, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		pattern, okP := m["pattern"].(string)
		color, okC := m["color"].(string)
		if !okP || !okC {
			continue
		}
		out = append(out, rules.Rule{Pattern: pattern, Color: color})
	}
	return out
}

// parseStrings keeps the string entries of a list. A single string is
// split on commas, which is how environment overrides arrive.
func parseStrings(raw interface{}) []string {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return strings.Split(v, ",")
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

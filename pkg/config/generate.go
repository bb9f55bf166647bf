package config

import (
	"strings"

	"github.com/arthur-debert/branchtint/pkg/rules"
	"github.com/arthur-debert/branchtint/pkg/targets"
	"github.com/pelletier/go-toml/v2"
)

const starterHeader = `# branchtint workspace configuration
#
# Rules are tried in order; the first pattern (ECMAScript regular
# expression) matching the checked-out branch sets the color of every
# target key. When no rule matches, the keys return to the values they had
# before branchtint touched them.

`

// starter is the document rendered by GenerateConfigContent
type starter struct {
	TargetKeys []string     `toml:"target_keys"`
	Rules      []rules.Rule `toml:"rules"`
}

// StarterRules are the example rules of a generated config
var StarterRules = []rules.Rule{
	{Pattern: "^(main|master)$", Color: "#B71C1C"},
	{Pattern: "^(release|hotfix)/", Color: "#E65100"},
}

// GenerateConfigContent renders a starter workspace config file
func GenerateConfigContent() (string, error) {
	body, err := toml.Marshal(starter{
		TargetKeys: targets.Defaults,
		Rules:      StarterRules,
	})
	if err != nil {
		return "", err
	}
	return starterHeader + strings.TrimLeft(string(body), "\n"), nil
}

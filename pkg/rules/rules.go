package rules

import (
	"strings"
	"time"

	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog"
)

// matchTimeout bounds a single pattern evaluation against pathological
// backtracking
const matchTimeout = 250 * time.Millisecond

// Rule maps a branch pattern to a color
type Rule struct {
	Pattern string `koanf:"pattern" toml:"pattern" json:"pattern" yaml:"pattern"`
	Color   string `koanf:"color" toml:"color" json:"color" yaml:"color"`
}

// Diagnostic reports a rule that could not be evaluated
type Diagnostic struct {
	Index int
	Rule  Rule
	Err   error
}

// Filter drops rules with an empty pattern or color, keeping order
func Filter(in []Rule) []Rule {
	out := make([]Rule, 0, len(in))
	for _, r := range in {
		if strings.TrimSpace(r.Pattern) == "" || strings.TrimSpace(r.Color) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// HasColor reports whether any rule uses color
func HasColor(rules []Rule, color string) bool {
	for _, r := range rules {
		if r.Color == color {
			return true
		}
	}
	return false
}

// Matcher selects the rule for a branch
type Matcher struct {
	logger zerolog.Logger
}

// NewMatcher creates a new rule matcher
func NewMatcher() *Matcher {
	return &Matcher{
		logger: logging.GetLogger("rules.matcher"),
	}
}

// Match returns the first rule whose pattern matches branch. ok is false
// when the branch is absent (detached HEAD, no repository) or no rule
// matches. Rules that fail to compile or evaluate are reported as
// diagnostics and skipped.
func (m *Matcher) Match(branch string, hasBranch bool, rules []Rule) (Rule, bool, []Diagnostic) {
	if !hasBranch {
		return Rule{}, false, nil
	}

	var diags []Diagnostic
	for i, r := range rules {
		re, err := regexp2.Compile(r.Pattern, regexp2.ECMAScript)
		if err != nil {
			diags = append(diags, m.diagnose(i, r, errors.Wrapf(err, errors.ErrRuleCompile,
				"invalid branch pattern %q", r.Pattern)))
			continue
		}
		re.MatchTimeout = matchTimeout

		matched, err := re.MatchString(branch)
		if err != nil {
			diags = append(diags, m.diagnose(i, r, errors.Wrapf(err, errors.ErrRuleCompile,
				"branch pattern %q could not be evaluated", r.Pattern)))
			continue
		}
		if matched {
			m.logger.Debug().
				Str("branch", branch).
				Str("pattern", r.Pattern).
				Str("color", r.Color).
				Msg("Rule matched")
			return r, true, diags
		}
	}

	m.logger.Debug().Str("branch", branch).Int("ruleCount", len(rules)).Msg("No rule matched")
	return Rule{}, false, diags
}

func (m *Matcher) diagnose(index int, r Rule, err error) Diagnostic {
	m.logger.Warn().
		Err(err).
		Int("rule", index).
		Str("pattern", r.Pattern).
		Msg("Skipping rule")
	return Diagnostic{Index: index, Rule: r, Err: err}
}

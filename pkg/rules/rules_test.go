package rules

import (
	"testing"

	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	in := []Rule{
		{Pattern: "^main$", Color: "#FF0000"},
		{Pattern: "", Color: "#00FF00"},
		{Pattern: "^dev$", Color: "  "},
		{Pattern: "^release/", Color: "#0000FF"},
	}

	got := Filter(in)
	assert.Equal(t, []Rule{
		{Pattern: "^main$", Color: "#FF0000"},
		{Pattern: "^release/", Color: "#0000FF"},
	}, got)
}

func TestHasColor(t *testing.T) {
	rs := []Rule{{Pattern: "a", Color: "#111"}, {Pattern: "b", Color: "#222"}}
	assert.True(t, HasColor(rs, "#222"))
	assert.False(t, HasColor(rs, "#333"))
	assert.False(t, HasColor(nil, "#111"))
}

func TestMatch(t *testing.T) {
	rs := []Rule{
		{Pattern: "^main$", Color: "#FF0000"},
		{Pattern: "^release/", Color: "#FFA500"},
		{Pattern: ".*", Color: "#00FF00"},
	}

	tests := []struct {
		name      string
		branch    string
		hasBranch bool
		wantColor string
		wantOK    bool
	}{
		{"exact match wins first", "main", true, "#FF0000", true},
		{"prefix pattern", "release/1.2", true, "#FFA500", true},
		{"catch-all", "feature/x", true, "#00FF00", true},
		{"absent branch", "", false, "", false},
	}

	m := NewMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok, diags := m.Match(tt.branch, tt.hasBranch, rs)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantColor, rule.Color)
			assert.Empty(t, diags)
		})
	}
}

func TestMatch_FirstMatchWins(t *testing.T) {
	rs := []Rule{
		{Pattern: "^ma", Color: "#111111"},
		{Pattern: "^main$", Color: "#222222"},
	}

	rule, ok, _ := NewMatcher().Match("main", true, rs)
	require.True(t, ok)
	assert.Equal(t, "#111111", rule.Color)
}

func TestMatch_NoRuleMatches(t *testing.T) {
	rule, ok, diags := NewMatcher().Match("feature/x", true, []Rule{{Pattern: "^main$", Color: "#FF0000"}})
	assert.False(t, ok)
	assert.Equal(t, Rule{}, rule)
	assert.Empty(t, diags)
}

func TestMatch_InvalidPatternSkipped(t *testing.T) {
	rs := []Rule{
		{Pattern: "([", Color: "#BAD"},
		{Pattern: "^main$", Color: "#FF0000"},
	}

	m := NewMatcher()
	rule, ok, diags := m.Match("main", true, rs)
	require.True(t, ok)
	assert.Equal(t, "#FF0000", rule.Color)

	require.Len(t, diags, 1)
	assert.Equal(t, 0, diags[0].Index)
	assert.True(t, errors.IsErrorCode(diags[0].Err, errors.ErrRuleCompile))

	// a diagnostic is produced on every attempt, not just the first
	_, _, again := m.Match("main", true, rs)
	assert.Len(t, again, 1)
}

func TestMatch_ECMAScriptSyntax(t *testing.T) {
	// lookahead is valid ECMAScript but not RE2
	rs := []Rule{{Pattern: "^(?!feature/).+", Color: "#FF0000"}}

	m := NewMatcher()
	_, ok, diags := m.Match("main", true, rs)
	assert.True(t, ok)
	assert.Empty(t, diags)

	_, ok, _ = m.Match("feature/login", true, rs)
	assert.False(t, ok)
}

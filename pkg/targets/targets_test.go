package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"blank entries dropped", []string{"", "  ", "a"}, []string{"a"}},
		{"trimmed", []string{"  titleBar.activeBackground "}, []string{"titleBar.activeBackground"}},
		{"first occurrence wins", []string{"b", "a", "b", " a"}, []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestResolve_DefaultsWhenUnconfigured(t *testing.T) {
	for _, configured := range [][]string{nil, {}, {" ", ""}} {
		set := Resolve(configured, nil)
		assert.Equal(t, Defaults, set.Apply)
		assert.ElementsMatch(t, Defaults, set.Cleanup)
		assert.Empty(t, set.CleanupOnly())
	}
}

func TestResolve_CleanupIncludesPreviousAndDefaults(t *testing.T) {
	set := Resolve(
		[]string{"statusBar.background", "statusBar.background"},
		[]string{"activityBar.background", " "},
	)

	assert.Equal(t, []string{"statusBar.background"}, set.Apply)
	assert.Equal(t, []string{
		"activityBar.background",
		"statusBar.background",
		"titleBar.activeBackground",
		"titleBar.inactiveBackground",
	}, set.Cleanup)
	assert.Equal(t, []string{
		"activityBar.background",
		"titleBar.activeBackground",
		"titleBar.inactiveBackground",
	}, set.CleanupOnly())
}

func TestResolve_DoesNotAliasDefaults(t *testing.T) {
	set := Resolve(nil, nil)
	set.Apply[0] = "mutated"
	assert.Equal(t, "titleBar.activeBackground", Defaults[0])
}

func TestAll(t *testing.T) {
	set := Resolve([]string{"z.key", "a.key"}, []string{"m.key"})
	assert.Equal(t, []string{
		"z.key", "a.key",
		"m.key", "titleBar.activeBackground", "titleBar.inactiveBackground",
	}, set.All())
}

package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwatch(t *testing.T) {
	tests := []struct {
		name  string
		color string
		plain bool
	}{
		{"six digit hex", "#FF0000", false},
		{"three digit hex", "#f00", false},
		{"named color", "red", true},
		{"bad hex", "#GG0000", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Swatch(tt.color)
			if tt.plain {
				assert.Equal(t, tt.color, out)
				return
			}
			assert.True(t, strings.HasSuffix(out, " "+tt.color))
		})
	}
}

func TestRender(t *testing.T) {
	out := Render("[bold]main[/bold] is [muted]protected[/muted]")
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "protected")
	assert.NotContains(t, out, "[bold]")
	assert.NotContains(t, out, "[/muted]")
}

func TestRenderTemplate(t *testing.T) {
	out := RenderTemplate("Branch [code]{{branch}}[/code]", map[string]string{"branch": "feature/x"})
	assert.Contains(t, out, "feature/x")
	assert.NotContains(t, out, "{{branch}}")
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "Hello", Indent("Hello", 0))
	assert.Equal(t, "    Hello", Indent("Hello", 2))
}

func TestActionStyle(t *testing.T) {
	for _, action := range []string{"set", "restore", "remove", "other"} {
		assert.NotNil(t, ActionStyle(action))
	}
}

func TestRender_Nested(t *testing.T) {
	out := Render("[bold]on [code]main[/code][/bold]")
	assert.Contains(t, out, "main")
	assert.NotContains(t, out, "[code]")
	assert.NotContains(t, out, "[/bold]")
}

func TestSuccessAndWarningWriteToWriter(t *testing.T) {
	var buf strings.Builder
	Success(&buf, "restored")
	Warning(&buf, "rule skipped")
	assert.Contains(t, buf.String(), "restored")
	assert.Contains(t, buf.String(), "rule skipped")
}

package style

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MarkupParser renders inline [tag]text[/tag] markup with lipgloss styles.
// Tags may nest.
type MarkupParser struct {
	tags []markupTag
}

type markupTag struct {
	pattern *regexp.Regexp
	style   lipgloss.Style
}

// NewMarkupParser creates a parser for the default tags
func NewMarkupParser() *MarkupParser {
	styles := map[string]lipgloss.Style{
		"title":   TitleStyle,
		"success": SuccessStyle,
		"error":   ErrorStyle,
		"warning": WarningStyle,
		"info":    InfoStyle,
		"code":    CodeStyle,
		"path":    PathStyle,
		"muted":   MutedStyle,
		"bold":    lipgloss.NewStyle().Bold(true),
		"italic":  lipgloss.NewStyle().Italic(true),
	}
	p := &MarkupParser{}
	for tag, st := range styles {
		p.tags = append(p.tags, markupTag{
			pattern: regexp.MustCompile(`\[` + tag + `\](.*?)\[/` + tag + `\]`),
			style:   st,
		})
	}
	return p
}

// Render replaces every tagged span with its styled content. Inner tags are
// resolved first on later iterations, so the loop runs until the text stops
// changing.
func (p *MarkupParser) Render(text string) string {
	for {
		before := text
		for _, t := range p.tags {
			text = t.pattern.ReplaceAllStringFunc(text, func(match string) string {
				sub := t.pattern.FindStringSubmatch(match)
				return t.style.Render(sub[1])
			})
		}
		if text == before {
			return text
		}
	}
}

// RenderTemplate substitutes {{name}} placeholders, then renders markup
func (p *MarkupParser) RenderTemplate(template string, vars map[string]string) string {
	for key, value := range vars {
		template = strings.ReplaceAll(template, "{{"+key+"}}", value)
	}
	return p.Render(template)
}

var defaultParser = NewMarkupParser()

// Render renders markup with the default parser
func Render(text string) string {
	return defaultParser.Render(text)
}

// RenderTemplate renders a template with the default parser
func RenderTemplate(template string, vars map[string]string) string {
	return defaultParser.RenderTemplate(template, vars)
}

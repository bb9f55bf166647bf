package topics

import "github.com/charmbracelet/glamour"

// Renderer formats topic content for the terminal. format is the topic
// file's extension.
type Renderer interface {
	Render(content, format string) string
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(content, format string) string

func (f RendererFunc) Render(content, format string) string { return f(content, format) }

// Plain leaves content untouched
var Plain = RendererFunc(func(content, _ string) string { return content })

// Markdown renders .md topics with glamour and passes other formats
// through. An empty style follows the terminal background; width 0 keeps
// glamour's wrapping.
func Markdown(style string, width int) Renderer {
	return RendererFunc(func(content, format string) string {
		if format != ".md" {
			return content
		}
		opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
		if style != "" {
			opts[0] = glamour.WithStylePath(style)
		}
		if width > 0 {
			opts = append(opts, glamour.WithWordWrap(width))
		}
		tr, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			return content
		}
		out, err := tr.Render(content)
		if err != nil {
			return content
		}
		return out
	})
}

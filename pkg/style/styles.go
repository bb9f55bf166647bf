package style

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle   = lipgloss.NewStyle().Foreground(TextColor).Bold(true).MarginBottom(1)
	LabelStyle   = lipgloss.NewStyle().Foreground(TextColor).Bold(true).Width(10)
	MutedStyle   = lipgloss.NewStyle().Foreground(MutedColor)
	PathStyle    = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
	CodeStyle    = lipgloss.NewStyle().Foreground(AccentColor).Background(SurfaceColor).Padding(0, 1)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Swatch renders a small block filled with color followed by the color
// value. Values that are not hex colors are rendered as plain text.
func Swatch(color string) string {
	if !hexColor.MatchString(color) {
		return color
	}
	block := lipgloss.NewStyle().Background(lipgloss.Color(color)).Render("  ")
	return block + " " + color
}

// Indent pads s by two columns per level
func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

// Bold renders s in bold
func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}

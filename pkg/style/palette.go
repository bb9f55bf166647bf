package style

import "github.com/charmbracelet/lipgloss"

// adaptive picks the light or dark variant from the terminal background
func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Palette. Accent is the VS Code status bar blue.
var (
	AccentColor  = adaptive("#0065A9", "#3794FF")
	TextColor    = adaptive("#1F1F1F", "#E5E5E5")
	MutedColor   = adaptive("#717171", "#9D9D9D")
	SurfaceColor = adaptive("#F3F3F3", "#252526")

	SuccessColor = adaptive("#388A34", "#89D185")
	ErrorColor   = adaptive("#C72E0F", "#F48771")
	WarningColor = adaptive("#BF8803", "#CCA700")
	InfoColor    = adaptive("#1A85FF", "#75BEFF")
)

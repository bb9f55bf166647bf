package style

import (
	"io"

	"github.com/pterm/pterm"
)

// ActionStyle returns the pterm style used to print a change action
func ActionStyle(action string) *pterm.Style {
	switch action {
	case "set":
		return pterm.NewStyle(pterm.FgGreen, pterm.Bold)
	case "restore":
		return pterm.NewStyle(pterm.FgCyan)
	case "remove":
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// Success prints a success line to w
func Success(w io.Writer, msg string) {
	pterm.Success.WithWriter(w).Println(msg)
}

// Warning prints a warning line to w
func Warning(w io.Writer, msg string) {
	pterm.Warning.WithWriter(w).Println(msg)
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
)

// stateStyles colors the SDK state label.
var stateStyles = map[string]lipgloss.Style{
	"LOADING":        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	"INIT.PAUSED":    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	"INIT.PLAYING":   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	"INIT.GAME_OVER": lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	"ERROR":          lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

func protocolName(legacy bool) string {
	if legacy {
		return "legacy"
	}
	return "current"
}

func renderState(s string) string {
	style, ok := stateStyles[s]
	if !ok {
		return s
	}
	return style.Render(s)
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

func shortToken(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}

package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#4CAF50")
	warnFg    = lipgloss.Color("#E5484D")
	borderCol = lipgloss.Color("#243141")

	appStyle    = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(baseDimFg)
	errStyle    = lipgloss.NewStyle().Foreground(warnFg)
	parcelStyle = lipgloss.NewStyle().Foreground(accentFg)
	hoverStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)

package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorText    lipgloss.Color = "#f5f5f5"
	colorSubtext lipgloss.Color = "#c8c8c8"
	colorMuted   lipgloss.Color = "#7f7f7f"
	colorError   lipgloss.Color = "#f38ba8"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)

	titleStyle  = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	artistStyle = lipgloss.NewStyle().Foreground(colorSubtext)
	appStyle    = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	keyStyle      = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	disabledStyle = lipgloss.NewStyle().Foreground(colorMuted).Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
)

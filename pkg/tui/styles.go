package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorBlue   = lipgloss.Color("#3b82f6")
	colorPurple = lipgloss.Color("#a855f7")
	colorText   = lipgloss.Color("#e5e7eb")
	colorMuted  = lipgloss.Color("#9ca3af")
	colorGreen  = lipgloss.Color("#4ade80")
	colorRed    = lipgloss.Color("#f87171")
	colorYellow = lipgloss.Color("#fde047")

	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue).MarginBottom(1)
	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
	styleKey   = lipgloss.NewStyle().Foreground(colorPurple).Bold(true)

	styleLink       = lipgloss.NewStyle().Foreground(colorText).Padding(0, 2)
	styleLinkActive = lipgloss.NewStyle().Foreground(colorYellow).Bold(true).Padding(0, 2)

	styleLabel       = lipgloss.NewStyle().Foreground(colorText).Width(32)
	styleLabelActive = styleLabel.Foreground(colorYellow).Bold(true)
	styleInput       = lipgloss.NewStyle().Foreground(colorBlue)

	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleFailure = lipgloss.NewStyle().Foreground(colorRed).Bold(true)

	styleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPurple).
			Padding(0, 1).
			MarginBottom(1)

	styleButton = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(colorBlue).
			Padding(0, 2)
)

func renderKey(k, d string) string {
	return styleKey.Render("["+k+"]") + " " + d
}

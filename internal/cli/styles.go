package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#6C63FF")
	colorMuted   = lipgloss.Color("#666666")
	colorSuccess = lipgloss.Color("#2ECC71")
	colorWarning = lipgloss.Color("#F39C12")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	runningStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	idleStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	gapStyle     = lipgloss.NewStyle().Foreground(colorWarning)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

// swatch renders a small colored block in the option's display color.
func swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■")
}

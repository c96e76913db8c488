package tui

import "github.com/charmbracelet/lipgloss"

// Tokyo Night palette
var (
	accentColor = lipgloss.AdaptiveColor{Light: "#7aa2f7", Dark: "#7aa2f7"}
	mutedColor  = lipgloss.AdaptiveColor{Light: "#565f89", Dark: "#9aa5ce"}

	docStyle   = lipgloss.NewStyle().Margin(1, 2)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1a1b26")).
			Background(accentColor).
			Padding(0, 1)
)

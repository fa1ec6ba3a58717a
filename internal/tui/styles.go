package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle heads a command's output
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(orange).
			MarginBottom(1)

	// SelectedStyle marks steps and list names
	SelectedStyle = lipgloss.NewStyle().
			Foreground(blue).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(orange)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	// SubtleStyle is for hints below a result
	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	DescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)

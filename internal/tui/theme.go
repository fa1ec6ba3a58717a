package tui

import (
	huh "github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	orange = lipgloss.AdaptiveColor{Light: "#D9730D", Dark: "#FFB86C"}
	blue   = lipgloss.AdaptiveColor{Light: "#1F6FEB", Dark: "#7AA2F7"}
)

// NewHuhTheme returns the charm theme with orange titles and blue selections.
func NewHuhTheme() *huh.Theme {
	t := huh.ThemeCharm()

	t.Focused.Title = t.Focused.Title.Foreground(orange).Bold(true)
	t.Focused.NoteTitle = t.Focused.NoteTitle.Foreground(orange)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(blue)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(blue)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(orange)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(blue)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(orange)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())

	return t
}

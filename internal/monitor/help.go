package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpBinding represents a single keyboard shortcut entry.
type HelpBinding struct {
	Key  string
	Desc string
}

// helpBindings defines all keyboard shortcuts shown in the help overlay.
var helpBindings = []HelpBinding{
	{Key: "q / Ctrl+C", Desc: "Quit"},
	{Key: "r", Desc: "Refresh now"},
	{Key: "t", Desc: "Toggle light/dark theme"},
	{Key: "Tab", Desc: "Switch live/history page"},
	{Key: "[ / ]", Desc: "Shorter/longer history window"},
	{Key: "left / right", Desc: "Move chart cursor"},
	{Key: "up / down", Desc: "Scroll charts"},
	{Key: "Esc", Desc: "Close help"},
	{Key: "?", Desc: "Toggle this help"},
}

// renderHelpOverlay renders a centered help box with keyboard shortcuts.
func (m Model) renderHelpOverlay() string {
	s := m.styles

	var lines []string
	lines = append(lines, s.HelpTitle.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	for _, binding := range helpBindings {
		lines = append(lines, s.HelpKey.Render(binding.Key)+s.HelpDesc.Render(binding.Desc))
	}

	lines = append(lines, "")
	lines = append(lines, s.Label.Render("Press ? to close"))

	helpBox := s.HelpBox.Render(strings.Join(lines, "\n"))

	if m.width == 0 || m.height == 0 {
		return helpBox
	}
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(s.Palette.Background),
	)
}

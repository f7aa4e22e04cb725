package monitor

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sysdash/internal/page"
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "r"
	KeyToggleTheme = "t"
	KeySwitchRoute = "tab"
	KeyPrevLimit   = "["
	KeyNextLimit   = "]"
	KeyCursorLeft  = "left"
	KeyCursorRight = "right"
	KeyToggleHelp  = "?"
	KeyClose       = "esc"
)

// HandleKeyMsg processes keyboard input.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyClose {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		return true, tea.Batch(m.poller.Cycle(), m.charts.Load(m.doc))

	case KeyToggleTheme:
		m.ToggleTheme()
		return true, nil

	case KeySwitchRoute:
		next := page.RouteHistory
		if m.doc.Path() == page.RouteHistory {
			next = page.RouteLive
		}
		return true, m.Navigate(next)

	case KeyPrevLimit, KeyNextLimit:
		el, ok := m.doc.Lookup(page.IDLimitSelect)
		if !ok {
			return false, nil
		}
		delta := 1
		if key == KeyPrevLimit {
			delta = -1
		}
		if !el.Step(delta) {
			return true, nil
		}
		return true, m.charts.Load(m.doc)

	case KeyCursorLeft, KeyCursorRight:
		if !Active(m.doc) {
			return false, nil
		}
		delta := 1
		if key == KeyCursorLeft {
			delta = -1
		}
		m.moveCursor(delta)
		return true, nil
	}

	return false, nil
}

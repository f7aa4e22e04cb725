package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysdash/internal/theme"
)

// Thresholds for metric severity levels
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// Styles is the set of lipgloss styles for one theme. It's rebuilt when
// the theme toggles.
type Styles struct {
	Mode    theme.Mode
	Palette theme.Palette

	Header    lipgloss.Style
	Title     lipgloss.Style
	Footer    lipgloss.Style
	Card      lipgloss.Style
	CardTitle lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Muted     lipgloss.Style
	Toggle    lipgloss.Style
	Stamp     lipgloss.Style
	Pulse     lipgloss.Style
	Failed    lipgloss.Style
	Selected  lipgloss.Style
	Option    lipgloss.Style

	HelpBox   lipgloss.Style
	HelpTitle lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
}

// NewStyles builds the styles for mode.
func NewStyles(mode theme.Mode) Styles {
	p := theme.PaletteFor(mode)

	return Styles{
		Mode:    mode,
		Palette: p,

		Header: lipgloss.NewStyle().
			Foreground(p.TextPrimary).
			Background(p.Surface).
			Bold(true).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Padding(0, 1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1).
			MarginRight(1),
		CardTitle: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(p.TextSecondary),
		Value: lipgloss.NewStyle().
			Foreground(p.TextPrimary).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(p.TextMuted),
		Toggle: lipgloss.NewStyle().
			Foreground(p.TextPrimary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.AccentDim).
			Padding(0, 1),
		Stamp: lipgloss.NewStyle().
			Foreground(p.TextSecondary),
		Pulse: lipgloss.NewStyle().
			Foreground(p.Pulse).
			Bold(true),
		Failed: lipgloss.NewStyle().
			Foreground(p.Critical).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Foreground(p.Background).
			Background(p.Accent).
			Bold(true).
			Padding(0, 1),
		Option: lipgloss.NewStyle().
			Foreground(p.TextSecondary).
			Padding(0, 1),

		HelpBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Background(p.Surface).
			Padding(1, 2),
		HelpTitle: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true).
			MarginBottom(1),
		HelpKey: lipgloss.NewStyle().
			Foreground(p.TextPrimary).
			Bold(true).
			Width(14),
		HelpDesc: lipgloss.NewStyle().
			Foreground(p.TextSecondary),
	}
}

// MetricColor returns the severity colour for a percentage:
// healthy below 70%, warning up to 90%, critical above.
func (s Styles) MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return s.Palette.Critical
	case percent >= WarningThreshold:
		return s.Palette.Warning
	default:
		return s.Palette.Healthy
	}
}

// ProgressBar renders a bar of width cells filled to percent.
func (s Styles) ProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return lipgloss.NewStyle().Foreground(s.MetricColor(percent)).Render(bar)
}

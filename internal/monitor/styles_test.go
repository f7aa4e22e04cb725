package monitor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysdash/internal/theme"
	"github.com/stretchr/testify/assert"
)

func TestStyles_MetricColor(t *testing.T) {
	s := NewStyles(theme.Dark)

	tests := []struct {
		name    string
		percent float64
		expect  lipgloss.Color
	}{
		{"healthy low", 0.0, s.Palette.Healthy},
		{"healthy near threshold", 69.9, s.Palette.Healthy},
		{"warning at threshold", 70.0, s.Palette.Warning},
		{"warning near critical", 89.9, s.Palette.Warning},
		{"critical at threshold", 90.0, s.Palette.Critical},
		{"critical max", 100.0, s.Palette.Critical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, s.MetricColor(tt.percent))
		})
	}
}

func TestNewStyles_FollowsTheme(t *testing.T) {
	dark := NewStyles(theme.Dark)
	light := NewStyles(theme.Light)

	assert.Equal(t, theme.Dark, dark.Mode)
	assert.Equal(t, theme.PaletteFor(theme.Dark), dark.Palette)
	assert.Equal(t, theme.PaletteFor(theme.Light), light.Palette)
	assert.NotEqual(t, dark.Palette.Healthy, light.Palette.Healthy)
}

func TestStyles_ProgressBar(t *testing.T) {
	s := NewStyles(theme.Light)

	tests := []struct {
		name    string
		width   int
		percent float64
		filled  int
	}{
		{"empty", 10, 0, 0},
		{"half", 10, 50, 5},
		{"full", 10, 100, 10},
		{"over 100 clamps", 10, 150, 10},
		{"negative clamps", 10, -5, 0},
		{"zero width becomes one", 0, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := s.ProgressBar(tt.width, tt.percent)
			width := tt.width
			if width < 1 {
				width = 1
			}
			assert.Equal(t, width, lipgloss.Width(bar))
			assert.Equal(t, tt.filled, strings.Count(bar, "▰"))
		})
	}
}

package theme

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colours a mode renders with.
type Palette struct {
	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color

	Accent    lipgloss.Color
	AccentDim lipgloss.Color
	Pulse     lipgloss.Color

	Healthy  lipgloss.Color
	Warning  lipgloss.Color
	Critical lipgloss.Color

	// Chart styling
	Grid        lipgloss.Color
	Tick        lipgloss.Color
	TooltipBg   lipgloss.Color
	TooltipText lipgloss.Color

	// Series colours, in dataset order
	SeriesCPU  lipgloss.Color
	SeriesRAM  lipgloss.Color
	SeriesDisk lipgloss.Color
	SeriesUp   lipgloss.Color
	SeriesDown lipgloss.Color
}

var darkPalette = Palette{
	Background: lipgloss.Color("#0A0A0F"),
	Surface:    lipgloss.Color("#12121A"),
	Border:     lipgloss.Color("#2A2A4A"),

	TextPrimary:   lipgloss.Color("#FFFFFF"),
	TextSecondary: lipgloss.Color("#B4B4D0"),
	TextMuted:     lipgloss.Color("#6B6B8D"),

	Accent:    lipgloss.Color("#FF2E97"),
	AccentDim: lipgloss.Color("#BF40FF"),
	Pulse:     lipgloss.Color("#39FF14"),

	Healthy:  lipgloss.Color("#39FF14"),
	Warning:  lipgloss.Color("#FFAA00"),
	Critical: lipgloss.Color("#FF0055"),

	Grid:        lipgloss.Color("#2A2A3A"),
	Tick:        lipgloss.Color("#E0E0E0"),
	TooltipBg:   lipgloss.Color("#1E1E2E"),
	TooltipText: lipgloss.Color("#FFFFFF"),

	SeriesCPU:  lipgloss.Color("#00FFFF"),
	SeriesRAM:  lipgloss.Color("#FF2E97"),
	SeriesDisk: lipgloss.Color("#FFAA00"),
	SeriesUp:   lipgloss.Color("#39FF14"),
	SeriesDown: lipgloss.Color("#BF40FF"),
}

var lightPalette = Palette{
	Background: lipgloss.Color("#FAFAFC"),
	Surface:    lipgloss.Color("#FFFFFF"),
	Border:     lipgloss.Color("#C8C8D8"),

	TextPrimary:   lipgloss.Color("#1A1A2E"),
	TextSecondary: lipgloss.Color("#4A4A68"),
	TextMuted:     lipgloss.Color("#8A8AA0"),

	Accent:    lipgloss.Color("#C2185B"),
	AccentDim: lipgloss.Color("#7B1FA2"),
	Pulse:     lipgloss.Color("#2E7D32"),

	Healthy:  lipgloss.Color("#2E7D32"),
	Warning:  lipgloss.Color("#EF6C00"),
	Critical: lipgloss.Color("#C62828"),

	Grid:        lipgloss.Color("#E0E0E8"),
	Tick:        lipgloss.Color("#666666"),
	TooltipBg:   lipgloss.Color("#333344"),
	TooltipText: lipgloss.Color("#FFFFFF"),

	SeriesCPU:  lipgloss.Color("#0277BD"),
	SeriesRAM:  lipgloss.Color("#C2185B"),
	SeriesDisk: lipgloss.Color("#EF6C00"),
	SeriesUp:   lipgloss.Color("#2E7D32"),
	SeriesDown: lipgloss.Color("#7B1FA2"),
}

// PaletteFor returns the palette for m.
func PaletteFor(m Mode) Palette {
	if m == Dark {
		return darkPalette
	}
	return lightPalette
}

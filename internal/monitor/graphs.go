package monitor

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysdash/internal/stats"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '\u2800'

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps [row][col] within a cell to the pattern bit.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// LineChart is the terminal chart implementation: each series is drawn as
// a braille line, resampled to the plot width with linear interpolation.
type LineChart struct {
	cfg       ChartConfig
	destroyed bool
}

// NewLineChart constructs a chart. It satisfies ChartFactory.
func NewLineChart(cfg ChartConfig) Chart {
	return &LineChart{cfg: cfg}
}

// Config returns the chart's configuration.
func (c *LineChart) Config() ChartConfig {
	return c.cfg
}

// Destroy releases the chart's data. A destroyed chart renders nothing.
func (c *LineChart) Destroy() {
	c.destroyed = true
	c.cfg.Series = nil
	c.cfg.Labels = nil
}

// Destroyed reports whether Destroy has been called.
func (c *LineChart) Destroyed() bool {
	return c.destroyed
}

// Bounds returns the vertical axis range.
func (c *LineChart) Bounds() (lo, hi float64) {
	if c.cfg.FixedScale {
		lo, hi = c.cfg.Min, c.cfg.Max
	} else {
		for _, s := range c.cfg.Series {
			for _, v := range s.Data {
				if v > hi {
					hi = v
				}
			}
		}
		hi = niceCeil(hi)
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// Tooltip describes every series at index i, e.g.
// "12:00:05  CPU 42%  RAM 60%  Disk 77%".
func (c *LineChart) Tooltip(i int) string {
	if c.destroyed || i < 0 || i >= len(c.cfg.Labels) {
		return ""
	}

	parts := []string{c.cfg.Labels[i]}
	for _, s := range c.cfg.Series {
		if i >= len(s.Data) {
			continue
		}
		parts = append(parts, s.Name+" "+formatWithUnit(s.Data[i], c.cfg.Unit))
	}
	text := strings.Join(parts, "  ")

	return lipgloss.NewStyle().
		Foreground(c.cfg.Style.TooltipText).
		Background(c.cfg.Style.TooltipBg).
		Padding(0, 1).
		Render(text)
}

// Render draws the legend, the plot with a y-axis, and the first and last
// x labels. cursor marks the hovered index with a vertical rule.
func (c *LineChart) Render(width, height, cursor int) string {
	if c.destroyed || width <= 0 || height <= 0 {
		return ""
	}

	tickStyle := lipgloss.NewStyle().Foreground(c.cfg.Style.Tick)
	gridStyle := lipgloss.NewStyle().Foreground(c.cfg.Style.Grid)

	lo, hi := c.Bounds()
	plotH := height - 2
	if plotH < 1 {
		plotH = 1
	}

	tickRows := axisTickRows(plotH)
	tickLabels := make(map[int]string, len(tickRows))
	axisW := 0
	for _, row := range tickRows {
		label := formatAxis(valueAtRow(row, plotH, lo, hi), c.cfg.Unit)
		tickLabels[row] = label
		if w := lipgloss.Width(label); w > axisW {
			axisW = w
		}
	}
	axisW++ // gap between labels and plot

	plotW := width - axisW
	if plotW < 1 {
		plotW = 1
	}

	cells, owner := c.plot(plotW, plotH, lo, hi)
	cursorCol := c.cursorColumn(cursor, plotW)

	var lines []string
	lines = append(lines, c.legend())

	for row := 0; row < plotH; row++ {
		var b strings.Builder
		label := tickLabels[row]
		b.WriteString(tickStyle.Render(strings.Repeat(" ", axisW-1-lipgloss.Width(label)) + label))
		b.WriteString(" ")

		_, isGridRow := tickLabels[row]
		for col := 0; col < plotW; col++ {
			switch {
			case cells[row][col] != brailleBase:
				style := lipgloss.NewStyle().Foreground(c.cfg.Series[owner[row][col]].Color)
				b.WriteString(style.Render(string(cells[row][col])))
			case col == cursorCol:
				b.WriteString(tickStyle.Render("│"))
			case isGridRow:
				b.WriteString(gridStyle.Render("┈"))
			default:
				b.WriteRune(' ')
			}
		}
		lines = append(lines, b.String())
	}

	if height >= 2 {
		lines = append(lines, strings.Repeat(" ", axisW)+tickStyle.Render(c.xAxis(plotW)))
	}
	return strings.Join(lines, "\n")
}

// plot rasterises every series into braille cells. owner records which
// series last drew in each cell, for colouring.
func (c *LineChart) plot(plotW, plotH int, lo, hi float64) ([][]rune, [][]int) {
	cells := make([][]rune, plotH)
	owner := make([][]int, plotH)
	for i := range cells {
		cells[i] = make([]rune, plotW)
		owner[i] = make([]int, plotW)
		for j := range cells[i] {
			cells[i][j] = brailleBase
		}
	}

	totalDots := plotH * 4
	points := plotW * 2

	for k, s := range c.cfg.Series {
		if len(s.Data) == 0 {
			continue
		}
		data := s.Data
		if c.cfg.Smooth || len(data) > points {
			data = resampleData(data, points)
		}

		prev := -1
		for x, v := range data {
			if x >= points {
				break
			}
			y := clampInt(int(math.Round(normalizeValue(v, lo, hi)*float64(totalDots-1))), totalDots-1)
			from, to := y, y
			if prev >= 0 {
				from, to = minInt(prev, y), maxInt(prev, y)
			}
			for dot := from; dot <= to; dot++ {
				row := plotH - 1 - dot/4
				subRow := 3 - dot%4
				col := x / 2
				cells[row][col] |= rune(1) << brailleDots[subRow][x%2]
				owner[row][col] = k
			}
			prev = y
		}
	}
	return cells, owner
}

func (c *LineChart) cursorColumn(cursor, plotW int) int {
	n := len(c.cfg.Labels)
	if cursor < 0 || cursor >= n {
		return -1
	}
	if n == 1 {
		return 0
	}
	return int(math.Round(float64(cursor) * float64(plotW-1) / float64(n-1)))
}

func (c *LineChart) legend() string {
	var parts []string
	for _, s := range c.cfg.Series {
		parts = append(parts, lipgloss.NewStyle().Foreground(s.Color).Render("━ "+s.Name))
	}
	return strings.Join(parts, "  ")
}

func (c *LineChart) xAxis(plotW int) string {
	n := len(c.cfg.Labels)
	if n == 0 {
		return ""
	}
	first, last := c.cfg.Labels[0], c.cfg.Labels[n-1]
	if n == 1 || lipgloss.Width(first)+lipgloss.Width(last)+1 > plotW {
		return first
	}
	gap := plotW - lipgloss.Width(first) - lipgloss.Width(last)
	return first + strings.Repeat(" ", gap) + last
}

// axisTickRows picks up to five evenly spaced rows, top and bottom included.
func axisTickRows(plotH int) []int {
	if plotH <= 1 {
		return []int{0}
	}
	n := 5
	if plotH < n {
		n = plotH
	}
	rows := make([]int, 0, n)
	seen := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		row := int(math.Round(float64(i) * float64(plotH-1) / float64(n-1)))
		if !seen[row] {
			seen[row] = true
			rows = append(rows, row)
		}
	}
	return rows
}

func valueAtRow(row, plotH int, lo, hi float64) float64 {
	if plotH <= 1 {
		return hi
	}
	return hi - float64(row)/float64(plotH-1)*(hi-lo)
}

func formatAxis(v float64, unit string) string {
	var s string
	if math.Abs(v) >= 10 || v == math.Trunc(v) {
		s = strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	} else {
		s = strconv.FormatFloat(v, 'f', 1, 64)
	}
	if unit == PercentUnit {
		return s + "%"
	}
	return s
}

func formatWithUnit(v float64, unit string) string {
	if unit == PercentUnit {
		return stats.FormatPercent(v)
	}
	return stats.FormatNumber(v) + " " + unit
}

// niceCeil rounds v up to 1, 2, or 5 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*exp {
			return m * exp
		}
	}
	return 10 * exp
}

// RenderMiniSparkline renders a single-row sparkline on a fixed 0-100 scale.
func RenderMiniSparkline(data []float64, width int, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	resampled := data
	if len(data) > width {
		resampled = resampleData(data, width)
	}

	var result strings.Builder
	// Right-align short histories so the newest value is always at the edge.
	result.WriteString(strings.Repeat(" ", width-len(resampled)))
	for _, val := range resampled {
		normalized := normalizeValue(val, 0, 100)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		result.WriteRune(sparklineBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Render(result.String())
}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// resampleData resamples data to the target size.
// When downsampling (compressing), uses max-based sampling to preserve peaks/spikes.
// When upsampling (expanding), uses linear interpolation.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}

	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			if start < 0 {
				start = 0
			}

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > maxVal {
					maxVal = data[j]
				}
			}
			result[i] = maxVal
		}
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}

	return result
}

package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/page"
)

// Card sizing for the live page.
const (
	defaultCardWidth = 30
	minCardWidth     = 22
	sparklineWidth   = 20
	chartHeight      = 12
)

// placeholder is shown for elements the poller hasn't written yet.
const placeholder = "--"

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.doc.Path() == page.RouteHistory {
		b.WriteString(m.renderHistoryPage())
	} else {
		b.WriteString(m.renderLivePage())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title bar with the endpoint, route and theme toggle.
func (m Model) renderHeader() string {
	s := m.styles

	title := s.Title.Render("sysdash")
	info := s.Label.Render(fmt.Sprintf(" | %s | %s", m.endpointText(), routeName(m.doc.Path())))

	left := title + info
	toggle := ""
	if el, ok := m.doc.Lookup(page.IDThemeToggle); ok && el.Label != "" {
		toggle = s.Muted.Render("[t] ") + el.Label
	}

	if m.width == 0 {
		return s.Header.Render(left + "  " + toggle)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(toggle) - 2
	if gap < 2 {
		gap = 2
	}
	return s.Header.Render(left + strings.Repeat(" ", gap) + toggle)
}

func (m Model) endpointText() string {
	if m.endpoint == "" {
		return "no endpoint"
	}
	return m.endpoint
}

func routeName(path string) string {
	if path == page.RouteHistory {
		return "history"
	}
	return "live"
}

// renderLivePage renders the metric cards and info lines.
func (m Model) renderLivePage() string {
	cardWidth := m.calculateCardWidth()

	cards := []string{
		m.renderMetricCard("CPU", page.IDCPUVal, page.IDCPUBar, m.history.CPU(sparklineWidth), cardWidth),
		m.renderMemoryCard(cardWidth),
		m.renderMetricCard("Disk", page.IDDiskVal, page.IDDiskBar, m.history.Disk(sparklineWidth), cardWidth),
	}

	var b strings.Builder
	b.WriteString(m.layoutCards(cards, cardWidth))
	b.WriteString("\n")

	if info := m.renderInfoLines(); info != "" {
		b.WriteString(info)
		b.WriteString("\n")
	}

	b.WriteString(m.renderLastUpdate())
	b.WriteString("\n")
	return b.String()
}

// renderMetricCard renders a percentage card: value, bar and sparkline.
func (m Model) renderMetricCard(title, valID, barID string, trend []float64, width int) string {
	s := m.styles
	inner := width - 4

	percent := m.barPercent(barID)
	lines := []string{
		s.CardTitle.Render(title),
		lipgloss.NewStyle().Foreground(s.MetricColor(percent)).Bold(true).Render(m.text(valID)),
		s.ProgressBar(inner, percent),
		RenderMiniSparkline(trend, minInt(inner, sparklineWidth), s.MetricColor(percent)),
	}

	return s.Card.Width(width).Render(strings.Join(lines, "\n"))
}

// renderMemoryCard renders the memory card, which also shows used and
// cached amounts. Without a mem-bar element the bar follows mem-val.
func (m Model) renderMemoryCard(width int) string {
	s := m.styles
	inner := width - 4

	barID := page.IDMemBar
	if !m.doc.Has(barID) {
		barID = ""
	}
	percent := m.barPercent(barID)
	if barID == "" {
		percent = parsePercent(m.text(page.IDMemVal))
	}

	lines := []string{
		s.CardTitle.Render("Memory"),
		lipgloss.NewStyle().Foreground(s.MetricColor(percent)).Bold(true).Render(m.text(page.IDMemVal)),
		s.ProgressBar(inner, percent),
		s.Label.Render("Used: ") + s.Value.Render(m.text(page.IDMemUsed)),
	}
	if el, ok := m.doc.Lookup(page.IDMemCached); ok && el.Text != "" {
		lines = append(lines, s.Label.Render("Cached: ")+s.Value.Render(el.Text))
	}

	return s.Card.Width(width).Render(strings.Join(lines, "\n"))
}

// renderInfoLines renders the optional load/OS/network passthroughs.
func (m Model) renderInfoLines() string {
	s := m.styles

	rows := []struct {
		label string
		id    string
	}{
		{"Load", page.IDLoadVal},
		{"OS", page.IDOSInfo},
		{"Net", page.IDNetVal},
	}

	var lines []string
	for _, row := range rows {
		el, ok := m.doc.Lookup(row.id)
		if !ok || el.Text == "" {
			continue
		}
		label := s.Label.Width(6).Render(row.label)
		lines = append(lines, " "+label+s.Value.Render(el.Text))
	}
	return strings.Join(lines, "\n")
}

// renderLastUpdate renders the last-update stamp, pulsed right after a
// successful poll and flagged after a failed one.
func (m Model) renderLastUpdate() string {
	s := m.styles

	el, ok := m.doc.Lookup(page.IDLastUpdate)
	if !ok {
		return ""
	}

	label := s.Label.Render(" Last update: ")
	switch {
	case el.Text == "":
		return label + s.Muted.Render("waiting")
	case el.Text == FailedText:
		return label + s.Failed.Render(el.Text)
	case el.Highlighted(m.now()):
		return label + s.Pulse.Render(el.Text)
	default:
		return label + s.Stamp.Render(el.Text)
	}
}

// renderHistoryPage renders the summary, limit selector and charts.
func (m Model) renderHistoryPage() string {
	s := m.styles
	var b strings.Builder

	summary := fmt.Sprintf(" CPU %s  RAM %s (%s)  Disk %s",
		m.text(page.IDCPUVal), m.text(page.IDMemVal), m.text(page.IDMemUsed), m.text(page.IDDiskVal))
	b.WriteString(s.Value.Render(summary))
	if stamp := m.renderLastUpdate(); stamp != "" {
		b.WriteString("  ")
		b.WriteString(stamp)
	}
	b.WriteString("\n")

	b.WriteString(m.renderLimitSelect())
	b.WriteString("\n")

	b.WriteString(m.renderChartStatus())
	b.WriteString("\n")

	if m.viewportReady {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.renderCharts())
	}
	b.WriteString("\n")
	return b.String()
}

// renderLimitSelect renders the history window options with the selected
// one highlighted.
func (m Model) renderLimitSelect() string {
	s := m.styles
	el, ok := m.doc.Lookup(page.IDLimitSelect)
	if !ok {
		return ""
	}

	parts := []string{s.Label.Render(" Samples:")}
	for i, opt := range el.Options {
		if i == el.Selected {
			parts = append(parts, s.Selected.Render(opt))
		} else {
			parts = append(parts, s.Option.Render(opt))
		}
	}
	return strings.Join(parts, " ")
}

// renderChartStatus renders one line: the spinner while loading, the last
// load error, or the tooltip at the cursor.
func (m Model) renderChartStatus() string {
	s := m.styles

	switch {
	case m.charts.Pending():
		return " " + m.spinner.View() + s.Muted.Render(" Loading history...")
	case m.charts.LastError() != nil:
		return s.Failed.Render(" Error loading history: " + errors.Short(m.charts.LastError()))
	case m.charts.Points() == 0:
		return s.Muted.Render(" No data yet")
	case m.cursor < 0:
		return s.Muted.Render(" ←/→ to inspect a point")
	}

	var tips []string
	for _, slot := range Slots {
		if c := m.charts.Chart(slot); c != nil {
			tips = append(tips, c.Tooltip(m.cursor))
		}
	}
	return " " + strings.Join(tips, s.Muted.Render("  |  "))
}

// renderCharts renders both chart slots stacked vertically.
func (m Model) renderCharts() string {
	s := m.styles
	width := m.width - 2
	if width < 20 {
		width = 60
	}

	titles := map[Slot]string{
		SlotUsage:   "Resource Usage (%)",
		SlotNetwork: "Network (KB/s)",
	}

	var sections []string
	for _, slot := range Slots {
		c := m.charts.Chart(slot)
		if c == nil {
			continue
		}
		sections = append(sections,
			s.CardTitle.Render(" "+titles[slot]),
			c.Render(width, chartHeight, m.cursor),
		)
	}
	return strings.Join(sections, "\n")
}

// calculateCardWidth determines the card width based on terminal width.
func (m Model) calculateCardWidth() int {
	if m.width == 0 {
		return defaultCardWidth
	}

	// Three cards per row when they fit
	if w := m.width/3 - 2; w >= minCardWidth {
		return minInt(w, 40)
	}
	return maxInt(m.width-4, minCardWidth)
}

// layoutCards arranges cards in rows based on terminal width.
func (m Model) layoutCards(cards []string, cardWidth int) string {
	if len(cards) == 0 {
		return ""
	}

	cardsPerRow := len(cards)
	if m.width > 0 {
		// Account for card margins and borders
		cardsPerRow = m.width / (cardWidth + 3)
		if cardsPerRow < 1 {
			cardsPerRow = 1
		}
	}

	var rows []string
	for i := 0; i < len(cards); i += cardsPerRow {
		end := minInt(i+cardsPerRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"r refresh",
		"t theme",
		"tab page",
	}
	if m.doc.Path() == page.RouteHistory {
		hints = append(hints, "[ ] window", "←→ inspect")
	}
	hints = append(hints, "? help")

	return m.styles.Footer.Render(strings.Join(hints, " | "))
}

// text returns an element's text, or the placeholder when it's missing or empty.
func (m Model) text(id string) string {
	el, ok := m.doc.Lookup(id)
	if !ok || el.Text == "" {
		return placeholder
	}
	return el.Text
}

func (m Model) barPercent(id string) float64 {
	if id == "" {
		return 0
	}
	el, ok := m.doc.Lookup(id)
	if !ok {
		return 0
	}
	return el.WidthPercent()
}

// parsePercent reads "42%" style text into a number, 0 when it isn't one.
func parsePercent(s string) float64 {
	el := page.Element{Width: s}
	return el.WidthPercent()
}

package monitor

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/page"
	"github.com/rileyhilliard/sysdash/internal/prefs"
	"github.com/rileyhilliard/sysdash/internal/theme"
)

// Options configures the dashboard model.
type Options struct {
	Fetcher  Fetcher
	Store    prefs.Store
	Route    string
	Endpoint string

	Interval time.Duration
	Timeout  time.Duration

	HistoryLimit  int
	HistoryLimits []int

	Logger       logger.Logger
	Metrics      *Metrics
	DetectDark   func() bool
	ChartFactory ChartFactory
	Now          func() time.Time
}

// ConfigChangedMsg tells a running dashboard that its config file changed.
// Zero fields are left alone.
type ConfigChangedMsg struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Layout constants for the history page.
const (
	historyChromeHeight = 7
	minChartHeight      = 8
)

// Model is the Bubble Tea model for the dashboard. It owns the page
// document; every component writes to the document and View renders it.
type Model struct {
	doc     *page.Document
	theme   *theme.Controller
	poller  *Poller
	charts  *ChartRenderer
	history *History
	styles  Styles
	log     logger.Logger
	now     func() time.Time

	endpoint     string
	limits       []int
	defaultLimit int

	spinner       spinner.Model
	viewport      viewport.Model
	viewportReady bool

	width    int
	height   int
	cursor   int
	showHelp bool
	quitting bool
}

// NewModel builds the dashboard and applies the stored theme before the
// first frame is drawn.
func NewModel(opts Options) Model {
	route := opts.Route
	if route != page.RouteHistory {
		route = page.RouteLive
	}
	store := opts.Store
	if store == nil {
		store = prefs.NewMemoryStore()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := logger.OrDefault(opts.Logger)

	limits := opts.HistoryLimits
	if len(limits) == 0 {
		limits = DefaultHistoryLimits
	}
	defaultLimit := opts.HistoryLimit
	if defaultLimit <= 0 {
		defaultLimit = DefaultHistoryLimit
	}

	history := NewHistory(DefaultHistorySize)
	doc := page.ForRoute(route)
	mode := theme.Bootstrap(doc, store, opts.DetectDark)
	styles := NewStyles(mode)

	m := Model{
		doc:   doc,
		theme: theme.NewController(doc, store, log),
		poller: NewPoller(opts.Fetcher, PollerOptions{
			Interval: opts.Interval,
			Timeout:  opts.Timeout,
			Logger:   log,
			Metrics:  opts.Metrics,
			History:  history,
			Now:      now,
		}),
		charts: NewChartRenderer(opts.Fetcher, ChartRendererOptions{
			Timeout: opts.Timeout,
			Factory: opts.ChartFactory,
			Logger:  log,
			Metrics: opts.Metrics,
		}),
		history:      history,
		styles:       styles,
		log:          log,
		now:          now,
		endpoint:     opts.Endpoint,
		limits:       limits,
		defaultLimit: defaultLimit,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Palette.Accent)),
		),
		cursor: -1,
	}
	m.setupLimitSelect()
	return m
}

// setupLimitSelect fills the limit selector's options and selects the
// configured default.
func (m *Model) setupLimitSelect() {
	el, ok := m.doc.Lookup(page.IDLimitSelect)
	if !ok {
		return
	}
	el.Options = make([]string, len(m.limits))
	for i, n := range m.limits {
		el.Options[i] = strconv.Itoa(n)
	}
	if !el.SelectValue(strconv.Itoa(m.defaultLimit)) {
		el.Selected = 0
	}
}

// Init syncs the theme toggle, starts the poller, and loads charts when
// the page is the history page.
func (m Model) Init() tea.Cmd {
	m.theme.Initialize()
	return tea.Batch(
		m.poller.Start(),
		m.charts.Load(m.doc),
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}
		if m.viewportReady && m.doc.Path() == page.RouteHistory {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - historyChromeHeight
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.viewportReady {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewportReady = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case pollTickMsg:
		return m, m.poller.HandleTick(msg)

	case snapshotMsg:
		return m, m.poller.Apply(m.doc, msg)

	case pulseDoneMsg:
		// Nothing to change; the redraw drops the highlight.
		return m, nil

	case chartsMsg:
		_ = m.charts.Apply(m.doc, msg)
		m.clampCursor()
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ConfigChangedMsg:
		m.poller.SetTimeout(msg.Timeout)
		return m, m.poller.SetInterval(msg.Interval)
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// Navigate switches to route, the way following a link reloads the page:
// charts are torn down, the new layout is loaded, and the new page gets an
// immediate poll.
func (m *Model) Navigate(route string) tea.Cmd {
	if route == m.doc.Path() {
		return nil
	}

	m.charts.Reset()
	m.doc.Load(route)
	m.setupLimitSelect()
	m.theme.Initialize()
	m.cursor = -1
	m.refreshViewport()

	return tea.Batch(m.poller.Cycle(), m.charts.Load(m.doc))
}

// ToggleTheme flips the theme and rebuilds the styles. Existing charts keep
// the colours they were built with until the next load.
func (m *Model) ToggleTheme() {
	mode := m.theme.Toggle()
	m.styles = NewStyles(mode)
	m.spinner.Style = lipgloss.NewStyle().Foreground(m.styles.Palette.Accent)
	m.refreshViewport()
}

// moveCursor shifts the hover cursor by delta across the chart indices.
func (m *Model) moveCursor(delta int) {
	n := m.charts.Points()
	if n == 0 {
		m.cursor = -1
		return
	}
	switch {
	case m.cursor < 0 && delta < 0:
		m.cursor = n - 1
	case m.cursor < 0:
		m.cursor = 0
	default:
		m.cursor += delta
	}
	m.clampCursor()
	m.refreshViewport()
}

func (m *Model) clampCursor() {
	n := m.charts.Points()
	if n == 0 {
		m.cursor = -1
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < -1 {
		m.cursor = -1
	}
}

func (m *Model) refreshViewport() {
	if !m.viewportReady {
		return
	}
	m.viewport.SetContent(m.renderCharts())
}

// Document returns the page document.
func (m Model) Document() *page.Document {
	return m.doc
}

// Charts returns the chart renderer.
func (m Model) Charts() *ChartRenderer {
	return m.charts
}

// Poller returns the live poller.
func (m Model) Poller() *Poller {
	return m.poller
}

// Cursor returns the hovered chart index, or -1.
func (m Model) Cursor() int {
	return m.cursor
}

// Route returns the current page path.
func (m Model) Route() string {
	return m.doc.Path()
}

package monitor

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/page"
	"github.com/rileyhilliard/sysdash/internal/prefs"
	"github.com/rileyhilliard/sysdash/internal/stats"
	"github.com/rileyhilliard/sysdash/internal/stats/statstest"
	"github.com/rileyhilliard/sysdash/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type modelFixture struct {
	model  Model
	fetch  *fakeFetcher
	store  *prefs.MemoryStore
	events *chartEvents
}

func newFixture(t *testing.T, route string) *modelFixture {
	t.Helper()
	f := &modelFixture{
		fetch:  &fakeFetcher{snap: sampleSnapshot(), samples: statstest.Samples(8)},
		store:  prefs.NewMemoryStore(),
		events: &chartEvents{},
	}
	f.model = NewModel(Options{
		Fetcher:      f.fetch,
		Store:        f.store,
		Route:        route,
		Endpoint:     "http://localhost:5000",
		Logger:       logger.Noop(),
		ChartFactory: f.events.factory,
		Now:          func() time.Time { return fixedNow },
	})
	return f
}

// send delivers msg and returns the command it produced.
func (f *modelFixture) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := f.model.Update(msg)
	m, ok := next.(Model)
	require.True(t, ok)
	f.model = m
	return cmd
}

// deliver runs cmd and feeds every resulting message back into the model.
// cmd must not contain ticks.
func (f *modelFixture) deliver(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	for _, msg := range run(cmd) {
		f.send(t, msg)
	}
}

// pollOnce runs one poll cycle through Update.
func (f *modelFixture) pollOnce(t *testing.T) {
	t.Helper()
	f.deliver(t, f.model.Poller().Cycle())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel_Defaults(t *testing.T) {
	f := newFixture(t, "")
	m := f.model

	assert.Equal(t, page.RouteLive, m.Route())
	assert.Equal(t, -1, m.Cursor())
	assert.Equal(t, DefaultInterval, m.Poller().Interval())
	assert.Equal(t, theme.Light, theme.Current(m.Document()))
}

func TestNewModel_UnknownRouteFallsBackToLive(t *testing.T) {
	f := newFixture(t, "/settings")
	assert.Equal(t, page.RouteLive, f.model.Route())
}

func TestNewModel_HistoryLimitSelector(t *testing.T) {
	f := newFixture(t, page.RouteHistory)

	el, ok := f.model.Document().Lookup(page.IDLimitSelect)
	require.True(t, ok)
	assert.Equal(t, []string{"30", "60", "120", "300"}, el.Options)
	assert.Equal(t, "60", el.Value())
}

func TestNewModel_CustomHistoryLimit(t *testing.T) {
	m := NewModel(Options{
		Fetcher:       &fakeFetcher{},
		Route:         page.RouteHistory,
		HistoryLimit:  15,
		HistoryLimits: []int{15, 45},
		Logger:        logger.Noop(),
	})

	el, _ := m.Document().Lookup(page.IDLimitSelect)
	assert.Equal(t, []string{"15", "45"}, el.Options)
	assert.Equal(t, 15, SelectedLimit(m.Document()))
}

func TestNewModel_StoredDarkTheme(t *testing.T) {
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Set(theme.PreferenceKey, "dark", theme.PreferenceOptions()))

	m := NewModel(Options{Fetcher: &fakeFetcher{}, Store: store, Logger: logger.Noop()})
	assert.Equal(t, theme.Dark, theme.Current(m.Document()))

	m.Init()
	el, _ := m.Document().Lookup(page.IDThemeToggle)
	assert.Equal(t, theme.LabelLight, el.Label)
}

func TestNewModel_DetectsDarkTerminal(t *testing.T) {
	m := NewModel(Options{
		Fetcher:    &fakeFetcher{},
		Logger:     logger.Noop(),
		DetectDark: func() bool { return true },
	})
	assert.Equal(t, theme.Dark, theme.Current(m.Document()))
}

func TestModel_InitOnHistoryLoadsCharts(t *testing.T) {
	f := newFixture(t, page.RouteHistory)

	var snaps, charts int
	for _, msg := range runWithin(f.model.Init(), 200*time.Millisecond) {
		switch msg.(type) {
		case snapshotMsg:
			snaps++
		case chartsMsg:
			charts++
		}
		f.send(t, msg)
	}

	assert.Equal(t, 1, snaps)
	assert.Equal(t, 1, charts)
	assert.Equal(t, 1, f.fetch.snapshotCalls)
	assert.Equal(t, 1, f.fetch.HistoryCalls())
	assert.Equal(t, 1, f.events.live(SlotUsage))
	assert.Equal(t, 1, f.events.live(SlotNetwork))
}

func TestModel_InitOnLiveSkipsCharts(t *testing.T) {
	f := newFixture(t, page.RouteLive)

	for _, msg := range runWithin(f.model.Init(), 200*time.Millisecond) {
		_, isCharts := msg.(chartsMsg)
		assert.False(t, isCharts)
	}
	assert.Equal(t, 1, f.fetch.snapshotCalls)
	assert.Equal(t, 0, f.fetch.HistoryCalls())
}

func TestModel_PollWritesDocument(t *testing.T) {
	f := newFixture(t, page.RouteLive)
	f.pollOnce(t)

	doc := f.model.Document()
	cpu, _ := doc.Lookup(page.IDCPUVal)
	assert.Equal(t, "42%", cpu.Text)
	bar, _ := doc.Lookup(page.IDCPUBar)
	assert.Equal(t, "42%", bar.Width)
	stamp, _ := doc.Lookup(page.IDLastUpdate)
	assert.Equal(t, "14:03:09", stamp.Text)
}

func TestModel_PollFailureShowsUpdateFailed(t *testing.T) {
	f := newFixture(t, page.RouteLive)
	f.fetch.snapErr = errors.New(errors.ErrTransport, "connection refused", "")

	assert.NotPanics(t, func() { f.pollOnce(t) })

	stamp, _ := f.model.Document().Lookup(page.IDLastUpdate)
	assert.Equal(t, FailedText, stamp.Text)
}

func TestModel_LiveRouteNeverRequestsHistory(t *testing.T) {
	srv := statstest.New()
	defer srv.Close()
	srv.SetSnapshot(*sampleSnapshot())

	client, err := stats.NewClient(srv.URL)
	require.NoError(t, err)

	m := NewModel(Options{Fetcher: client, Route: page.RouteLive, Logger: logger.Noop()})
	f := &modelFixture{model: m}

	assert.Nil(t, m.Charts().Load(m.Document()))
	f.deliver(t, f.send(t, key("r")))
	f.pollOnce(t)
	f.send(t, key("]"))
	f.send(t, key("left"))

	assert.Equal(t, 2, srv.Hits("/api/stats"))
	assert.Equal(t, 0, srv.Hits("/api/history"))
}

func TestModel_ToggleThemeKey(t *testing.T) {
	f := newFixture(t, page.RouteLive)
	f.model.Init()

	f.send(t, key("t"))
	assert.Equal(t, theme.Dark, theme.Current(f.model.Document()))
	v, _ := f.store.Get(theme.PreferenceKey)
	assert.Equal(t, "dark", v)
	assert.Equal(t, theme.Dark, f.model.styles.Mode)
	el, _ := f.model.Document().Lookup(page.IDThemeToggle)
	assert.Equal(t, theme.LabelLight, el.Label)

	f.send(t, key("t"))
	assert.Equal(t, theme.Light, theme.Current(f.model.Document()))
	v, _ = f.store.Get(theme.PreferenceKey)
	assert.Equal(t, "light", v)
}

func TestModel_SwitchRoute(t *testing.T) {
	f := newFixture(t, page.RouteLive)

	f.deliver(t, f.send(t, key("tab")))

	assert.Equal(t, page.RouteHistory, f.model.Route())
	assert.Equal(t, 1, f.fetch.HistoryCalls())
	assert.Equal(t, []int{60}, f.fetch.limits)
	assert.Equal(t, 8, f.model.Charts().Points())
	cpu, _ := f.model.Document().Lookup(page.IDCPUVal)
	assert.Equal(t, "42%", cpu.Text, "the history page polls too")

	f.deliver(t, f.send(t, key("tab")))

	assert.Equal(t, page.RouteLive, f.model.Route())
	assert.Nil(t, f.model.Charts().Chart(SlotUsage))
	assert.Equal(t, 0, f.events.live(SlotUsage))
	assert.Equal(t, 0, f.events.live(SlotNetwork))
	assert.Equal(t, 1, f.fetch.HistoryCalls())
}

func TestModel_SwitchRouteKeepsTheme(t *testing.T) {
	f := newFixture(t, page.RouteLive)
	f.model.Init()
	f.send(t, key("t"))

	f.deliver(t, f.send(t, key("tab")))

	assert.Equal(t, theme.Dark, theme.Current(f.model.Document()))
	el, _ := f.model.Document().Lookup(page.IDThemeToggle)
	assert.Equal(t, theme.LabelLight, el.Label)
	usage := f.model.Charts().Chart(SlotUsage)
	require.NotNil(t, usage)
	assert.Equal(t, StyleFor(theme.Dark), usage.Config().Style)
}

func TestModel_LimitKeysReloadCharts(t *testing.T) {
	f := newFixture(t, page.RouteHistory)
	f.deliver(t, f.model.Charts().Load(f.model.Document()))

	f.deliver(t, f.send(t, key("]")))
	assert.Equal(t, 120, SelectedLimit(f.model.Document()))

	f.deliver(t, f.send(t, key("[")))
	f.deliver(t, f.send(t, key("[")))
	assert.Equal(t, 30, SelectedLimit(f.model.Document()))

	assert.Nil(t, f.send(t, key("[")), "already at the shortest window")
	assert.Equal(t, []int{60, 120, 60, 30}, f.fetch.limits)
	assert.Equal(t, 1, f.events.live(SlotUsage))
}

func TestModel_CursorKeys(t *testing.T) {
	f := newFixture(t, page.RouteHistory)
	f.deliver(t, f.model.Charts().Load(f.model.Document()))
	require.Equal(t, 8, f.model.Charts().Points())

	f.send(t, key("left"))
	assert.Equal(t, 7, f.model.Cursor())
	f.send(t, key("right"))
	assert.Equal(t, 7, f.model.Cursor(), "clamped at the last point")
	f.send(t, key("left"))
	f.send(t, key("left"))
	assert.Equal(t, 5, f.model.Cursor())

	// A shorter reload pulls the cursor back in range
	f.fetch.samples = statstest.Samples(3)
	f.deliver(t, f.model.Charts().Load(f.model.Document()))
	assert.Equal(t, 2, f.model.Cursor())
}

func TestModel_ConfigChanged(t *testing.T) {
	f := newFixture(t, page.RouteLive)

	cmd := f.send(t, ConfigChangedMsg{Interval: 2 * time.Second, Timeout: time.Second})
	assert.NotNil(t, cmd)
	assert.Equal(t, 2*time.Second, f.model.Poller().Interval())

	assert.Nil(t, f.send(t, ConfigChangedMsg{}))
	assert.Equal(t, 2*time.Second, f.model.Poller().Interval())
}

func TestModel_HelpToggle(t *testing.T) {
	f := newFixture(t, page.RouteLive)

	f.send(t, key("?"))
	assert.True(t, f.model.showHelp)
	assert.Contains(t, f.model.View(), "Keyboard Shortcuts")

	f.send(t, key("esc"))
	assert.False(t, f.model.showHelp)
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			f := newFixture(t, page.RouteLive)
			cmd := f.send(t, key(k))
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.Empty(t, f.model.View())
		})
	}
}

func TestModel_ViewLivePage(t *testing.T) {
	f := newFixture(t, page.RouteLive)
	f.model.Init()
	f.send(t, tea.WindowSizeMsg{Width: 120, Height: 40})
	f.fetch.snap.NetUp = 2
	f.fetch.snap.NetDown = 4
	f.pollOnce(t)

	view := f.model.View()
	assert.Contains(t, view, "sysdash")
	assert.Contains(t, view, "http://localhost:5000")
	assert.Contains(t, view, "42%")
	assert.Contains(t, view, "60%")
	assert.Contains(t, view, "3.2GB")
	assert.Contains(t, view, "77%")
	assert.Contains(t, view, "↑ 2 KB/s ↓ 4 KB/s")
	assert.Contains(t, view, "14:03:09")
	assert.Contains(t, view, theme.LabelDark)
}

func TestModel_ViewBeforeFirstPoll(t *testing.T) {
	f := newFixture(t, page.RouteLive)
	view := f.model.View()
	assert.Contains(t, view, placeholder)
	assert.Contains(t, view, "waiting")
}

func TestModel_ViewFailedUpdate(t *testing.T) {
	f := newFixture(t, page.RouteLive)
	f.fetch.snapErr = errors.New(errors.ErrStatus, "Stats server returned 500", "")
	f.pollOnce(t)

	assert.Contains(t, f.model.View(), "Update Failed")
}

func TestModel_ViewHistoryPage(t *testing.T) {
	f := newFixture(t, page.RouteHistory)
	f.send(t, tea.WindowSizeMsg{Width: 100, Height: 50})

	assert.Contains(t, f.model.View(), "No data yet")

	f.deliver(t, f.model.Charts().Load(f.model.Document()))
	view := f.model.View()
	assert.Contains(t, view, "Samples:")
	assert.Contains(t, view, "chart:usageChart")
	assert.Contains(t, view, "chart:networkChart")

	f.send(t, key("left"))
	assert.Contains(t, f.model.View(), "tip:usageChart")
}

func TestModel_ViewHistoryLoadError(t *testing.T) {
	f := newFixture(t, page.RouteHistory)
	f.fetch.histErr = errors.New(errors.ErrTransport, "Couldn't reach the stats server", "")

	f.deliver(t, f.model.Charts().Load(f.model.Document()))

	assert.Contains(t, f.model.View(), "Couldn't reach the stats server")
}

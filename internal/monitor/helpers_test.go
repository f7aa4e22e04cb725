package monitor

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sysdash/internal/stats"
)

// fakeFetcher is a scripted Fetcher.
type fakeFetcher struct {
	mu sync.Mutex

	snap    *stats.Snapshot
	snapErr error
	samples []stats.HistorySample
	histErr error

	snapshotCalls int
	historyCalls  int
	limits        []int
}

func (f *fakeFetcher) Snapshot(ctx context.Context) (*stats.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshotCalls++
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	if f.snap == nil {
		return nil, nil
	}
	s := *f.snap
	return &s, nil
}

func (f *fakeFetcher) History(ctx context.Context, limit int) ([]stats.HistorySample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls++
	f.limits = append(f.limits, limit)
	if f.histErr != nil {
		return nil, f.histErr
	}
	if limit < len(f.samples) {
		return f.samples[len(f.samples)-limit:], nil
	}
	return f.samples, nil
}

func (f *fakeFetcher) HistoryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.historyCalls
}

// sampleSnapshot is the snapshot the web dashboard's tests used.
func sampleSnapshot() *stats.Snapshot {
	return &stats.Snapshot{
		CPU:           42,
		MemoryPercent: 60,
		MemoryUsed:    "3.2GB",
		DiskPercent:   77,
	}
}

// chartEvents records chart lifecycle calls across every fake chart so
// tests can check ordering.
type chartEvents struct {
	log     []string
	created []*fakeChart
}

func (e *chartEvents) factory(cfg ChartConfig) Chart {
	e.log = append(e.log, "create "+string(cfg.Slot))
	c := &fakeChart{cfg: cfg, events: e}
	e.created = append(e.created, c)
	return c
}

// live counts charts in slot that haven't been destroyed.
func (e *chartEvents) live(slot Slot) int {
	n := 0
	for _, c := range e.created {
		if c.cfg.Slot == slot && !c.destroyed {
			n++
		}
	}
	return n
}

type fakeChart struct {
	cfg       ChartConfig
	destroyed bool
	events    *chartEvents
}

func (c *fakeChart) Config() ChartConfig            { return c.cfg }
func (c *fakeChart) Render(w, h, cursor int) string { return "chart:" + string(c.cfg.Slot) }
func (c *fakeChart) Tooltip(i int) string           { return "tip:" + string(c.cfg.Slot) }

func (c *fakeChart) Destroy() {
	c.destroyed = true
	c.events.log = append(c.events.log, "destroy "+string(c.cfg.Slot))
}

// run executes cmd and flattens batches, returning every message produced.
// Only use it on commands without ticks.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// runWithin is run for batches that may hold ticks: each command gets
// wait to produce a message, and commands still blocked are dropped.
func runWithin(cmd tea.Cmd, wait time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(wait):
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runWithin(c, wait)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

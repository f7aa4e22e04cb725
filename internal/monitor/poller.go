package monitor

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/page"
	"github.com/rileyhilliard/sysdash/internal/stats"
)

// Poller timing defaults.
const (
	DefaultInterval = 5 * time.Second
	MinInterval     = 500 * time.Millisecond
	DefaultTimeout  = stats.DefaultTimeout
	PulseDuration   = time.Second
)

// FailedText replaces the last-update stamp after a failed cycle.
const FailedText = "Update Failed"

// StampFormat is the local-time layout of the last-update stamp.
const StampFormat = "15:04:05"

// Fetcher is the subset of the stats client the dashboard needs.
type Fetcher interface {
	Snapshot(ctx context.Context) (*stats.Snapshot, error)
	History(ctx context.Context, limit int) ([]stats.HistorySample, error)
}

// pollTickMsg fires when the poll interval elapses. gen ties it to the
// interval that scheduled it.
type pollTickMsg struct {
	gen int
	at  time.Time
}

// snapshotMsg carries the result of one poll cycle.
type snapshotMsg struct {
	seq  uint64
	snap *stats.Snapshot
	err  error
	at   time.Time
}

// pulseDoneMsg fires when the last-update highlight should fade.
type pulseDoneMsg struct{}

// PollerOptions configures a Poller.
type PollerOptions struct {
	Interval time.Duration
	Timeout  time.Duration
	Logger   logger.Logger
	Metrics  *Metrics
	History  *History
	Now      func() time.Time
}

// Poller runs the fetch-render cycle on a fixed interval.
//
// Every cycle is numbered when it starts. A result is applied only if its
// number is higher than the last applied one, so a slow response can never
// overwrite a newer one.
type Poller struct {
	fetch    Fetcher
	interval time.Duration
	timeout  time.Duration
	log      logger.Logger
	metrics  *Metrics
	history  *History
	now      func() time.Time

	issued  uint64
	applied uint64
	tickGen int
	lastErr error
}

// NewPoller creates a poller. Zero options take the defaults.
func NewPoller(fetch Fetcher, opts PollerOptions) *Poller {
	p := &Poller{
		fetch:    fetch,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		log:      logger.OrDefault(opts.Logger),
		metrics:  opts.Metrics,
		history:  opts.History,
		now:      opts.Now,
	}
	if opts.Interval > 0 {
		p.interval = clampInterval(opts.Interval)
	}
	if opts.Timeout > 0 {
		p.timeout = opts.Timeout
	}
	if p.history == nil {
		p.history = NewHistory(DefaultHistorySize)
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

func clampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	return d
}

// Start runs one cycle immediately and schedules the next tick.
func (p *Poller) Start() tea.Cmd {
	return tea.Batch(p.Cycle(), p.schedule())
}

// Cycle starts one fetch. The result arrives as a snapshotMsg.
func (p *Poller) Cycle() tea.Cmd {
	p.issued++
	seq := p.issued
	fetch, timeout, now := p.fetch, p.timeout, p.now

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		snap, err := fetch.Snapshot(ctx)
		return snapshotMsg{seq: seq, snap: snap, err: err, at: now()}
	}
}

func (p *Poller) schedule() tea.Cmd {
	gen := p.tickGen
	return tea.Tick(p.interval, func(t time.Time) tea.Msg {
		return pollTickMsg{gen: gen, at: t}
	})
}

// HandleTick starts the next cycle. Ticks scheduled under a previous
// interval are dropped.
func (p *Poller) HandleTick(msg pollTickMsg) tea.Cmd {
	if msg.gen != p.tickGen {
		return nil
	}
	return tea.Batch(p.Cycle(), p.schedule())
}

// SetInterval changes the poll interval. The pending tick is abandoned and
// a new one scheduled.
func (p *Poller) SetInterval(d time.Duration) tea.Cmd {
	if d <= 0 {
		return nil
	}
	d = clampInterval(d)
	if d == p.interval {
		return nil
	}
	p.interval = d
	p.tickGen++
	p.log.Info("poll interval now %s", d)
	return p.schedule()
}

// SetTimeout changes the per-request timeout for later cycles.
func (p *Poller) SetTimeout(d time.Duration) {
	if d > 0 {
		p.timeout = d
	}
}

// Interval returns the current poll interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Pending reports whether a cycle is in flight.
func (p *Poller) Pending() bool {
	return p.issued > p.applied
}

// LastError returns the error from the most recent applied cycle, or nil.
func (p *Poller) LastError() error {
	return p.lastErr
}

// Apply writes a cycle's result into doc. Failures are logged and shown
// as FailedText on the last-update element; they never propagate. On
// success it returns a command that ends the highlight pulse.
func (p *Poller) Apply(doc *page.Document, msg snapshotMsg) tea.Cmd {
	if msg.seq <= p.applied {
		p.metrics.poll(OutcomeStale)
		p.log.Debug("dropping stale snapshot #%d (already applied #%d)", msg.seq, p.applied)
		return nil
	}
	p.applied = msg.seq

	err := msg.err
	if err == nil {
		err = Project(doc, msg.snap)
	}
	if err != nil {
		p.lastErr = err
		p.metrics.poll(OutcomeFailed)
		p.log.Error("Error fetching live stats: %s", errors.Short(err))
		if el, ok := doc.Lookup(page.IDLastUpdate); ok {
			el.Text = FailedText
			el.HighlightUntil = time.Time{}
		}
		return nil
	}

	p.lastErr = nil
	p.metrics.poll(OutcomeOK)
	p.history.Push(msg.snap)

	el, ok := doc.Lookup(page.IDLastUpdate)
	if !ok {
		return nil
	}
	el.Text = msg.at.Format(StampFormat)
	el.HighlightUntil = msg.at.Add(PulseDuration)
	return tea.Tick(PulseDuration, func(time.Time) tea.Msg {
		return pulseDoneMsg{}
	})
}

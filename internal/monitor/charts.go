package monitor

import (
	"context"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/page"
	"github.com/rileyhilliard/sysdash/internal/stats"
	"github.com/rileyhilliard/sysdash/internal/theme"
)

// Slot is a fixed chart position on the history page.
type Slot string

const (
	SlotUsage   Slot = page.IDUsageChart
	SlotNetwork Slot = page.IDNetworkChart
)

// Slots lists chart slots in display order.
var Slots = []Slot{SlotUsage, SlotNetwork}

// Tooltip units.
const (
	PercentUnit = "%"
	NetworkUnit = "KB/s"
)

// History limits offered by the limit selector.
var (
	DefaultHistoryLimits = []int{30, 60, 120, 300}
	DefaultHistoryLimit  = 60
)

// UnitFor returns the tooltip unit for a slot.
func UnitFor(slot Slot) string {
	if slot == SlotNetwork {
		return NetworkUnit
	}
	return PercentUnit
}

// Series is one line on a chart.
type Series struct {
	Name  string
	Data  []float64
	Color lipgloss.Color
}

// ChartStyle holds the theme-dependent chart colours.
type ChartStyle struct {
	Grid        lipgloss.Color
	Tick        lipgloss.Color
	TooltipBg   lipgloss.Color
	TooltipText lipgloss.Color
}

// ChartConfig fully describes a chart. Series are aligned with Labels.
type ChartConfig struct {
	Slot   Slot
	Labels []string
	Series []Series

	// Min and Max bound the vertical axis when FixedScale is set.
	// Otherwise the axis runs from zero to the data's maximum.
	Min, Max   float64
	FixedScale bool

	Unit   string
	Smooth bool
	Style  ChartStyle
}

// Chart is a constructed chart instance bound to a slot.
type Chart interface {
	Config() ChartConfig
	// Render draws the chart into width x height cells. cursor is the
	// hovered index, or -1.
	Render(width, height, cursor int) string
	// Tooltip describes every series at index i.
	Tooltip(i int) string
	Destroy()
}

// ChartFactory constructs a chart in a single call.
type ChartFactory func(cfg ChartConfig) Chart

// StyleFor returns the chart colours for a theme.
func StyleFor(mode theme.Mode) ChartStyle {
	p := theme.PaletteFor(mode)
	return ChartStyle{
		Grid:        p.Grid,
		Tick:        p.Tick,
		TooltipBg:   p.TooltipBg,
		TooltipText: p.TooltipText,
	}
}

// BuildConfigs derives both chart configs from a history response.
func BuildConfigs(samples []stats.HistorySample, mode theme.Mode) (usage, network ChartConfig) {
	p := theme.PaletteFor(mode)
	style := StyleFor(mode)

	n := len(samples)
	labels := make([]string, n)
	cpu := make([]float64, n)
	mem := make([]float64, n)
	disk := make([]float64, n)
	up := make([]float64, n)
	down := make([]float64, n)
	for i, s := range samples {
		labels[i] = s.TimeOfDay()
		cpu[i] = s.CPU
		mem[i] = s.MemoryPercent
		disk[i] = s.DiskPercent
		up[i] = s.NetUp
		down[i] = s.NetDown
	}

	usage = ChartConfig{
		Slot:   SlotUsage,
		Labels: labels,
		Series: []Series{
			{Name: "CPU", Data: cpu, Color: p.SeriesCPU},
			{Name: "RAM", Data: mem, Color: p.SeriesRAM},
			{Name: "Disk", Data: disk, Color: p.SeriesDisk},
		},
		Min:        0,
		Max:        100,
		FixedScale: true,
		Unit:       UnitFor(SlotUsage),
		Smooth:     true,
		Style:      style,
	}

	network = ChartConfig{
		Slot:   SlotNetwork,
		Labels: labels,
		Series: []Series{
			{Name: "Upload", Data: up, Color: p.SeriesUp},
			{Name: "Download", Data: down, Color: p.SeriesDown},
		},
		Unit:   UnitFor(SlotNetwork),
		Smooth: true,
		Style:  style,
	}
	return usage, network
}

// chartsMsg carries the result of one history fetch.
type chartsMsg struct {
	seq     uint64
	limit   int
	samples []stats.HistorySample
	err     error
}

// ChartRendererOptions configures a ChartRenderer.
type ChartRendererOptions struct {
	Timeout time.Duration
	Factory ChartFactory
	Logger  logger.Logger
	Metrics *Metrics
}

// ChartRenderer owns the history page's chart slots. Each slot holds at
// most one chart; Replace destroys the old one before creating the new.
type ChartRenderer struct {
	fetch   Fetcher
	factory ChartFactory
	timeout time.Duration
	log     logger.Logger
	metrics *Metrics

	slots   map[Slot]Chart
	issued  uint64
	applied uint64
	lastErr error
}

// NewChartRenderer creates a renderer with empty slots.
func NewChartRenderer(fetch Fetcher, opts ChartRendererOptions) *ChartRenderer {
	r := &ChartRenderer{
		fetch:   fetch,
		factory: opts.Factory,
		timeout: opts.Timeout,
		log:     logger.OrDefault(opts.Logger),
		metrics: opts.Metrics,
		slots:   make(map[Slot]Chart),
	}
	if r.factory == nil {
		r.factory = NewLineChart
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	return r
}

// Active reports whether doc is a page the renderer works on.
func Active(doc *page.Document) bool {
	return doc.Path() == page.RouteHistory && doc.Has(page.IDLimitSelect)
}

// SelectedLimit reads the limit selector, falling back to the default.
func SelectedLimit(doc *page.Document) int {
	el, ok := doc.Lookup(page.IDLimitSelect)
	if !ok {
		return DefaultHistoryLimit
	}
	n, err := strconv.Atoi(el.Value())
	if err != nil || n <= 0 {
		return DefaultHistoryLimit
	}
	return n
}

// Load fetches history for the selected limit. It is a no-op returning nil
// when doc isn't the history page.
func (r *ChartRenderer) Load(doc *page.Document) tea.Cmd {
	if !Active(doc) {
		return nil
	}

	r.issued++
	seq := r.issued
	limit := SelectedLimit(doc)
	fetch, timeout := r.fetch, r.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		samples, err := fetch.History(ctx, limit)
		return chartsMsg{seq: seq, limit: limit, samples: samples, err: err}
	}
}

// Apply rebuilds both charts from a fetch result. A failed fetch leaves
// the existing charts in place.
func (r *ChartRenderer) Apply(doc *page.Document, msg chartsMsg) error {
	if msg.seq <= r.applied {
		r.metrics.chartLoad(OutcomeStale)
		r.log.Debug("dropping stale history load #%d (already applied #%d)", msg.seq, r.applied)
		return nil
	}
	r.applied = msg.seq

	if !Active(doc) {
		return nil
	}

	if msg.err != nil {
		r.lastErr = msg.err
		r.metrics.chartLoad(OutcomeFailed)
		r.log.Error("Error loading history charts: %s", errors.Short(msg.err))
		return msg.err
	}

	r.lastErr = nil
	usage, network := BuildConfigs(msg.samples, theme.Current(doc))
	r.destroy(SlotUsage)
	r.destroy(SlotNetwork)
	r.Replace(SlotUsage, usage)
	r.Replace(SlotNetwork, network)
	r.metrics.chartLoad(OutcomeOK)
	r.log.Debug("history charts rebuilt with %d samples (limit %d)", len(msg.samples), msg.limit)
	return nil
}

// Replace destroys the chart in slot, if any, then constructs a new one.
func (r *ChartRenderer) Replace(slot Slot, cfg ChartConfig) Chart {
	r.destroy(slot)
	cfg.Slot = slot
	c := r.factory(cfg)
	r.slots[slot] = c
	return c
}

func (r *ChartRenderer) destroy(slot Slot) {
	if old, ok := r.slots[slot]; ok && old != nil {
		old.Destroy()
	}
	delete(r.slots, slot)
}

// Chart returns the chart in slot, or nil.
func (r *ChartRenderer) Chart(slot Slot) Chart {
	return r.slots[slot]
}

// Points returns how many labels the charts currently hold.
func (r *ChartRenderer) Points() int {
	c := r.slots[SlotUsage]
	if c == nil {
		return 0
	}
	return len(c.Config().Labels)
}

// Pending reports whether a load is in flight.
func (r *ChartRenderer) Pending() bool {
	return r.issued > r.applied
}

// LastError returns the error from the most recent applied load, or nil.
func (r *ChartRenderer) LastError() error {
	return r.lastErr
}

// Reset destroys every chart and abandons in-flight loads. Called when the
// user leaves the history page.
func (r *ChartRenderer) Reset() {
	for slot, c := range r.slots {
		if c != nil {
			c.Destroy()
		}
		delete(r.slots, slot)
	}
	r.applied = r.issued
	r.lastErr = nil
}

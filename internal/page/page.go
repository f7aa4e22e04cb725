// Package page models the dashboard's display surface as a document of
// elements addressed by ID, the way the web dashboard addressed its DOM.
//
// Components never draw directly. The poller writes text and bar widths into
// elements, the theme controller flips the root theme attribute, and the
// view layer renders whatever the document currently holds.
package page

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/sysdash/internal/errors"
)

// Routes the dashboard can display.
const (
	RouteLive    = "/"
	RouteHistory = "/history"
)

// ThemeAttr is the root attribute holding the active theme.
const ThemeAttr = "data-theme"

// Element IDs.
const (
	IDThemeToggle  = "theme-toggle"
	IDCPUVal       = "cpu-val"
	IDCPUBar       = "cpu-bar"
	IDMemVal       = "mem-val"
	IDMemBar       = "mem-bar"
	IDMemUsed      = "mem-used"
	IDMemCached    = "mem-cached"
	IDDiskVal      = "disk-val"
	IDDiskBar      = "disk-bar"
	IDLoadVal      = "load-val"
	IDOSInfo       = "os-info"
	IDNetVal       = "net-val"
	IDLastUpdate   = "last-update"
	IDLimitSelect  = "limit-select"
	IDUsageChart   = "usageChart"
	IDNetworkChart = "networkChart"
)

// Element is a single addressable node on the page.
type Element struct {
	ID string

	// Text is the element's visible text.
	Text string

	// Label is the caption of a control (the theme toggle button).
	Label string

	// Width is a bar's width style, e.g. "42%".
	Width string

	// HighlightUntil marks the end of a transient highlight pulse.
	HighlightUntil time.Time

	// Options and Selected back a select control.
	Options  []string
	Selected int
}

// Highlighted reports whether the element's pulse is still active at now.
func (e *Element) Highlighted(now time.Time) bool {
	return !e.HighlightUntil.IsZero() && now.Before(e.HighlightUntil)
}

// WidthPercent parses the width style into a percentage in [0, 100].
// Unset or malformed widths are 0.
func (e *Element) WidthPercent() float64 {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(e.Width), "%"))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Value returns the selected option, or "" when nothing is selectable.
func (e *Element) Value() string {
	if e.Selected < 0 || e.Selected >= len(e.Options) {
		return ""
	}
	return e.Options[e.Selected]
}

// SelectValue selects the option equal to v. Returns false if v isn't an option.
func (e *Element) SelectValue(v string) bool {
	for i, opt := range e.Options {
		if opt == v {
			e.Selected = i
			return true
		}
	}
	return false
}

// Step moves the selection by delta, clamped to the option range.
// Returns true if the selection changed.
func (e *Element) Step(delta int) bool {
	if len(e.Options) == 0 {
		return false
	}
	next := e.Selected + delta
	if next < 0 {
		next = 0
	}
	if next >= len(e.Options) {
		next = len(e.Options) - 1
	}
	if next == e.Selected {
		return false
	}
	e.Selected = next
	return true
}

// Document is the set of elements for the current route plus root attributes.
// It is not safe for concurrent use; the Bubble Tea update loop owns it.
type Document struct {
	path     string
	attrs    map[string]string
	elements map[string]*Element
	order    []string
}

// New creates a document for path containing the given element IDs.
func New(path string, ids ...string) *Document {
	d := &Document{
		attrs: make(map[string]string),
	}
	d.reset(path, ids)
	return d
}

// ForRoute creates a document with the standard layout for path.
func ForRoute(path string) *Document {
	return New(path, Layout(path)...)
}

// Layout returns the element IDs present on the standard page for path.
// The history page carries a compact live summary above its charts so the
// poller has somewhere to write on both routes.
func Layout(path string) []string {
	summary := []string{
		IDThemeToggle,
		IDCPUVal, IDCPUBar,
		IDMemVal, IDMemUsed,
		IDDiskVal, IDDiskBar,
		IDLastUpdate,
	}
	if path == RouteHistory {
		return append(summary, IDLimitSelect, IDUsageChart, IDNetworkChart)
	}
	return append(summary, IDMemBar, IDMemCached, IDLoadVal, IDOSInfo, IDNetVal)
}

func (d *Document) reset(path string, ids []string) {
	d.path = path
	d.elements = make(map[string]*Element, len(ids))
	d.order = d.order[:0]
	for _, id := range ids {
		d.Add(id)
	}
}

// Load replaces the page content with the standard layout for path.
// Root attributes (the theme) survive navigation.
func (d *Document) Load(path string) {
	d.reset(path, Layout(path))
}

// Path returns the current route.
func (d *Document) Path() string {
	return d.path
}

// Attr returns a root attribute, or "" if unset.
func (d *Document) Attr(name string) string {
	return d.attrs[name]
}

// SetAttr sets a root attribute.
func (d *Document) SetAttr(name, value string) {
	d.attrs[name] = value
}

// Add inserts an element if it doesn't exist and returns it.
func (d *Document) Add(id string) *Element {
	if el, ok := d.elements[id]; ok {
		return el
	}
	el := &Element{ID: id}
	d.elements[id] = el
	d.order = append(d.order, id)
	return el
}

// Remove deletes an element from the page.
func (d *Document) Remove(id string) {
	if _, ok := d.elements[id]; !ok {
		return
	}
	delete(d.elements, id)
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Lookup returns the element with id, if present.
func (d *Document) Lookup(id string) (*Element, bool) {
	el, ok := d.elements[id]
	return el, ok
}

// Get returns the element with id or a RENDER error naming it.
func (d *Document) Get(id string) (*Element, error) {
	el, ok := d.elements[id]
	if !ok {
		return nil, errors.New(errors.ErrRender,
			fmt.Sprintf("Element #%s not found on %s", id, d.path),
			"The page layout is missing an element the dashboard writes to")
	}
	return el, nil
}

// Has reports whether id is on the page.
func (d *Document) Has(id string) bool {
	_, ok := d.elements[id]
	return ok
}

// IDs returns element IDs in insertion order.
func (d *Document) IDs() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Package theme implements the light/dark theme toggle and its persisted
// preference, plus the colour palettes each mode renders with.
package theme

import (
	"time"

	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/page"
	"github.com/rileyhilliard/sysdash/internal/prefs"
)

// Mode is a theme preference.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// PreferenceKey is the store key holding the theme.
const PreferenceKey = "theme"

// MaxAge is how long a stored preference lives.
const MaxAge = 30 * 24 * time.Hour

// Toggle labels. The toggle always offers the mode you're not in.
const (
	LabelLight = "☀️ Light Mode"
	LabelDark  = "🌙 Dark Mode"
)

// Parse converts a stored or user-supplied value to a Mode.
func Parse(s string) (Mode, bool) {
	switch Mode(s) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	default:
		return "", false
	}
}

// Flip returns the other mode.
func (m Mode) Flip() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}

// Label returns the toggle caption to show while m is active.
func Label(m Mode) string {
	if m == Dark {
		return LabelLight
	}
	return LabelDark
}

// PreferenceOptions are the attributes the preference is stored with.
func PreferenceOptions() prefs.Options {
	return prefs.Options{
		Path:     "/",
		MaxAge:   MaxAge,
		SameSite: prefs.SameSiteLax,
	}
}

// Current reads the active mode from the document root. Anything other
// than "dark" counts as light.
func Current(doc *page.Document) Mode {
	if Mode(doc.Attr(page.ThemeAttr)) == Dark {
		return Dark
	}
	return Light
}

// Bootstrap applies the theme attribute before anything renders, so the
// first frame is already in the right mode. A stored preference wins;
// otherwise detectDark decides (nil means light).
func Bootstrap(doc *page.Document, store prefs.Store, detectDark func() bool) Mode {
	mode := Light
	if v, ok := store.Get(PreferenceKey); ok {
		if parsed, valid := Parse(v); valid {
			mode = parsed
		}
	} else if detectDark != nil && detectDark() {
		mode = Dark
	}
	doc.SetAttr(page.ThemeAttr, string(mode))
	return mode
}

// Controller owns the theme toggle on a page.
type Controller struct {
	doc   *page.Document
	store prefs.Store
	log   logger.Logger
}

// NewController creates a controller for doc backed by store.
func NewController(doc *page.Document, store prefs.Store, log logger.Logger) *Controller {
	return &Controller{
		doc:   doc,
		store: store,
		log:   logger.OrDefault(log),
	}
}

// Initialize syncs the toggle label with the stored preference. The theme
// attribute itself was already applied by Bootstrap. Without a stored
// preference the label follows whatever Bootstrap picked.
func (c *Controller) Initialize() {
	el, ok := c.doc.Lookup(page.IDThemeToggle)
	if !ok {
		return
	}
	el.Label = Label(Current(c.doc))
	if v, ok := c.store.Get(PreferenceKey); ok && Mode(v) == Dark {
		el.Label = LabelLight
	}
}

// Toggle flips the theme attribute, updates the label, and persists the new
// mode. A failed write is logged; the page still switches.
func (c *Controller) Toggle() Mode {
	next := Current(c.doc).Flip()

	c.doc.SetAttr(page.ThemeAttr, string(next))
	if el, ok := c.doc.Lookup(page.IDThemeToggle); ok {
		el.Label = Label(next)
	}

	if err := c.store.Set(PreferenceKey, string(next), PreferenceOptions()); err != nil {
		c.log.Warn("could not save theme preference: %v", err)
	}
	return next
}

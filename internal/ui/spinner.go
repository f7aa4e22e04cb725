package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// SpinnerState represents the current state of a spinner.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
	SpinnerSkipped
)

// frames is the same braille set the dashboard's loading spinner uses.
var frames = spinner.Dot

// Spinner shows "<frame> label..." on one line while a one-shot command
// waits on the network, then replaces it with a result line.
// A non-animated spinner prints only the result line, for piped output.
type Spinner struct {
	mu       sync.Mutex
	w        io.Writer
	label    string
	state    SpinnerState
	animated bool
	frame    int
	started  time.Time
	shown    int // width of the line currently on screen
	stop     chan struct{}
	done     chan struct{}
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(label string, w io.Writer, animated bool) *Spinner {
	return &Spinner{
		w:        w,
		label:    label,
		state:    SpinnerPending,
		animated: animated,
	}
}

// Start begins the animation. Calling it twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}

	s.state = SpinnerInProgress
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	if !s.animated {
		close(s.done)
		return
	}
	s.drawLocked()
	go s.loop(s.stop, s.done)
}

// Stop halts the animation without changing state.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	if stop == nil {
		s.mu.Unlock()
		return
	}
	s.stop = nil
	s.mu.Unlock()

	close(stop)
	<-done
}

// Success stops the spinner and prints a success line.
func (s *Spinner) Success() { s.finish(SpinnerSuccess) }

// Fail stops the spinner and prints a failure line.
func (s *Spinner) Fail() { s.finish(SpinnerFailed) }

// Skip stops the spinner and prints a skipped line.
func (s *Spinner) Skip() { s.finish(SpinnerSkipped) }

// State returns the current spinner state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed returns the time since Start, or zero before it.
func (s *Spinner) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

// Label returns the spinner's label.
func (s *Spinner) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// SetLabel updates the label; the next frame shows it.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

func (s *Spinner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(frames.FPS)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(frames.Frames)
			s.drawLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) drawLocked() {
	color := GradientColors[(s.frame/2)%len(GradientColors)]
	symbol := lipgloss.NewStyle().Foreground(color).Render(strings.TrimSpace(frames.Frames[s.frame]))
	line := symbol + " " + s.label + "..."

	s.clearLocked()
	_, _ = io.WriteString(s.w, "\r"+line)
	s.shown = lipgloss.Width(line)
}

func (s *Spinner) clearLocked() {
	if s.shown > 0 {
		_, _ = io.WriteString(s.w, "\r"+strings.Repeat(" ", s.shown)+"\r")
		s.shown = 0
	}
}

func (s *Spinner) finish(state SpinnerState) {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state

	symbol, color := SymbolPending, ColorMuted
	switch state {
	case SpinnerSuccess:
		symbol, color = SymbolComplete, ColorSuccess
	case SpinnerFailed:
		symbol, color = SymbolFail, ColorError
	case SpinnerSkipped:
		symbol, color = SymbolSkipped, ColorWarning
	}

	s.clearLocked()
	fmt.Fprintf(s.w, "%s %s %s\n",
		lipgloss.NewStyle().Foreground(color).Render(symbol),
		s.label,
		MutedStyle().Render(formatDuration(time.Since(s.started))))
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}

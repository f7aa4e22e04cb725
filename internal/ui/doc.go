// Package ui provides terminal output helpers for sysdash's non-TUI commands.
//
// The dashboard itself lives in the monitor package. This package covers the
// one-shot commands (stats, init, doctor): a spinner for slow fetches, simple
// tables, and the shared status symbols and colours.
//
// # Components Overview
//
//	Spinner            - Animated status indicator for a fetch in flight
//	RenderSimpleTable  - Non-interactive Bubbles table for CLI output
//	RenderKeyValue     - Aligned "label  value" lines
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Successful operations
//	ColorError     (red)    - Failures
//	ColorWarning   (yellow) - Skipped or degraded
//	ColorMuted     (gray)   - Secondary text and timings
//
// Call UsePlainOutput when stdout isn't a terminal so piped output carries
// no escape codes.
package ui

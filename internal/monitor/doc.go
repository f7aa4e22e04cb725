// Package monitor implements the sysdash terminal dashboard.
//
// The dashboard shows a host's CPU, memory, disk and network usage as live
// text, progress bars and time-series charts, pulled from a stats endpoint.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: Holds the page document plus the components that write to it
//   - Update: Processes messages (keystrokes, ticks, fetch results)
//   - View: Renders the document to a string for display
//
// Components never draw. They write into a page.Document, and the view
// renders whatever the document holds.
//
// # Key Components
//
//	Model          - The Bubble Tea model owning the document
//	Poller         - Fetches /api/stats on an interval and projects it
//	ChartRenderer  - Fetches /api/history and rebuilds the two charts
//	LineChart      - Braille line chart with a shared index cursor
//	History        - Ring buffers for the live page's sparklines
//	Metrics        - Prometheus counters for polls, chart loads and fetches
//
// # Message Flow
//
//  1. pollTickMsg fires at the configured interval (default 5s)
//  2. Poller.Cycle fetches a snapshot with a fresh sequence number
//  3. snapshotMsg arrives; results older than the last applied one are dropped
//  4. Project writes the snapshot into the document; View re-renders
//
// Chart loads follow the same pattern with chartsMsg, and only run on the
// /history route.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Refresh now
//	t           - Toggle light/dark theme
//	Tab         - Switch between the live and history pages
//	[ / ]       - Shorter/longer history window
//	←/→         - Move the chart cursor
//	?           - Toggle help overlay
package monitor

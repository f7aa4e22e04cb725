package cli

import (
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/monitor"
	"github.com/rileyhilliard/sysdash/internal/prefs"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"live"},
	Short:   "Open the live dashboard",
	Long: `Open the live page: CPU, memory and disk values with progress bars,
refreshed every interval.

Keys: t toggles the theme, tab switches to the history page, r refreshes,
? shows help, q quits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd, config.RouteLive)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Open the dashboard on the history charts page",
	Long: `Open the history page: resource usage and network charts built from the
last N samples.

Use [ and ] to change the number of samples, and the arrow keys to inspect
a point.

Examples:
  sysdash history
  sysdash history --limit 300`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd, config.RouteHistory)
	},
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, dashboardCmd, historyCmd} {
		c.Flags().Duration("interval", 0, "poll interval (e.g. 2s, minimum 500ms)")
	}
	historyCmd.Flags().Int("limit", 0, "number of history samples to chart")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(historyCmd)
}

// dashboardCommand runs the TUI. An empty route means the configured one.
func dashboardCommand(cmd *cobra.Command, route string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cfg := s.cfg
	if route == "" {
		route = cfg.Route
	}

	closeLog, err := redirectLogs(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	log := logger.NewEnvLogger("[sysdash]")

	reg := prometheus.NewRegistry()
	metrics := monitor.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		srv, err := serveMetrics(cfg.MetricsAddr, reg, log)
		if err != nil {
			return err
		}
		defer srv.Close()
	}

	client, cleanup, err := newStatsClient(cmd.Context(), cfg, log, statsObserver(metrics))
	if err != nil {
		return err
	}
	defer cleanup()

	model := monitor.NewModel(monitor.Options{
		Fetcher:       client,
		Store:         prefs.NewFileStore(cfg.StateFile),
		Route:         route,
		Endpoint:      client.BaseURL(),
		Interval:      cfg.Interval,
		Timeout:       cfg.Timeout,
		HistoryLimit:  cfg.HistoryLimit,
		HistoryLimits: cfg.HistoryLimits,
		Logger:        log,
		Metrics:       metrics,
		DetectDark:    detectDark,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if s.path != "" {
		config.Watch(s.v, func(c *config.Config, err error) {
			if err != nil {
				log.Warn("ignoring config change: %s", errors.Short(err))
				return
			}
			log.Info("config reloaded: interval=%s timeout=%s", c.Interval, c.Timeout)
			p.Send(monitor.ConfigChangedMsg{Interval: c.Interval, Timeout: c.Timeout})
		})
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Dashboard exited unexpectedly",
			"Run with --verbose and log_file set to capture details")
	}
	return nil
}

// redirectLogs keeps standard log output off the screen while the TUI
// owns it: into path when set, otherwise discarded.
func redirectLogs(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create log directory for "+path,
			"Check 'log_file' in your config")
	}
	f, err := tea.LogToFile(path, "sysdash")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot open log file "+path,
			"Check 'log_file' in your config")
	}
	return func() {
		_ = f.Close()
		log.SetOutput(os.Stderr)
		log.SetPrefix("")
	}, nil
}
